package repository

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskflow/internal/database"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type RepositoryTestSuite struct {
	suite.Suite
	db            *gorm.DB
	users         UserRepository
	tasks         TaskRepository
	orders        TaskOrderRepository
	comments      CommentRepository
	notifications NotificationRepository
}

func (suite *RepositoryTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	suite.Require().NoError(err)

	// every connection to :memory: is a separate database
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(suite.db.AutoMigrate(database.Models()...))
	suite.Require().NoError(database.MigrateDatabase(suite.db))

	suite.users = NewUserRepository(suite.db)
	suite.tasks = NewTaskRepository(suite.db)
	suite.orders = NewTaskOrderRepository(suite.db)
	suite.comments = NewCommentRepository(suite.db)
	suite.notifications = NewNotificationRepository(suite.db)
}

func (suite *RepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *RepositoryTestSuite) createUser(username string, role models.Role, managerID *uint64) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	profile := &models.Profile{Role: role, ManagerID: managerID}
	suite.Require().NoError(suite.users.CreateWithProfile(user, profile))
	return user
}

func (suite *RepositoryTestSuite) createTask(title string, creatorID, assigneeID uint64, sortOrder uint) *models.Task {
	due := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	task := &models.Task{
		Title:        title,
		Description:  "Test Description",
		DueDate:      &due,
		Priority:     models.PriorityMedium,
		Status:       models.TaskStatusPending,
		CreatedByID:  creatorID,
		AssignedToID: assigneeID,
		SortOrder:    sortOrder,
	}
	suite.Require().NoError(suite.tasks.Create(task))
	return task
}

func (suite *RepositoryTestSuite) count(model interface{}, query string, args ...interface{}) int64 {
	var n int64
	suite.Require().NoError(suite.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func taskIDs(tasks []models.Task) []uint64 {
	ids := make([]uint64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func (suite *RepositoryTestSuite) TestTaskList_EmployeeScope() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)
	carol := suite.createUser("carol", models.RoleEmployee, &alice.ID)
	dave := suite.createUser("dave", models.RoleManager, nil)
	erin := suite.createUser("erin", models.RoleEmployee, &dave.ID)

	t1 := suite.createTask("Report", alice.ID, bob.ID, 0)
	t2 := suite.createTask("Slides", alice.ID, carol.ID, 0)
	suite.createTask("Foreign", dave.ID, erin.ID, 0)
	suite.createTask("Self made", bob.ID, bob.ID, 0)

	tasks, err := suite.tasks.List(TaskFilter{
		CreatedByID:       &alice.ID,
		AssigneeManagerID: &alice.ID,
		Preload:           true,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []uint64{t1.ID, t2.ID}, taskIDs(tasks))
	assert.Equal(suite.T(), "bob", tasks[0].AssignedTo.Username)
	assert.Equal(suite.T(), "alice", tasks[0].CreatedBy.Username)
}

func (suite *RepositoryTestSuite) TestTaskList_DefaultOrder() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)

	t1 := suite.createTask("B", alice.ID, bob.ID, 2)
	t2 := suite.createTask("A", alice.ID, bob.ID, 1)
	t3 := suite.createTask("C", alice.ID, bob.ID, 1)

	tasks, err := suite.tasks.List(TaskFilter{CreatedByID: &alice.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []uint64{t2.ID, t3.ID, t1.ID}, taskIDs(tasks))
}

func (suite *RepositoryTestSuite) TestTaskList_Filters() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)

	report := suite.createTask("Quarterly REPORT", alice.ID, bob.ID, 0)
	slides := suite.createTask("Slides", alice.ID, bob.ID, 0)

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	slides.DueDate = &past
	slides.Priority = models.PriorityHigh
	suite.Require().NoError(suite.tasks.Update(slides))

	tasks, err := suite.tasks.List(TaskFilter{Title: "report"})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []uint64{report.ID}, taskIDs(tasks))

	high := models.PriorityHigh
	tasks, err = suite.tasks.List(TaskFilter{Priority: &high})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []uint64{slides.ID}, taskIDs(tasks))

	cutoff := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks, err = suite.tasks.List(TaskFilter{DueBefore: &cutoff})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), []uint64{slides.ID}, taskIDs(tasks))

	tasks, err = suite.tasks.List(TaskFilter{IDs: []uint64{}})
	suite.Require().NoError(err)
	assert.Empty(suite.T(), tasks)
}

func (suite *RepositoryTestSuite) TestTaskDueDate_RoundTrip() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)
	task := suite.createTask("Report", alice.ID, bob.ID, 0)

	found, err := suite.tasks.FindByID(task.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(found.DueDate)
	suite.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), *found.DueDate)

	cutoff := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	due, err := suite.tasks.List(TaskFilter{DueBefore: &cutoff})
	suite.Require().NoError(err)
	suite.Len(due, 1)
}

func (suite *RepositoryTestSuite) TestMarkCompleted_OnlyOnce() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)
	task := suite.createTask("Report", alice.ID, bob.ID, 0)

	changed, err := suite.tasks.MarkCompleted(task.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), changed)

	changed, err = suite.tasks.MarkCompleted(task.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), changed)

	reloaded, err := suite.tasks.FindByID(task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusCompleted, reloaded.Status)
}

func (suite *RepositoryTestSuite) TestDeleteTask_RemovesChildren() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)
	task := suite.createTask("Report", alice.ID, bob.ID, 0)
	other := suite.createTask("Other", alice.ID, bob.ID, 0)

	suite.Require().NoError(suite.orders.UpsertPositions(bob.ID, map[uint64]int{task.ID: 1, other.ID: 2}))
	suite.Require().NoError(suite.comments.Create(&models.Comment{TaskID: task.ID, AuthorID: bob.ID, Content: "hi"}))
	suite.Require().NoError(suite.notifications.Create(&models.Notification{UserID: bob.ID, TaskID: &task.ID, Message: "New task assigned: Report"}))

	suite.Require().NoError(suite.tasks.Delete(task.ID))

	_, err := suite.tasks.FindByID(task.ID)
	assert.True(suite.T(), errors.Is(err, gorm.ErrRecordNotFound))
	assert.Zero(suite.T(), suite.count(&models.TaskOrder{}, "task_id = ?", task.ID))
	assert.Zero(suite.T(), suite.count(&models.Comment{}, "task_id = ?", task.ID))
	assert.Zero(suite.T(), suite.count(&models.Notification{}, "task_id = ?", task.ID))
	assert.Equal(suite.T(), int64(1), suite.count(&models.TaskOrder{}, "task_id = ?", other.ID))
}

func (suite *RepositoryTestSuite) TestUpsertPositions_CollapsesToOneRow() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)
	task := suite.createTask("Report", alice.ID, bob.ID, 0)

	suite.Require().NoError(suite.orders.UpsertPositions(bob.ID, map[uint64]int{task.ID: 5}))
	suite.Require().NoError(suite.orders.UpsertPositions(bob.ID, map[uint64]int{task.ID: 1}))
	suite.Require().NoError(suite.orders.UpsertPositions(alice.ID, map[uint64]int{task.ID: 9}))

	assert.Equal(suite.T(), int64(1), suite.count(&models.TaskOrder{}, "user_id = ? AND task_id = ?", bob.ID, task.ID))

	positions, err := suite.orders.PositionsForUser(bob.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), map[uint64]int{task.ID: 1}, positions)

	positions, err = suite.orders.PositionsForUser(alice.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), map[uint64]int{task.ID: 9}, positions)
}

func (suite *RepositoryTestSuite) TestComments_InsertionOrder() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)
	task := suite.createTask("Report", alice.ID, bob.ID, 0)

	for _, content := range []string{"first", "second", "third"} {
		suite.Require().NoError(suite.comments.Create(&models.Comment{TaskID: task.ID, AuthorID: bob.ID, Content: content}))
	}

	comments, err := suite.comments.ListByTask(task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(comments, 3)
	assert.Equal(suite.T(), "first", comments[0].Content)
	assert.Equal(suite.T(), "third", comments[2].Content)
	assert.Equal(suite.T(), "bob", comments[0].Author.Username)
}

func (suite *RepositoryTestSuite) TestNotifications_ListRecentIsCapped() {
	bob := suite.createUser("bob", models.RoleEmployee, nil)

	for i := 0; i < 25; i++ {
		suite.Require().NoError(suite.notifications.Create(&models.Notification{
			UserID:  bob.ID,
			Message: fmt.Sprintf("message %d", i),
		}))
	}

	notifications, err := suite.notifications.ListRecent(bob.ID, 20)
	suite.Require().NoError(err)
	suite.Require().Len(notifications, 20)
	assert.Equal(suite.T(), "message 24", notifications[0].Message)
	assert.Equal(suite.T(), "message 5", notifications[19].Message)
}

func (suite *RepositoryTestSuite) TestNotifications_DeleteForUser() {
	bob := suite.createUser("bob", models.RoleEmployee, nil)
	carol := suite.createUser("carol", models.RoleEmployee, nil)

	n := &models.Notification{UserID: bob.ID, Message: "hello"}
	suite.Require().NoError(suite.notifications.Create(n))

	err := suite.notifications.DeleteForUser(n.ID, carol.ID)
	assert.True(suite.T(), errors.Is(err, gorm.ErrRecordNotFound))

	suite.Require().NoError(suite.notifications.DeleteForUser(n.ID, bob.ID))
	assert.Zero(suite.T(), suite.count(&models.Notification{}, "id = ?", n.ID))
}

func (suite *RepositoryTestSuite) TestUsers_ManagerQueries() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)
	carol := suite.createUser("carol", models.RoleEmployee, &alice.ID)
	// a manager pointing at another manager stays out of listings
	suite.createUser("mallory", models.RoleManager, &alice.ID)
	suite.createUser("erin", models.RoleEmployee, nil)

	ids, err := suite.users.EmployeeIDs(alice.ID)
	suite.Require().NoError(err)
	assert.Len(suite.T(), ids, 3)

	employees, err := suite.users.ListEmployees(alice.ID)
	suite.Require().NoError(err)
	suite.Require().Len(employees, 2)
	assert.Equal(suite.T(), []uint64{bob.ID, carol.ID}, []uint64{employees[0].ID, employees[1].ID})

	page := utils.PaginationParams{Page: 1, Limit: 20}
	users, total, err := suite.users.List(UserFilter{ManagerID: &alice.ID}, page)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), total)
	assert.Len(suite.T(), users, 2)
	suite.Require().NotNil(users[0].Profile)
	assert.Equal(suite.T(), models.RoleEmployee, users[0].Profile.Role)

	users, total, err = suite.users.List(UserFilter{All: true}, utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(5), total)
	assert.Len(suite.T(), users, 2)

	users, total, err = suite.users.List(UserFilter{}, page)
	suite.Require().NoError(err)
	assert.Zero(suite.T(), total)
	assert.Empty(suite.T(), users)
}

func (suite *RepositoryTestSuite) TestUsers_DeleteCascade() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)
	carol := suite.createUser("carol", models.RoleEmployee, &alice.ID)

	bobs := suite.createTask("Bob's task", alice.ID, bob.ID, 0)
	carols := suite.createTask("Carol's task", alice.ID, carol.ID, 0)

	suite.Require().NoError(suite.orders.UpsertPositions(carol.ID, map[uint64]int{bobs.ID: 1, carols.ID: 2}))
	suite.Require().NoError(suite.orders.UpsertPositions(bob.ID, map[uint64]int{carols.ID: 1}))
	suite.Require().NoError(suite.comments.Create(&models.Comment{TaskID: bobs.ID, AuthorID: carol.ID, Content: "on bob's task"}))
	suite.Require().NoError(suite.comments.Create(&models.Comment{TaskID: carols.ID, AuthorID: bob.ID, Content: "by bob"}))
	suite.Require().NoError(suite.notifications.Create(&models.Notification{UserID: bob.ID, TaskID: &bobs.ID, Message: "New task assigned"}))
	suite.Require().NoError(suite.notifications.Create(&models.Notification{UserID: alice.ID, TaskID: &bobs.ID, Message: "Task completed"}))

	suite.Require().NoError(suite.users.DeleteCascade(bob.ID))

	_, err := suite.users.FindByID(bob.ID)
	assert.True(suite.T(), errors.Is(err, gorm.ErrRecordNotFound))
	assert.Zero(suite.T(), suite.count(&models.Task{}, "assigned_to_id = ? OR created_by_id = ?", bob.ID, bob.ID))
	assert.Zero(suite.T(), suite.count(&models.TaskOrder{}, "user_id = ? OR task_id = ?", bob.ID, bobs.ID))
	assert.Zero(suite.T(), suite.count(&models.Comment{}, "author_id = ? OR task_id = ?", bob.ID, bobs.ID))
	assert.Zero(suite.T(), suite.count(&models.Notification{}, "user_id = ? OR task_id = ?", bob.ID, bobs.ID))
	assert.Zero(suite.T(), suite.count(&models.Profile{}, "user_id = ?", bob.ID))

	// carol's own data is untouched
	assert.Equal(suite.T(), int64(1), suite.count(&models.Task{}, "id = ?", carols.ID))
	assert.Equal(suite.T(), int64(1), suite.count(&models.TaskOrder{}, "user_id = ?", carol.ID))

	assert.True(suite.T(), errors.Is(suite.users.DeleteCascade(bob.ID), gorm.ErrRecordNotFound))
}

func (suite *RepositoryTestSuite) TestUsers_DeleteManagerOrphansEmployees() {
	alice := suite.createUser("alice", models.RoleManager, nil)
	bob := suite.createUser("bob", models.RoleEmployee, &alice.ID)

	suite.Require().NoError(suite.users.DeleteCascade(alice.ID))

	reloaded, err := suite.users.FindByID(bob.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(reloaded.Profile)
	assert.Nil(suite.T(), reloaded.Profile.ManagerID)
}

func (suite *RepositoryTestSuite) TestUsers_CreateDuplicate() {
	suite.createUser("alice", models.RoleManager, nil)

	dup := &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	err := suite.users.CreateWithProfile(dup, &models.Profile{Role: models.RoleEmployee})
	assert.True(suite.T(), errors.Is(err, ErrDuplicateUser))
	assert.Equal(suite.T(), int64(1), suite.count(&models.Profile{}, "1 = 1"))
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func TestNotificationRepository_DeleteForUser_MySQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `notifications` WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteForUser(7, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_DeleteForUser_NoMatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `notifications` WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(7), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.DeleteForUser(7, 4)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_DeleteForUser_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `notifications`")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.DeleteForUser(7, 3)
	require.Error(t, err)
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_FindByID_DueDateLocation_MySQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	// the driver converts DATE values into its connection location on read
	due := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC).In(time.FixedZone("EDT", -4*60*60))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `tasks` WHERE `tasks`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "due_date", "status"}).
			AddRow(uint64(5), "Report", due, "Pending"))

	task, err := repo.FindByID(5)
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), *task.DueDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
