package repository

import (
	"time"

	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter in default order
	List(filter TaskFilter) ([]models.Task, error)

	// Update saves a task's own columns, skipping any named in omit
	Update(task *models.Task, omit ...string) error

	// MarkCompleted moves a task into the completed state.
	// It reports false when the task was already completed.
	MarkCompleted(id uint64) (bool, error)

	// Delete removes a task together with its orders, comments and notifications
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	IDs               []uint64
	CreatedByID       *uint64
	AssigneeManagerID *uint64
	AssignedToID      *uint64
	Title             string
	Priority          *models.TaskPriority
	Status            *models.TaskStatus
	// DueBefore keeps only tasks due strictly before this instant.
	DueBefore *time.Time
	Preload   bool
}

// TaskOrderRepository defines the interface for per-user task positions
type TaskOrderRepository interface {
	// UpsertPositions writes every position for the user in one transaction
	UpsertPositions(userID uint64, positions map[uint64]int) error

	// PositionsForUser returns task ID -> position for the user
	PositionsForUser(userID uint64) (map[uint64]int, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error

	// ListByTask returns a task's comments oldest first
	ListByTask(taskID uint64) ([]models.Comment, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(notification *models.Notification) error

	// ListRecent returns at most limit notifications for the user, newest first
	ListRecent(userID uint64, limit int) ([]models.Notification, error)

	// DeleteForUser deletes a notification addressed to the user.
	// It returns gorm.ErrRecordNotFound when nothing matched.
	DeleteForUser(id, userID uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithProfile creates a user and its profile within a single transaction.
	CreateWithProfile(user *models.User, profile *models.Profile) error

	// FindByID finds a user by ID with its profile
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username with its profile
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// EmployeeIDs returns the IDs of every user whose manager is managerID
	EmployeeIDs(managerID uint64) ([]uint64, error)

	// ListEmployees returns users with the Employee role managed by managerID
	ListEmployees(managerID uint64) ([]models.User, error)

	// List returns a page of users matching the filter
	List(filter UserFilter, page utils.PaginationParams) ([]models.User, int64, error)

	// DeleteCascade removes a user and everything that belongs to them
	DeleteCascade(id uint64) error
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	All       bool
	ManagerID *uint64
}
