package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow/internal/models"
)

func ptr(v uint64) *uint64 { return &v }

var (
	alice = Actor{UserID: 1, Role: models.RoleManager, EmployeeIDs: []uint64{2, 3}}
	bob   = Actor{UserID: 2, Role: models.RoleEmployee, ManagerID: ptr(1)}
	carol = Actor{UserID: 3, Role: models.RoleEmployee, ManagerID: ptr(1)}
	dave  = Actor{UserID: 4, Role: models.RoleManager, EmployeeIDs: []uint64{5}}
	ghost = Actor{UserID: 9}
)

func TestAuthorize_Tasks(t *testing.T) {
	p := New()
	bobsTask := &models.Task{ID: 10, CreatedByID: 1, AssignedToID: 2}
	byEmployee := &models.Task{ID: 11, CreatedByID: 3, AssignedToID: 3}
	foreign := &models.Task{ID: 12, CreatedByID: 4, AssignedToID: 5}

	tests := []struct {
		name    string
		actor   Actor
		action  Action
		task    *models.Task
		allowed bool
	}{
		{"manager views own task", alice, ViewTask, bobsTask, true},
		{"manager views employee-created task", alice, ViewTask, byEmployee, true},
		{"manager cannot view other manager task", alice, ViewTask, foreign, false},
		{"assignee views task", bob, ViewTask, bobsTask, true},
		{"sibling cannot open task detail", carol, ViewTask, bobsTask, false},
		{"comment follows view", bob, CommentTask, bobsTask, true},
		{"comment denied without view", dave, CommentTask, bobsTask, false},
		{"employee updates own task", bob, UpdateTask, bobsTask, true},
		{"employee cannot update sibling task", carol, UpdateTask, bobsTask, false},
		{"manager updates own task", alice, UpdateTask, bobsTask, true},
		{"manager cannot update foreign task", alice, UpdateTask, foreign, false},
		{"roleless actor cannot update", ghost, UpdateTask, bobsTask, false},
		{"manager deletes own task", alice, DeleteTask, bobsTask, true},
		{"manager cannot delete foreign task", alice, DeleteTask, foreign, false},
		{"employee never deletes", bob, DeleteTask, bobsTask, false},
		{"employee cannot delete self-created task", carol, DeleteTask, byEmployee, false},
		{"assignee completes", bob, CompleteTask, bobsTask, true},
		{"manager cannot complete", alice, CompleteTask, bobsTask, false},
		{"missing task is denied", alice, ViewTask, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Authorize(tt.actor, tt.action, OnTask(tt.task))
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestAuthorize_CreateAndAssign(t *testing.T) {
	p := New()

	assert.True(t, p.Authorize(alice, CreateTask, Resource{}).Allowed)
	assert.False(t, p.Authorize(bob, CreateTask, Resource{}).Allowed)

	assert.True(t, p.Authorize(alice, AssignTask, OnUser(&models.User{ID: 2})).Allowed)
	assert.False(t, p.Authorize(alice, AssignTask, OnUser(&models.User{ID: 5})).Allowed)
	assert.False(t, p.Authorize(alice, AssignTask, OnUser(&models.User{ID: 1})).Allowed)
}

func TestAuthorize_DeleteUser(t *testing.T) {
	p := New()

	assert.True(t, p.Authorize(alice, DeleteUser, OnUser(&models.User{ID: 3})).Allowed)
	assert.False(t, p.Authorize(alice, DeleteUser, OnUser(&models.User{ID: 1})).Allowed)
	assert.False(t, p.Authorize(alice, DeleteUser, OnUser(&models.User{ID: 5})).Allowed)
	assert.False(t, p.Authorize(bob, DeleteUser, OnUser(&models.User{ID: 3})).Allowed)

	admin := Actor{UserID: 7, Role: models.RoleEmployee, IsSuperuser: true}
	assert.False(t, p.Authorize(admin, DeleteUser, OnUser(&models.User{ID: 3})).Allowed)
}

func TestDecisionErr(t *testing.T) {
	p := New()

	require.NoError(t, p.Authorize(alice, CreateTask, Resource{}).Err())

	err := p.Authorize(bob, CreateTask, Resource{}).Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	var denied *DeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "Only managers can create tasks.", denied.Reason)
}

func TestTaskScope(t *testing.T) {
	p := New()

	s := p.TaskScope(bob)
	require.NotNil(t, s.CreatedByID)
	require.NotNil(t, s.AssigneeOfMgr)
	assert.Equal(t, uint64(1), *s.CreatedByID)
	assert.Equal(t, uint64(1), *s.AssigneeOfMgr)
	assert.Nil(t, s.AssignedToID)

	s = p.TaskScope(alice)
	require.NotNil(t, s.CreatedByID)
	assert.Equal(t, uint64(1), *s.CreatedByID)
	assert.Nil(t, s.AssigneeOfMgr)

	orphan := Actor{UserID: 8, Role: models.RoleEmployee}
	assert.True(t, p.TaskScope(orphan).None)

	s = p.TaskScope(ghost)
	require.NotNil(t, s.AssignedToID)
	assert.Equal(t, uint64(9), *s.AssignedToID)
}

func TestUserScope(t *testing.T) {
	p := New()

	s := p.UserScope(alice)
	require.NotNil(t, s.ManagerID)
	assert.Equal(t, uint64(1), *s.ManagerID)

	assert.True(t, p.UserScope(Actor{UserID: 7, IsSuperuser: true}).All)
	assert.True(t, p.UserScope(bob).None)

	// a manager flag wins over the superuser flag
	s = p.UserScope(Actor{UserID: 1, Role: models.RoleManager, IsSuperuser: true})
	assert.False(t, s.All)
	require.NotNil(t, s.ManagerID)
}
