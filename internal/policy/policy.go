// Package policy decides what an actor may see and change, from role and
// manager relationships alone.
package policy

import (
	"errors"
	"slices"

	"github.com/yukikurage/taskflow/internal/models"
)

// ErrPermissionDenied is matched by every denial returned from Decision.Err.
var ErrPermissionDenied = errors.New("permission denied")

// Action names an operation guarded by the policy.
type Action string

const (
	ViewTask     Action = "task:view"
	CreateTask   Action = "task:create"
	AssignTask   Action = "task:assign"
	UpdateTask   Action = "task:update"
	DeleteTask   Action = "task:delete"
	CompleteTask Action = "task:complete"
	CommentTask  Action = "task:comment"
	DeleteUser   Action = "user:delete"
)

// Actor is the requesting user together with the relationships the rules depend on.
type Actor struct {
	UserID      uint64
	Username    string
	Role        models.Role
	ManagerID   *uint64
	EmployeeIDs []uint64
	IsSuperuser bool
}

func (a Actor) IsManager() bool  { return a.Role == models.RoleManager }
func (a Actor) IsEmployee() bool { return a.Role == models.RoleEmployee }

// Manages reports whether userID is one of the actor's employees.
func (a Actor) Manages(userID uint64) bool {
	return slices.Contains(a.EmployeeIDs, userID)
}

// supervises reports whether userID is the actor or one of their employees.
func (a Actor) supervises(userID uint64) bool {
	return userID == a.UserID || a.Manages(userID)
}

// Resource is the object an action targets. Only the field relevant to the action is read.
type Resource struct {
	Task *models.Task
	User *models.User
}

// OnTask wraps a task as a Resource.
func OnTask(t *models.Task) Resource { return Resource{Task: t} }

// OnUser wraps a user as a Resource.
func OnUser(u *models.User) Resource { return Resource{User: u} }

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Err returns nil for an allowed decision and a *DeniedError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}

// DeniedError carries the human readable reason for a denial.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }

func (e *DeniedError) Unwrap() error { return ErrPermissionDenied }

// Policy is stateless; the zero value is ready to use.
type Policy struct{}

// New returns a Policy.
func New() *Policy {
	return &Policy{}
}

// Authorize decides whether actor may perform action on res.
func (p *Policy) Authorize(actor Actor, action Action, res Resource) Decision {
	switch action {
	case CreateTask:
		if !actor.IsManager() {
			return deny("Only managers can create tasks.")
		}
		return allow()

	case AssignTask:
		if res.User == nil || !actor.IsManager() || !actor.Manages(res.User.ID) {
			return deny("Tasks can only be assigned to your own employees.")
		}
		return allow()

	case ViewTask, CommentTask:
		if res.Task == nil {
			return deny("You do not have access to this task.")
		}
		if actor.IsManager() {
			if actor.supervises(res.Task.CreatedByID) {
				return allow()
			}
		} else if res.Task.AssignedToID == actor.UserID {
			return allow()
		}
		return deny("You do not have access to this task.")

	case UpdateTask:
		if res.Task == nil {
			return deny("You don't have permission to edit this task.")
		}
		switch actor.Role {
		case models.RoleEmployee:
			if res.Task.AssignedToID == actor.UserID {
				return allow()
			}
		case models.RoleManager:
			if actor.supervises(res.Task.CreatedByID) {
				return allow()
			}
		}
		return deny("You don't have permission to edit this task.")

	case DeleteTask:
		if !actor.IsManager() {
			return deny("You don't have permission to delete tasks.")
		}
		if res.Task == nil || !actor.supervises(res.Task.CreatedByID) {
			return deny("You don't have permission to delete this task.")
		}
		return allow()

	case CompleteTask:
		if res.Task == nil || res.Task.AssignedToID != actor.UserID {
			return deny("You do not have permission to modify this task.")
		}
		return allow()

	case DeleteUser:
		if !actor.IsManager() {
			return deny("You don't have permission to delete users.")
		}
		if res.User == nil || res.User.ID == actor.UserID || !actor.Manages(res.User.ID) {
			return deny("You don't have permission to delete this user.")
		}
		return allow()
	}

	return deny("Unknown action.")
}

// TaskScope describes which tasks an actor may list. A nil field is not filtered on.
type TaskScope struct {
	None          bool
	CreatedByID   *uint64
	AssigneeOfMgr *uint64
	AssignedToID  *uint64
}

// TaskScope returns the listing filter for actor.
//
// Employees see the tasks their manager created for any of that manager's
// employees, managers see the tasks they created, everyone else sees only
// tasks assigned to them.
func (p *Policy) TaskScope(actor Actor) TaskScope {
	switch actor.Role {
	case models.RoleEmployee:
		if actor.ManagerID == nil {
			return TaskScope{None: true}
		}
		mgr := *actor.ManagerID
		return TaskScope{CreatedByID: &mgr, AssigneeOfMgr: &mgr}
	case models.RoleManager:
		id := actor.UserID
		return TaskScope{CreatedByID: &id}
	default:
		id := actor.UserID
		return TaskScope{AssignedToID: &id}
	}
}

// UserScope describes which users an actor may list.
type UserScope struct {
	None      bool
	All       bool
	ManagerID *uint64
}

// UserScope returns the user listing filter for actor.
func (p *Policy) UserScope(actor Actor) UserScope {
	switch {
	case actor.IsManager():
		id := actor.UserID
		return UserScope{ManagerID: &id}
	case actor.IsSuperuser:
		return UserScope{All: true}
	default:
		return UserScope{None: true}
	}
}
