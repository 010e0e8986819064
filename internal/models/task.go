package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// StatusOverdue is a search-only pseudo status: pending with a due date today or earlier.
const StatusOverdue TaskStatus = "Overdue"

// Valid reports whether s can be stored on a task.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether s ends the task lifecycle.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	Title        string       `gorm:"type:varchar(100);not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	DueDate      *time.Time   `gorm:"type:date;index" json:"due_date"`
	Priority     TaskPriority `gorm:"type:varchar(10);not null;default:'Medium'" json:"priority"`
	Status       TaskStatus   `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	AssignedToID uint64       `gorm:"not null;index" json:"assigned_to_id"`
	CreatedByID  uint64       `gorm:"not null;index" json:"created_by_id"`
	SortOrder    uint         `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	AssignedTo User      `gorm:"foreignKey:AssignedToID;constraint:OnDelete:CASCADE" json:"assigned_to,omitempty"`
	CreatedBy  User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"created_by,omitempty"`
	Comments   []Comment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// AfterFind normalises the due date to midnight UTC. Drivers hand DATE and
// DATETIME values back in their connection location.
func (t *Task) AfterFind(tx *gorm.DB) error {
	if t.DueDate != nil {
		d := DueDay(*t.DueDate)
		t.DueDate = &d
	}
	return nil
}

// IsOverdue reports whether a pending task is due on or before the day of now.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Status != TaskStatusPending || t.DueDate == nil {
		return false
	}
	return !DueDay(*t.DueDate).After(DateOf(now))
}

// DateOf returns midnight UTC of the calendar day t falls on in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueDay returns the stored day of a due date, whatever location it was read in.
func DueDay(t time.Time) time.Time {
	return DateOf(t.UTC())
}
