package dto

import (
	"time"

	"github.com/yukikurage/taskflow/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email,omitempty"`
	Role      models.Role `json:"role,omitempty"`
	ManagerID *uint64     `json:"manager_id,omitempty"`
}

// UserRefDTO is the short form of a user embedded in other resources
type UserRefDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	DueDate      *string             `json:"due_date"`
	Priority     models.TaskPriority `json:"priority"`
	Status       models.TaskStatus   `json:"status"`
	IsOverdue    bool                `json:"is_overdue"`
	Order        uint                `json:"order"`
	AssignedToID uint64              `json:"assigned_to_id"`
	CreatedByID  uint64              `json:"created_by_id"`
	AssignedTo   *UserRefDTO         `json:"assigned_to,omitempty"`
	CreatedBy    *UserRefDTO         `json:"created_by,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64      `json:"id"`
	TaskID    uint64      `json:"task_id"`
	Content   string      `json:"content"`
	Author    *UserRefDTO `json:"author,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
	if user.Profile != nil {
		dto.Role = user.Profile.Role
		dto.ManagerID = user.Profile.ManagerID
	}
	return dto
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

func toUserRef(user models.User) *UserRefDTO {
	if user.ID == 0 {
		return nil
	}
	return &UserRefDTO{ID: user.ID, Username: user.Username}
}

// ToTaskDTO converts a Task model to TaskDTO. now decides is_overdue.
func ToTaskDTO(task models.Task, now time.Time) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Priority:     task.Priority,
		Status:       task.Status,
		IsOverdue:    task.IsOverdue(now),
		Order:        task.SortOrder,
		AssignedToID: task.AssignedToID,
		CreatedByID:  task.CreatedByID,
		AssignedTo:   toUserRef(task.AssignedTo),
		CreatedBy:    toUserRef(task.CreatedBy),
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
	if task.DueDate != nil {
		d := models.DueDay(*task.DueDate).Format(DateLayout)
		dto.DueDate = &d
	}
	return dto
}

// ToTaskDTOs converts a slice of tasks, keeping their order
func ToTaskDTOs(tasks []models.Task, now time.Time) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t, now)
	}
	return out
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Content:   comment.Content,
		Author:    toUserRef(comment.Author),
		CreatedAt: comment.CreatedAt,
	}
}

// ToCommentDTOs converts a slice of comments
func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	out := make([]CommentDTO, len(comments))
	for i, c := range comments {
		out[i] = ToCommentDTO(c)
	}
	return out
}
