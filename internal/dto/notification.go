package dto

import (
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/services"
)

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID        uint64  `json:"id"`
	Message   string  `json:"message"`
	TaskID    *uint64 `json:"task_id"`
	Read      bool    `json:"read"`
	CreatedAt string  `json:"created_at"`
}

// NotificationListResponse is the notification window with its count
type NotificationListResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int               `json:"unread_count"`
}

func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Message:   n.Message,
		TaskID:    n.TaskID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format("2006-01-02 15:04"),
	}
}

func ToNotificationListResponse(w *services.NotificationWindow) NotificationListResponse {
	items := make([]NotificationDTO, len(w.Notifications))
	for i, n := range w.Notifications {
		items[i] = ToNotificationDTO(n)
	}
	return NotificationListResponse{
		Notifications: items,
		UnreadCount:   w.UnreadCount,
	}
}
