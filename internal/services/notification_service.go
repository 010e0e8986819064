package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/policy"
	"github.com/yukikurage/taskflow/internal/repository"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService creates notifications on task events and serves them to their addressee.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifRepo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
	}
}

// NotifyTaskAssigned tells the assignee about a new task.
func (s *NotificationService) NotifyTaskAssigned(task *models.Task) error {
	return s.create(task.AssignedToID, task, fmt.Sprintf("New task assigned: %s", task.Title))
}

// NotifyTaskCompleted tells the assignee's manager, if there is one, that the task is done.
func (s *NotificationService) NotifyTaskCompleted(task *models.Task) error {
	assignee, err := s.userRepo.FindByID(task.AssignedToID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	if assignee.Profile == nil || assignee.Profile.ManagerID == nil {
		return nil
	}

	return s.create(*assignee.Profile.ManagerID, task,
		fmt.Sprintf("Task '%s' was completed by %s.", task.Title, assignee.Username))
}

func (s *NotificationService) create(userID uint64, task *models.Task, message string) error {
	n := &models.Notification{
		UserID:  userID,
		TaskID:  &task.ID,
		Message: truncate(message, constants.MaxMessageLength),
	}
	if err := s.notifRepo.Create(n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// NotificationWindow is the newest slice of a user's notifications.
// UnreadCount is the length of that slice, not the size of the whole inbox.
type NotificationWindow struct {
	Notifications []models.Notification
	UnreadCount   int
}

// ListNotifications returns the actor's newest notifications, never more than
// constants.NotificationWindow of them.
func (s *NotificationService) ListNotifications(actor policy.Actor, limit int) (*NotificationWindow, error) {
	if limit <= 0 || limit > constants.NotificationWindow {
		limit = constants.NotificationWindow
	}

	notifications, err := s.notifRepo.ListRecent(actor.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return &NotificationWindow{
		Notifications: notifications,
		UnreadCount:   len(notifications),
	}, nil
}

// DismissNotification deletes a notification addressed to the actor.
func (s *NotificationService) DismissNotification(actor policy.Actor, id uint64) error {
	if err := s.notifRepo.DeleteForUser(id, actor.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to dismiss notification: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
