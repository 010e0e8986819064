package services

import (
	"github.com/yukikurage/taskflow/internal/mail"
	"github.com/yukikurage/taskflow/internal/repository"
	"gorm.io/gorm"
)

// Options configures the service set built by New.
type Options struct {
	ManagerInviteCode string
	JWTSecret         string
	Mailer            mail.Mailer
	// AI may be nil, in which case task generation reports ErrAIServiceNotConfigured.
	AI *AIService
}

// Services is every service wired against one database.
type Services struct {
	Auth         *AuthService
	User         *UserService
	Task         *TaskService
	Comment      *CommentService
	Notification *NotificationService
	Report       *ReportService
}

// New builds the GORM repositories for db and the services on top of them.
func New(db *gorm.DB, opts Options) *Services {
	if opts.Mailer == nil {
		opts.Mailer = mail.NoopMailer{}
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	orderRepo := repository.NewTaskOrderRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	notifications := NewNotificationService(notifRepo, userRepo)

	return &Services{
		Auth:         NewAuthService(userRepo, opts.ManagerInviteCode, opts.JWTSecret),
		User:         NewUserService(userRepo, opts.Mailer),
		Task:         NewTaskService(taskRepo, orderRepo, userRepo, notifications, opts.Mailer, opts.AI),
		Comment:      NewCommentService(commentRepo, taskRepo),
		Notification: notifications,
		Report:       NewReportService(userRepo, taskRepo),
	}
}
