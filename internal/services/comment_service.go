package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/policy"
	"github.com/yukikurage/taskflow/internal/repository"
	"gorm.io/gorm"
)

var ErrCommentEmpty = errors.New("comment content cannot be empty")

// CommentService handles the append-only discussion under a task
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	policy      *policy.Policy
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		policy:      policy.New(),
	}
}

// PostComment appends a comment by the actor to a task they can view.
func (s *CommentService) PostComment(actor policy.Actor, taskID uint64, content string) (*models.Comment, error) {
	if _, err := s.visibleTask(actor, taskID, policy.CommentTask); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentEmpty
	}

	comment := &models.Comment{
		TaskID:   taskID,
		AuthorID: actor.UserID,
		Content:  content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	comment.Author = models.User{ID: actor.UserID, Username: actor.Username}
	return comment, nil
}

// ListComments returns a visible task's comments, oldest first.
func (s *CommentService) ListComments(actor policy.Actor, taskID uint64) ([]models.Comment, error) {
	if _, err := s.visibleTask(actor, taskID, policy.ViewTask); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) visibleTask(actor policy.Actor, taskID uint64, action policy.Action) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find task: %w", err)
		}
		task = nil
	}

	if err := s.policy.Authorize(actor, action, policy.OnTask(task)).Err(); err != nil {
		return nil, err
	}
	return task, nil
}
