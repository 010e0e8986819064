package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskflow/internal/mail"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/policy"
	"github.com/yukikurage/taskflow/internal/repository"
	"github.com/yukikurage/taskflow/internal/utils"
	"gorm.io/gorm"
)

// UserService resolves actors and manages user accounts.
type UserService struct {
	userRepo repository.UserRepository
	mailer   mail.Mailer
	policy   *policy.Policy
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, mailer mail.Mailer) *UserService {
	return &UserService{
		userRepo: userRepo,
		mailer:   mailer,
		policy:   policy.New(),
	}
}

// ResolveActor loads the user together with the relationships authorization depends on.
func (s *UserService) ResolveActor(userID uint64) (policy.Actor, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Actor{}, ErrUserNotFound
		}
		return policy.Actor{}, fmt.Errorf("failed to find user: %w", err)
	}

	actor := policy.Actor{
		UserID:      user.ID,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
	}
	if user.Profile == nil {
		return actor, nil
	}

	actor.Role = user.Profile.Role
	actor.ManagerID = user.Profile.ManagerID

	if actor.IsManager() {
		ids, err := s.userRepo.EmployeeIDs(user.ID)
		if err != nil {
			return policy.Actor{}, fmt.Errorf("failed to load employees: %w", err)
		}
		actor.EmployeeIDs = ids
	}

	return actor, nil
}

// GetByUsername looks a user up by username.
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers returns the page of users the actor is allowed to see.
func (s *UserService) ListUsers(actor policy.Actor, page utils.PaginationParams) ([]models.User, int64, error) {
	scope := s.policy.UserScope(actor)
	if scope.None {
		return []models.User{}, 0, nil
	}

	users, total, err := s.userRepo.List(repository.UserFilter{
		All:       scope.All,
		ManagerID: scope.ManagerID,
	}, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// DeleteUserInput controls the optional email sent to the deleted user.
type DeleteUserInput struct {
	Notify bool
	Reason string
}

// DeleteUser removes one of the actor's employees together with everything
// they own. The notification email is best effort and sent after the delete.
func (s *UserService) DeleteUser(ctx context.Context, actor policy.Actor, targetID uint64, input DeleteUserInput) (*models.User, error) {
	target, err := s.userRepo.FindByID(targetID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.policy.Authorize(actor, policy.DeleteUser, policy.OnUser(target)).Err(); err != nil {
		return nil, err
	}

	var msg *mail.Message
	if input.Notify {
		msg = accountDeletedMessage(target, input.Reason)
	}

	if err := s.userRepo.DeleteCascade(target.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	if msg != nil {
		mail.SendQuietly(ctx, s.mailer, *msg)
	}

	return target, nil
}

func accountDeletedMessage(user *models.User, reason string) *mail.Message {
	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\n\nYour account has been deleted by a Manager.", user.Username)
	if reason = strings.TrimSpace(reason); reason != "" {
		fmt.Fprintf(&body, "\n\nReason provided:\n%s", reason)
	}
	body.WriteString("\n\nIf you have any questions, contact your administrator.")

	return &mail.Message{
		To:      []string{user.Email},
		Subject: "Your account has been deleted",
		Body:    body.String(),
	}
}
