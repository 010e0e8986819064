package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/taskflow/internal/constants"
	applog "github.com/yukikurage/taskflow/internal/logger"
	"github.com/yukikurage/taskflow/internal/mail"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/policy"
	"github.com/yukikurage/taskflow/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidPosition        = errors.New("position must not be negative")
	ErrTaskNotVisible         = errors.New("task is not in your task list")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

var taskPreloads = []string{"AssignedTo", "CreatedBy"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	orderRepo repository.TaskOrderRepository
	userRepo  repository.UserRepository
	notifier  *NotificationService
	mailer    mail.Mailer
	aiService *AIService
	policy    *policy.Policy
	now       func() time.Time
}

// NewTaskService creates a new TaskService. aiService may be nil.
func NewTaskService(
	taskRepo repository.TaskRepository,
	orderRepo repository.TaskOrderRepository,
	userRepo repository.UserRepository,
	notifier *NotificationService,
	mailer mail.Mailer,
	aiService *AIService,
) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		mailer:    mailer,
		aiService: aiService,
		policy:    policy.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// TaskSearch narrows the visible task list. Zero values do not filter.
type TaskSearch struct {
	Title    string
	Priority models.TaskPriority
	// Status may also be models.StatusOverdue.
	Status models.TaskStatus
}

// ListVisibleTasks returns the tasks the actor may see, sorted by the actor's
// saved positions. Tasks without a position follow in their default order.
func (s *TaskService) ListVisibleTasks(actor policy.Actor, search TaskSearch) ([]models.Task, error) {
	filter, ok := s.scopeFilter(actor)
	if !ok {
		return []models.Task{}, nil
	}
	filter.Preload = true
	filter.Title = search.Title

	if search.Priority != "" {
		p := search.Priority
		filter.Priority = &p
	}
	switch search.Status {
	case "":
	case models.StatusOverdue:
		pending := models.TaskStatusPending
		tomorrow := models.DateOf(s.now()).AddDate(0, 0, 1)
		filter.Status = &pending
		filter.DueBefore = &tomorrow
	default:
		st := search.Status
		filter.Status = &st
	}

	tasks, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	positions, err := s.orderRepo.PositionsForUser(actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task order: %w", err)
	}
	SortByPositions(tasks, positions)

	return tasks, nil
}

// SortByPositions orders tasks by position, placing tasks missing from
// positions last. The sort is stable so ties keep their incoming order.
func SortByPositions(tasks []models.Task, positions map[uint64]int) {
	pos := func(id uint64) int {
		if p, ok := positions[id]; ok {
			return p
		}
		return constants.UnorderedPosition
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return pos(tasks[i].ID) < pos(tasks[j].ID)
	})
}

func (s *TaskService) scopeFilter(actor policy.Actor) (repository.TaskFilter, bool) {
	scope := s.policy.TaskScope(actor)
	if scope.None {
		return repository.TaskFilter{}, false
	}
	return repository.TaskFilter{
		CreatedByID:       scope.CreatedByID,
		AssigneeManagerID: scope.AssigneeOfMgr,
		AssignedToID:      scope.AssignedToID,
	}, true
}

// GetTaskIfVisible returns the task when the actor may open it. A missing
// task is reported with the same denial as a hidden one.
func (s *TaskService) GetTaskIfVisible(actor policy.Actor, taskID uint64) (*models.Task, error) {
	return s.authorizedTask(actor, taskID, policy.ViewTask, taskPreloads...)
}

func (s *TaskService) authorizedTask(actor policy.Actor, taskID uint64, action policy.Action, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
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

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	DueDate      *time.Time
	Priority     models.TaskPriority
	Status       models.TaskStatus
	AssignedToID uint64
	SortOrder    uint
}

// CreateTask creates a task for one of the manager's employees and notifies the assignee
func (s *TaskService) CreateTask(actor policy.Actor, input CreateTaskInput) (*models.Task, error) {
	if err := s.policy.Authorize(actor, policy.CreateTask, policy.Resource{}).Err(); err != nil {
		return nil, err
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}

	verr := newValidationError()
	title := strings.TrimSpace(input.Title)
	validateTitle(verr, title)
	if strings.TrimSpace(input.Description) == "" {
		verr.Add("description", "This field is required.")
	}
	if input.DueDate == nil {
		verr.Add("due_date", "This field is required.")
	}
	validatePriority(verr, input.Priority)
	validateStatus(verr, input.Status)

	if input.AssignedToID == 0 {
		verr.Add("assigned_to_id", "This field is required.")
	} else if err := s.checkAssignee(actor, input.AssignedToID, verr); err != nil {
		return nil, err
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:        title,
		Description:  input.Description,
		DueDate:      input.DueDate,
		Priority:     input.Priority,
		Status:       input.Status,
		AssignedToID: input.AssignedToID,
		CreatedByID:  actor.UserID,
		SortOrder:    input.SortOrder,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.notifier.NotifyTaskAssigned(task); err != nil {
		applog.Log.Error("failed to notify assignee", zap.Uint64("task_id", task.ID), zap.Error(err))
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// checkAssignee records a field error unless userID is one of the actor's employees.
func (s *TaskService) checkAssignee(actor policy.Actor, userID uint64, verr *ValidationError) error {
	assignee, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verr.Add("assigned_to_id", "Select a valid choice. That user does not exist.")
			return nil
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}

	if d := s.policy.Authorize(actor, policy.AssignTask, policy.OnUser(assignee)); !d.Allowed {
		verr.Add("assigned_to_id", d.Reason)
	}
	return nil
}

// UpdateTaskInput represents input for updating a task. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	Priority     *models.TaskPriority
	Status       *models.TaskStatus
	AssignedToID *uint64
	SortOrder    *uint
}

// UpdateTask updates a task. Employees may only change the status.
// Moving the task into Completed notifies the assignee's manager and mails the creator.
func (s *TaskService) UpdateTask(ctx context.Context, actor policy.Actor, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.authorizedTask(actor, taskID, policy.UpdateTask)
	if err != nil {
		return nil, err
	}

	verr := newValidationError()
	if actor.IsEmployee() {
		const msg = "Employees can only change the status."
		if input.Title != nil {
			verr.Add("title", msg)
		}
		if input.Description != nil {
			verr.Add("description", msg)
		}
		if input.DueDate != nil {
			verr.Add("due_date", msg)
		}
		if input.Priority != nil {
			verr.Add("priority", msg)
		}
		if input.AssignedToID != nil {
			verr.Add("assigned_to_id", msg)
		}
		if input.SortOrder != nil {
			verr.Add("order", msg)
		}
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		validateTitle(verr, title)
		task.Title = title
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			verr.Add("description", "This field is required.")
		}
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Priority != nil {
		validatePriority(verr, *input.Priority)
		task.Priority = *input.Priority
	}
	if input.SortOrder != nil {
		task.SortOrder = *input.SortOrder
	}

	wasCompleted := task.Status.Terminal()
	if input.Status != nil {
		validateStatus(verr, *input.Status)
		task.Status = *input.Status
	}

	if input.AssignedToID != nil && *input.AssignedToID != task.AssignedToID && !actor.IsEmployee() {
		if err := s.checkAssignee(actor, *input.AssignedToID, verr); err != nil {
			return nil, err
		}
		task.AssignedToID = *input.AssignedToID
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	// the move into Completed goes through the conditional update so a
	// concurrent mark-done cannot notify twice
	completing := !wasCompleted && task.Status.Terminal()
	var omit []string
	if completing {
		omit = append(omit, "status")
	}
	if err := s.taskRepo.Update(task, omit...); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	changed := false
	if completing {
		var err error
		if changed, err = s.taskRepo.MarkCompleted(task.ID); err != nil {
			return nil, fmt.Errorf("failed to complete task: %w", err)
		}
	}

	updated, err := s.taskRepo.FindByID(task.ID, taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	if changed {
		s.notifyCompleted(updated)
		mail.SendQuietly(ctx, s.mailer, mail.Message{
			To:      []string{updated.CreatedBy.Email},
			Subject: "Task Completed",
			Body:    fmt.Sprintf("Task %q just completed.", updated.Title),
		})
	}

	return updated, nil
}

// DeleteTask deletes a task and everything attached to it
func (s *TaskService) DeleteTask(actor policy.Actor, taskID uint64) error {
	if _, err := s.authorizedTask(actor, taskID, policy.DeleteTask); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// MarkTaskDone completes a task assigned to the actor. Completing an already
// completed task is a no-op and reports false.
func (s *TaskService) MarkTaskDone(actor policy.Actor, taskID uint64) (bool, error) {
	task, err := s.authorizedTask(actor, taskID, policy.CompleteTask)
	if err != nil {
		return false, err
	}

	changed, err := s.taskRepo.MarkCompleted(task.ID)
	if err != nil {
		return false, fmt.Errorf("failed to mark task done: %w", err)
	}
	if changed {
		task.Status = models.TaskStatusCompleted
		s.notifyCompleted(task)
	}
	return changed, nil
}

func (s *TaskService) notifyCompleted(task *models.Task) {
	if err := s.notifier.NotifyTaskCompleted(task); err != nil {
		applog.Log.Error("failed to notify manager of completion", zap.Uint64("task_id", task.ID), zap.Error(err))
	}
}

// TaskPosition is one entry of a reorder request.
type TaskPosition struct {
	TaskID   uint64
	Position int
}

// ReorderTasks saves the actor's private positions. Every entry is checked
// before anything is written, and the write is a single transaction.
func (s *TaskService) ReorderTasks(actor policy.Actor, entries []TaskPosition) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.TaskID)
	}

	visible := map[uint64]bool{}
	if filter, ok := s.scopeFilter(actor); ok {
		filter.IDs = ids
		tasks, err := s.taskRepo.List(filter)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		for _, t := range tasks {
			visible[t.ID] = true
		}
	}

	positions := make(map[uint64]int, len(entries))
	for _, e := range entries {
		if e.Position < 0 {
			return fmt.Errorf("task %d: %w", e.TaskID, ErrInvalidPosition)
		}
		if !visible[e.TaskID] {
			return fmt.Errorf("task %d: %w", e.TaskID, ErrTaskNotVisible)
		}
		positions[e.TaskID] = e.Position
	}

	if err := s.orderRepo.UpsertPositions(actor.UserID, positions); err != nil {
		return fmt.Errorf("failed to save task order: %w", err)
	}
	return nil
}

// GenerateTasks uses AI to draft tasks from free text. Drafts are not saved.
func (s *TaskService) GenerateTasks(ctx context.Context, actor policy.Actor, text string) ([]GeneratedTask, error) {
	if err := s.policy.Authorize(actor, policy.CreateTask, policy.Resource{}).Err(); err != nil {
		return nil, err
	}
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	today := models.DateOf(s.now())
	for _, aiTask := range aiTasks {
		aiTask.Title = strings.TrimSpace(aiTask.Title)
		if aiTask.Title == "" {
			continue
		}
		if utf8.RuneCountInString(aiTask.Title) > constants.MaxTitleLength {
			aiTask.Title = truncate(aiTask.Title, constants.MaxTitleLength)
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(today) {
			aiTask.DueDate = nil
		}
		if aiTask.Priority != "" && !aiTask.Priority.Valid() {
			aiTask.Priority = ""
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func validateTitle(verr *ValidationError, title string) {
	switch {
	case title == "":
		verr.Add("title", "This field is required.")
	case utf8.RuneCountInString(title) > constants.MaxTitleLength:
		verr.Add("title", fmt.Sprintf("Ensure this value has at most %d characters.", constants.MaxTitleLength))
	}
}

func validatePriority(verr *ValidationError, p models.TaskPriority) {
	if !p.Valid() {
		verr.Add("priority", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", p))
	}
}

func validateStatus(verr *ValidationError, st models.TaskStatus) {
	if !st.Valid() {
		verr.Add("status", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", st))
	}
}
