package services

import (
	"fmt"
	"time"

	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/policy"
	"github.com/yukikurage/taskflow/internal/repository"
)

// NoDataLabel is the placeholder category used when every count is zero.
const NoDataLabel = "No data"

// CategoryCount is one slice of a chart.
type CategoryCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Dashboard holds the statistics for one employee of a team.
type Dashboard struct {
	Employees      []models.User
	Selected       *models.User
	StatusCounts   []CategoryCount
	PriorityCounts []CategoryCount
}

// ReportService computes dashboard statistics
type ReportService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(userRepo repository.UserRepository, taskRepo repository.TaskRepository) *ReportService {
	return &ReportService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard returns the team of the actor's manager (or of the actor, for
// managers) and task counts for the requested employee, or the first one
// when none is requested.
func (s *ReportService) Dashboard(actor policy.Actor, employeeID *uint64) (*Dashboard, error) {
	d := &Dashboard{
		Employees:      []models.User{},
		StatusCounts:   statusCounts(nil, s.now()),
		PriorityCounts: priorityCounts(nil),
	}

	var managerID uint64
	switch {
	case actor.IsEmployee() && actor.ManagerID == nil:
		return d, nil
	case actor.IsEmployee():
		managerID = *actor.ManagerID
	default:
		managerID = actor.UserID
	}

	employees, err := s.userRepo.ListEmployees(managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	d.Employees = employees
	if len(employees) == 0 {
		return d, nil
	}

	if employeeID == nil {
		d.Selected = &employees[0]
	} else {
		for i := range employees {
			if employees[i].ID == *employeeID {
				d.Selected = &employees[i]
				break
			}
		}
	}
	// an id outside the team selects nobody and leaves the counts at zero
	if d.Selected == nil {
		return d, nil
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{AssignedToID: &d.Selected.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	d.StatusCounts = statusCounts(tasks, s.now())
	d.PriorityCounts = priorityCounts(tasks)
	return d, nil
}

// statusCounts buckets tasks into Pending (due after today), Completed and
// Overdue (pending, due today or earlier). Pending tasks without a due date
// fall in neither pending bucket.
func statusCounts(tasks []models.Task, now time.Time) []CategoryCount {
	var pending, completed, overdue int64
	today := models.DateOf(now)
	for i := range tasks {
		t := &tasks[i]
		switch {
		case t.Status == models.TaskStatusCompleted:
			completed++
		case t.Status != models.TaskStatusPending || t.DueDate == nil:
		case t.IsOverdue(now):
			overdue++
		case models.DueDay(*t.DueDate).After(today):
			pending++
		}
	}
	return []CategoryCount{
		{Label: string(models.TaskStatusPending), Count: pending},
		{Label: string(models.TaskStatusCompleted), Count: completed},
		{Label: string(models.StatusOverdue), Count: overdue},
	}
}

func priorityCounts(tasks []models.Task) []CategoryCount {
	counts := map[models.TaskPriority]int64{}
	for _, t := range tasks {
		counts[t.Priority]++
	}
	return []CategoryCount{
		{Label: string(models.PriorityHigh), Count: counts[models.PriorityHigh]},
		{Label: string(models.PriorityMedium), Count: counts[models.PriorityMedium]},
		{Label: string(models.PriorityLow), Count: counts[models.PriorityLow]},
	}
}

// ChartSeries returns counts ready for a chart renderer, substituting a
// single placeholder category when there is nothing to draw.
func ChartSeries(counts []CategoryCount) []CategoryCount {
	for _, c := range counts {
		if c.Count != 0 {
			return counts
		}
	}
	return []CategoryCount{{Label: NoDataLabel, Count: 1}}
}
