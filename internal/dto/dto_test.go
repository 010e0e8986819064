package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/services"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2025-03-09", want: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{in: "2025-03-09T23:15:00+09:00", want: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{in: "09/03/2025", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestToTaskDTO(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	due := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:           3,
		Title:        "Report",
		DueDate:      &due,
		Status:       models.TaskStatusPending,
		AssignedToID: 2,
		AssignedTo:   models.User{ID: 2, Username: "bob"},
	}

	out := ToTaskDTO(task, now)
	require.NotNil(t, out.DueDate)
	assert.Equal(t, "2025-06-15", *out.DueDate)
	assert.True(t, out.IsOverdue)
	assert.Equal(t, "bob", out.AssignedTo.Username)
	assert.Nil(t, out.CreatedBy)

	task.Status = models.TaskStatusCompleted
	assert.False(t, ToTaskDTO(task, now).IsOverdue)
}

func TestToTaskDTO_DueDateInDriverLocation(t *testing.T) {
	loc := time.FixedZone("EDT", -4*60*60)
	due, err := ParseDate("2026-10-20")
	require.NoError(t, err)
	readBack := due.In(loc)

	task := models.Task{ID: 1, Status: models.TaskStatusPending, DueDate: &readBack}
	out := ToTaskDTO(task, time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC))
	require.NotNil(t, out.DueDate)
	assert.Equal(t, "2026-10-20", *out.DueDate)
	assert.False(t, out.IsOverdue)
}

func TestToDashboardDTO_EmptyCharts(t *testing.T) {
	d := &services.Dashboard{
		StatusCounts:   []services.CategoryCount{{Label: "Pending"}, {Label: "Completed"}, {Label: "Overdue"}},
		PriorityCounts: []services.CategoryCount{{Label: "High", Count: 1}},
	}

	out := ToDashboardDTO(d)
	assert.Empty(t, out.Employees)
	assert.Nil(t, out.SelectedUser)
	assert.Equal(t, []services.CategoryCount{{Label: services.NoDataLabel, Count: 1}}, out.StatusChart)
	assert.Equal(t, d.PriorityCounts, out.PriorityChart)
}
