package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newYork is west of UTC, where a midnight-UTC date reads back as the evening before.
func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EDT", -4*60*60)
	}
	return loc
}

func TestDueDateReadBackInDriverLocation(t *testing.T) {
	loc := newYork(t)
	stored := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	readBack := stored.In(loc)
	require.Equal(t, 19, readBack.Day())

	task := Task{Status: TaskStatusPending, DueDate: &readBack}
	require.NoError(t, task.AfterFind(nil))
	assert.Equal(t, stored, *task.DueDate)
	assert.Equal(t, time.UTC, task.DueDate.Location())

	assert.False(t, task.IsOverdue(time.Date(2026, 10, 19, 23, 0, 0, 0, loc)))
	assert.True(t, task.IsOverdue(time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)))
}

func TestIsOverdue(t *testing.T) {
	loc := newYork(t)
	due := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC).In(loc)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{name: "due tomorrow", task: Task{Status: TaskStatusPending, DueDate: &due}, want: false},
		{name: "no due date", task: Task{Status: TaskStatusPending}, want: false},
		{name: "completed", task: Task{Status: TaskStatusCompleted, DueDate: &due}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsOverdue(now))
		})
	}

	task := Task{Status: TaskStatusPending, DueDate: &due}
	assert.True(t, task.IsOverdue(now.AddDate(0, 0, 1)))
}

func TestDateOf(t *testing.T) {
	loc := newYork(t)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), DateOf(time.Date(2026, 10, 19, 22, 30, 0, 0, loc)))
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), DueDay(time.Date(2026, 10, 19, 22, 30, 0, 0, loc)))
}
