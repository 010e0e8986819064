package commands

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/services"
)

func TestInviteCodeCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"invite-code"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}\n$`), out.String())
}

func TestDashboardRequiresUser(t *testing.T) {
	cmd := newDashboardCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

func TestPrintDashboard(t *testing.T) {
	var out bytes.Buffer
	printDashboard(&out, &services.Dashboard{})
	assert.Equal(t, "No employees to report on.\n", out.String())

	bob := models.User{ID: 2, Username: "bob"}
	out.Reset()
	printDashboard(&out, &services.Dashboard{Employees: []models.User{bob}})
	assert.Equal(t, "Employee is not on this team (1 employee(s)).\n", out.String())

	out.Reset()
	printDashboard(&out, &services.Dashboard{
		Employees: []models.User{bob},
		Selected:  &bob,
		StatusCounts: []services.CategoryCount{
			{Label: "Pending", Count: 2},
			{Label: "Completed", Count: 1},
			{Label: "Overdue", Count: 0},
		},
		PriorityCounts: []services.CategoryCount{{Label: "High"}, {Label: "Medium"}, {Label: "Low"}},
	})

	text := out.String()
	assert.Contains(t, text, "Employee: bob (#2)")
	assert.Contains(t, text, "Team: 1 employee(s)")
	assert.Regexp(t, `Pending\s+2`, text)
	assert.Contains(t, text, services.NoDataLabel)
}
