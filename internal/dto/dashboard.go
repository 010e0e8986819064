package dto

import "github.com/yukikurage/taskflow/internal/services"

// DashboardDTO represents the dashboard statistics in API responses.
// The *_chart fields are the chart-ready series with the empty placeholder applied.
type DashboardDTO struct {
	Employees      []UserRefDTO             `json:"employees"`
	SelectedUser   *UserRefDTO              `json:"selected_user"`
	StatusCounts   []services.CategoryCount `json:"status_counts"`
	PriorityCounts []services.CategoryCount `json:"priority_counts"`
	StatusChart    []services.CategoryCount `json:"status_chart"`
	PriorityChart  []services.CategoryCount `json:"priority_chart"`
}

func ToDashboardDTO(d *services.Dashboard) DashboardDTO {
	employees := make([]UserRefDTO, len(d.Employees))
	for i, e := range d.Employees {
		employees[i] = UserRefDTO{ID: e.ID, Username: e.Username}
	}

	dto := DashboardDTO{
		Employees:      employees,
		StatusCounts:   d.StatusCounts,
		PriorityCounts: d.PriorityCounts,
		StatusChart:    services.ChartSeries(d.StatusCounts),
		PriorityChart:  services.ChartSeries(d.PriorityCounts),
	}
	if d.Selected != nil {
		dto.SelectedUser = toUserRef(*d.Selected)
	}
	return dto
}
