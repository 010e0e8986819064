package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/dto"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	"github.com/yukikurage/taskflow/internal/services"
)

type DashboardHandler struct {
	reportService *services.ReportService
}

func NewDashboardHandler(reportService *services.ReportService) *DashboardHandler {
	return &DashboardHandler{reportService: reportService}
}

// GetDashboard returns task statistics for one employee of the team.
// ?employee=<id> selects the employee.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var employeeID *uint64
	if raw := c.Query("employee"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid employee ID")
			return
		}
		employeeID = &id
	}

	dashboard, err := h.reportService.Dashboard(actor, employeeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardDTO(dashboard))
}
