package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/dto"
	"github.com/yukikurage/taskflow/internal/services"
	"github.com/yukikurage/taskflow/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns the users the current user manages (or all, for superusers)
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(actor, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      dto.ToUserDTOs(users),
		"pagination": utils.NewPaginationResponse(params, total),
	})
}

// DeleteUser deletes one of the manager's employees and, optionally, emails them
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "id", "Invalid user ID")
	if !ok {
		return
	}

	type DeleteUserRequest struct {
		SendEmail bool   `json:"send_email"`
		Reason    string `json:"reason" binding:"max=2000"`
	}

	var req DeleteUserRequest
	// the body is optional; chunked requests report ContentLength -1
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondBindingError(c, err)
			return
		}
	}

	deleted, err := h.userService.DeleteUser(c.Request.Context(), actor, targetID, services.DeleteUserInput{
		Notify: req.SendEmail,
		Reason: req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := fmt.Sprintf("User '%s' deleted.", deleted.Username)
	if req.SendEmail {
		message = fmt.Sprintf("User '%s' deleted and notified by email.", deleted.Username)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}
