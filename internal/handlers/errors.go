package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	applog "github.com/yukikurage/taskflow/internal/logger"
	"github.com/yukikurage/taskflow/internal/middleware"
	"github.com/yukikurage/taskflow/internal/policy"
	"github.com/yukikurage/taskflow/internal/services"
	"go.uber.org/zap"
)

// respondServiceError maps service errors onto API error responses.
func respondServiceError(c *gin.Context, err error) {
	var (
		verr   *services.ValidationError
		denied *policy.DeniedError
	)

	switch {
	case errors.As(err, &verr):
		apierrors.BadRequestWithDetails(c, "Validation failed", verr.Fields)
	case errors.As(err, &denied):
		apierrors.Denied(c, denied.Reason)
	case errors.Is(err, services.ErrCommentEmpty):
		apierrors.BadRequestWithDetails(c, "Validation failed", map[string]string{
			"content": "This field is required.",
		})
	case errors.Is(err, services.ErrNotificationNotFound):
		apierrors.NotFound(c, "Notification not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		applog.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		apierrors.InternalError(c, "")
	}
}

// currentActor returns the actor loaded by middleware.LoadActor or writes a 401.
func currentActor(c *gin.Context) (policy.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return policy.Actor{}, false
	}
	return actor, true
}
