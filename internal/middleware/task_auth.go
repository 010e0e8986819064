package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/constants"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	applog "github.com/yukikurage/taskflow/internal/logger"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/policy"
	"go.uber.org/zap"
)

// TaskGetter returns a task when the actor may open it.
type TaskGetter interface {
	GetTaskIfVisible(actor policy.Actor, taskID uint64) (*models.Task, error)
}

// RequireTaskAccess loads the task named by the :id parameter into the context.
// Missing and hidden tasks get the same denial.
func RequireTaskAccess(tasks TaskGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := tasks.GetTaskIfVisible(actor, taskID)
		if err != nil {
			var denied *policy.DeniedError
			if errors.As(err, &denied) {
				apierrors.Denied(c, denied.Reason)
			} else {
				applog.Log.Error("failed to load task", zap.Uint64("task_id", taskID), zap.Error(err))
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task stored by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := v.(*models.Task)
	return task, ok
}
