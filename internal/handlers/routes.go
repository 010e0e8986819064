package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/middleware"
	"github.com/yukikurage/taskflow/internal/services"
)

// RegisterRoutes mounts the health check and the /api routes on r.
// Session middleware must already be installed on r.
func RegisterRoutes(r gin.IRouter, svc *services.Services) {
	authHandler := NewAuthHandler(svc.Auth)
	taskHandler := NewTaskHandler(svc.Task)
	commentHandler := NewCommentHandler(svc.Comment)
	notificationHandler := NewNotificationHandler(svc.Notification)
	userHandler := NewUserHandler(svc.User)
	dashboardHandler := NewDashboardHandler(svc.Report)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "TaskFlow API is running",
		})
	})

	requireAuth := middleware.RequireAuth(svc.Auth)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/token", authHandler.IssueToken)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		protected := api.Group("")
		protected.Use(requireAuth, middleware.LoadActor(svc.User))

		// Task routes
		tasks := protected.Group("/tasks")
		{
			taskAccess := middleware.RequireTaskAccess(svc.Task)

			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/reorder", taskHandler.ReorderTasks)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", taskAccess, taskHandler.GetTask)
			tasks.PATCH("/:id", taskAccess, taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/done", taskHandler.MarkTaskDone)
			tasks.GET("/:id/comments", commentHandler.ListComments)
			tasks.POST("/:id/comments", commentHandler.PostComment)
		}

		// Notification routes
		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/:id/dismiss", notificationHandler.DismissNotification)
			notifications.POST("/:id/read", notificationHandler.DismissNotification)
		}

		// User routes
		users := protected.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		protected.GET("/dashboard", dashboardHandler.GetDashboard)
	}
}
