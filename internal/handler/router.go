package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/user/taskloop/backend/internal/config"
	"github.com/user/taskloop/backend/internal/middleware"
	"github.com/user/taskloop/backend/pkg/jwt"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Todos         *TodoHandler
	Reminders     *ReminderHandler
	Notifications *NotificationHandler
	Push          *PushHandler
	Preferences   *PreferencesHandler
	Tags          *TagHandler
	Jobs          *JobsHandler
}

// NewRouter assembles the gin engine: middleware stack, health, auth, and
// the authenticated /api/v1 surface.
func NewRouter(cfg *config.Config, jwtManager *jwt.Manager, h Handlers, log zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	rateLimiter := middleware.NewRateLimiter(100, time.Minute)
	r.Use(middleware.RateLimit(rateLimiter))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.GET("/me", middleware.Auth(jwtManager), h.Auth.Me)
	}

	authed := v1.Group("")
	authed.Use(middleware.Auth(jwtManager))
	{
		todos := authed.Group("/todos")
		{
			todos.POST("", h.Todos.Create)
			todos.GET("", h.Todos.List)
			todos.GET("/:id", h.Todos.Get)
			todos.PATCH("/:id", h.Todos.Update)
			todos.DELETE("/:id", h.Todos.Delete)
			todos.POST("/:id/stop-recurring", h.Todos.StopRecurring)
			todos.GET("/:id/occurrences", h.Todos.ListOccurrences)
			todos.GET("/:id/current-occurrence", h.Todos.CurrentOccurrence)
			todos.POST("/:id/reminders", h.Reminders.Create)
			todos.GET("/:id/reminders", h.Reminders.ListByTodo)
		}

		occurrences := authed.Group("/occurrences")
		{
			occurrences.PATCH("/:id", h.Todos.UpdateOccurrence)
			occurrences.POST("/:id/complete", h.Todos.CompleteOccurrence)
			occurrences.POST("/:id/skip", h.Todos.SkipOccurrence)
		}

		reminders := authed.Group("/reminders")
		{
			reminders.POST("/:id/snooze", h.Reminders.Snooze)
			reminders.DELETE("/:id", h.Reminders.Delete)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", h.Notifications.List)
			notifications.GET("/unread-count", h.Notifications.UnreadCount)
			notifications.GET("/stream", h.Notifications.Stream)
			notifications.PATCH("/:id", h.Notifications.Update)
			notifications.POST("/mark-all-read", h.Notifications.MarkAllRead)
			notifications.POST("/mark-read", h.Notifications.MarkRead)
			notifications.DELETE("/:id", h.Notifications.Delete)
		}

		push := authed.Group("/push")
		{
			push.GET("/vapid-public-key", h.Push.VAPIDPublicKey)
			push.POST("/subscribe", h.Push.Subscribe)
			push.POST("/unsubscribe", h.Push.Unsubscribe)
			push.GET("/subscriptions", h.Push.ListSubscriptions)
			push.DELETE("/subscriptions/:id", h.Push.DeleteSubscription)
		}

		preferences := authed.Group("/me/preferences")
		{
			preferences.GET("", h.Preferences.Get)
			preferences.PATCH("", h.Preferences.Update)
			preferences.GET("/timezones", h.Preferences.Timezones)
		}

		tags := authed.Group("/tags")
		{
			tags.POST("", h.Tags.Create)
			tags.GET("", h.Tags.List)
			tags.PATCH("/:id", h.Tags.Update)
			tags.DELETE("/:id", h.Tags.Delete)
		}
	}

	// Ops surface, guarded by X-Cron-Secret rather than user auth.
	v1.POST("/internal/jobs/:name/run", h.Jobs.Run)

	return r
}
