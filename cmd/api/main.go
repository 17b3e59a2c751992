package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/user/taskloop/backend/internal/config"
	"github.com/user/taskloop/backend/internal/database"
	"github.com/user/taskloop/backend/internal/handler"
	"github.com/user/taskloop/backend/internal/jobs"
	"github.com/user/taskloop/backend/internal/pubsub"
	"github.com/user/taskloop/backend/internal/push"
	"github.com/user/taskloop/backend/internal/repository"
	"github.com/user/taskloop/backend/internal/scheduler"
	"github.com/user/taskloop/backend/internal/service"
	"github.com/user/taskloop/backend/pkg/jwt"
	"github.com/user/taskloop/backend/pkg/logger"
)

func main() {
	// .env is for local development; production configures the environment
	// directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Environment, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	jwtManager := jwt.NewManager(cfg.AuthSecret)
	hub := pubsub.NewHub()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	occRepo := repository.NewOccurrenceRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	subsRepo := repository.NewPushSubscriptionRepository(db)
	prefsRepo := repository.NewPreferencesRepository(db)
	tagRepo := repository.NewTagRepository(db)

	// Push transport
	pushClient := push.NewClient(push.Config{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		Subject:         cfg.VAPIDSubject,
	})
	if pushClient.Enabled() {
		log.Info().Msg("web push delivery enabled")
	} else {
		log.Warn().Msg("web push delivery disabled, VAPID keys not configured")
	}

	// Services
	maintainer := service.NewOccurrenceMaintainer(occRepo, todoRepo, log)
	todoService := service.NewTodoService(todoRepo, occRepo, reminderRepo, tagRepo, prefsRepo, notifRepo, maintainer, log)
	reminderService := service.NewReminderService(reminderRepo, todoRepo, occRepo)
	notificationService := service.NewNotificationService(notifRepo, hub)
	pushService := service.NewPushService(subsRepo, prefsRepo, pushClient, log)
	preferencesService := service.NewPreferencesService(prefsRepo)
	tagService := service.NewTagService(tagRepo)
	authService := service.NewAuthService(userRepo, jwtManager)

	// Scheduler and jobs
	host, err := scheduler.NewHost(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build scheduler")
	}
	err = host.Register(
		jobs.NewDispatcherJob(reminderRepo, todoRepo, notificationService, pushService, log),
		jobs.NewMaintenanceJob(todoRepo, maintainer, log),
		jobs.NewDigestJob(prefsRepo, notifRepo, todoRepo, occRepo, notificationService, log),
		jobs.NewRetentionJob(notifRepo, log),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register jobs")
	}
	host.Start()

	// HTTP
	router := handler.NewRouter(cfg, jwtManager, handler.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Todos:         handler.NewTodoHandler(todoService),
		Reminders:     handler.NewReminderHandler(reminderService),
		Notifications: handler.NewNotificationHandler(notificationService, hub, log),
		Push:          handler.NewPushHandler(pushService),
		Preferences:   handler.NewPreferencesHandler(preferencesService),
		Tags:          handler.NewTagHandler(tagService),
		Jobs:          handler.NewJobsHandler(host, cfg.CronSecret),
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown: stop accepting requests, then let running jobs
	// finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := host.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
	log.Info().Msg("stopped")
}
