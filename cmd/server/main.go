package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"eventscout/config"
	"eventscout/internal/adapters/auth"
	"eventscout/internal/adapters/email"
	"eventscout/internal/adapters/feed"
	httpdelivery "eventscout/internal/delivery/http"
	"eventscout/internal/delivery/http/controllers"
	"eventscout/internal/delivery/http/middleware"
	"eventscout/internal/domain"
	"eventscout/internal/repository/postgres"
	"eventscout/internal/scheduler"
	"eventscout/internal/services"
)

const serviceTimeout = 10 * time.Second

func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	userRepo := postgres.NewUserRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokenIssuer, tokenVerifier := auth.NewJWTCodec(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccess,
		},
	}, logger)
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	var source domain.EventSource
	switch cfg.FeedSource {
	case "http":
		source = feed.NewHTTPSource(nil, cfg.FeedURL)
	default:
		source = feed.NewFileSource(cfg.FeedPath)
	}

	// Services
	notifier := services.NewNotificationService(notificationRepo, userRepo, mailer, email.NewTemplateRenderer(), logger)
	eventService := services.NewEventService(eventRepo, source, notifier, logger, serviceTimeout)
	userService := services.NewUserService(userRepo, hasher, tokenIssuer, cfg.TokenExpiry, serviceTimeout)

	// HTTP
	eventController := controllers.NewEventController(logger, eventService)
	authController := controllers.NewAuthController(logger, userService)
	paymentController := controllers.NewPaymentController(logger, userService)
	notificationController := controllers.NewNotificationController(logger, notifier)
	mux := httpdelivery.NewRouter(eventController, authController, paymentController, notificationController, tokenVerifier)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.LoggingMiddleware(logger, mux))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SyncInterval > 0 {
		sync := scheduler.New(cfg.SyncInterval, func(ctx context.Context) error {
			_, err := eventService.SyncFromSource(ctx)
			return err
		}, logger)
		go sync.Run(ctx)
		logger.Info("feed sync scheduled", "interval", cfg.SyncInterval.String())
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
