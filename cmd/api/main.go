package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/report-service/internal/api/http"
	"github.com/spec-kit/report-service/internal/api/http/handlers"
	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/config"
	"github.com/spec-kit/report-service/internal/events"
	"github.com/spec-kit/report-service/internal/observability"
	"github.com/spec-kit/report-service/internal/persistence"
	"github.com/spec-kit/report-service/internal/photo"
	"github.com/spec-kit/report-service/internal/repository"
	"github.com/spec-kit/report-service/internal/service"
	"github.com/spec-kit/report-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), "", logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	adminLogRepo := repository.NewAdminLogRepository(pool)

	sessions := auth.NewSessionManager(auth.NewRedisSessionStore(redis.Client), cfg.Auth.SessionTTL())
	authMiddleware := auth.NewAuthMiddleware(sessions, userRepo, cfg.Auth.SessionCookieName)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(userRepo, sessions, cfg.Auth.BcryptCost)
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:       reportRepo,
		NotificationRepo: notificationRepo,
		AdminLogRepo:     adminLogRepo,
		UserRepo:         userRepo,
		Normalizer:       photo.NewNormalizer(cfg.Image),
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	notificationService := service.NewNotificationService(notificationRepo, logger)

	mailer := service.NewSMTPMailer(cfg.SMTP)
	notifyWorker := worker.NewNotificationWorker(dispatcher, mailer, adminLogRepo, logger)
	notifyWorker.Start(ctx)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.SessionCookieName, cfg.Auth.SessionTTL()),
		Reports:        handlers.NewReportsHandler(reportService),
		AdminReports:   handlers.NewAdminReportsHandler(reportService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	notifyWorker.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
