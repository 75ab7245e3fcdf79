package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/link-shortener/internal/api/http"
	"github.com/spec-kit/link-shortener/internal/api/http/handlers"
	"github.com/spec-kit/link-shortener/internal/auth"
	"github.com/spec-kit/link-shortener/internal/bot"
	"github.com/spec-kit/link-shortener/internal/config"
	"github.com/spec-kit/link-shortener/internal/events"
	"github.com/spec-kit/link-shortener/internal/observability"
	"github.com/spec-kit/link-shortener/internal/persistence"
	"github.com/spec-kit/link-shortener/internal/repository"
	"github.com/spec-kit/link-shortener/internal/service"
	"github.com/spec-kit/link-shortener/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	urlRepo := repository.NewURLRepository(pool)

	authService := service.NewAuthService(*cfg, userRepo, dispatcher, logger)
	urlService := service.NewURLService(urlRepo, redis.Client, dispatcher, logger, cfg.Shortener.AliasLength)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), logger)

	subscribeAuditLog(dispatcher, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		URLs:           handlers.NewURLsHandler(urlService, metrics),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	clickSync := worker.NewClickSyncWorker(redis.Client, urlRepo, logger, 30*time.Second)
	go clickSync.Run(ctx)

	if cfg.Bot.Token != "" {
		tgBot, err := bot.New(cfg.Bot.Token, cfg.Bot.PollTimeoutSec, urlService, metrics, logger)
		if err != nil {
			logger.Fatal("failed to start telegram bot", zap.Error(err))
		}
		go func() {
			if err := tgBot.Run(ctx); err != nil {
				logger.Error("telegram bot stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN not provided; bot disabled")
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func subscribeAuditLog(dispatcher events.Dispatcher, logger *zap.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		logger.Info("domain event",
			zap.String("type", string(event.Type)),
			zap.String("source", string(event.Source)),
			zap.Any("payload", event.Payload),
		)
		return nil
	}
	dispatcher.Subscribe(events.EventUserRegistered, audit)
	dispatcher.Subscribe(events.EventURLCreated, audit)
	dispatcher.Subscribe(events.EventURLDeleted, audit)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
