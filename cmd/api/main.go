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

	httptransport "github.com/spec-kit/account-service/internal/api/http"
	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/notify"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/persistence"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/service"
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

	pingers := map[string]handlers.Pinger{}
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	accountRepo, err := openAccountStore(ctx, cfg, logger, pingers, &closers)
	if err != nil {
		logger.Fatal("failed to open account store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}

	mailer, err := openMailer(ctx, cfg, logger, pingers, &closers)
	if err != nil {
		logger.Fatal("failed to set up mailer", zap.String("driver", cfg.Notification.Driver), zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, mailer, logger, cfg.Notification).RegisterHandlers()

	accountService := service.NewAccountService(service.AccountDependencies{
		AccountRepo: accountRepo,
		Codes:       auth.NewRandomCodes(cfg.Auth.CodeBytes),
		Dispatcher:  dispatcher,
		Logger:      logger,
		BcryptCost:  cfg.Auth.BcryptCost,
	})

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pingers, logger),
		Accounts: handlers.NewAccountsHandler(accountService),
		Metrics:  handlers.NewMetricsHandler(metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func openAccountStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, pingers map[string]handlers.Pinger, closers *[]func()) (repository.AccountRepository, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, pg.Close)
		pingers["postgres"] = pg

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				return nil, err
			}
		}
		return repository.NewPostgresAccountRepository(pg.PoolHandle()), nil

	case config.StoreMemory:
		logger.Warn("using in-memory account store; data is lost on restart")
		return repository.NewMemoryAccountRepository(), nil

	default:
		mg, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, mg.Close)
		pingers["mongo"] = mg

		repo := repository.NewMongoAccountRepository(mg.Collection(cfg.Mongo.Collection), cfg.Mongo.Timeout())
		if cfg.Mongo.RunIndexCreation {
			if err := repo.EnsureIndexes(ctx); err != nil {
				return nil, err
			}
		}
		return repo, nil
	}
}

func openMailer(ctx context.Context, cfg *config.Config, logger *zap.Logger, pingers map[string]handlers.Pinger, closers *[]func()) (notify.Mailer, error) {
	switch cfg.Notification.Driver {
	case config.NotifySMTP:
		servers, err := notify.ServerListFromConfig(cfg.Notification.SMTP)
		if err != nil {
			return nil, err
		}
		mailer, err := notify.NewSMTPMailer(servers, logger)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, mailer.Close)
		return mailer, nil

	case config.NotifyRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, rdb.Close)
		pingers["redis"] = rdb
		return notify.NewRedisQueueMailer(rdb.Client, cfg.Notification.QueueKey), nil

	default:
		return notify.NewLogMailer(logger), nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
