package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/notify"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/persistence"
	"github.com/spec-kit/account-service/internal/worker"
)

// mailrelay delivers the emails queued by the API when NOTIFY_DRIVER=redis.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	servers, err := notify.ServerListFromConfig(cfg.Notification.SMTP)
	if err != nil {
		logger.Fatal("failed to read smtp servers", zap.Error(err))
	}
	mailer, err := notify.NewSMTPMailer(servers, logger)
	if err != nil {
		logger.Fatal("failed to set up smtp", zap.Error(err))
	}
	defer mailer.Close()

	if backlog, err := rdb.QueueLength(ctx, cfg.Notification.QueueKey); err == nil {
		logger.Info("mail queue backlog", zap.Int64("pending", backlog))
	}

	relay := worker.NewMailRelay(rdb.Client, mailer, logger, cfg.Notification.QueueKey)
	if err := relay.Run(ctx); err != nil {
		logger.Error("mail relay exited", zap.Error(err))
	}
}
