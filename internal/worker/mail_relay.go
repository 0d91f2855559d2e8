package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/notify"
)

// relayQueue is the subset of the go-redis client the relay needs.
type relayQueue interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// MailRelay drains the outgoing email list filled by notify.RedisQueueMailer
// and hands each message to a delivering Mailer. Messages that cannot be
// decoded or delivered are moved to the failed list; messages interrupted by
// shutdown go back to the head of the queue.
type MailRelay struct {
	queue       relayQueue
	mailer      notify.Mailer
	logger      *zap.Logger
	key         string
	failedKey   string
	wait        time.Duration
	sendTimeout time.Duration
}

// NewMailRelay builds a relay reading from key.
func NewMailRelay(queue relayQueue, mailer notify.Mailer, logger *zap.Logger, key string) *MailRelay {
	return &MailRelay{
		queue:       queue,
		mailer:      mailer,
		logger:      logger,
		key:         key,
		failedKey:   key + ":failed",
		wait:        5 * time.Second,
		sendTimeout: 30 * time.Second,
	}
}

// Run processes messages until ctx is cancelled.
func (r *MailRelay) Run(ctx context.Context) error {
	r.logger.Info("mail relay started", zap.String("queue", r.key))
	for {
		if err := ctx.Err(); err != nil {
			r.logger.Info("mail relay stopped")
			return nil
		}
		if err := r.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			r.logger.Error("mail relay", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOne waits for a single queued message and delivers it. An empty
// queue is not an error.
func (r *MailRelay) ProcessOne(ctx context.Context) error {
	res, err := r.queue.BLPop(ctx, r.wait, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	// BLPOP replies with the key followed by the value.
	if len(res) != 2 {
		return nil
	}
	payload := res[1]

	// Once popped, the message only lives here: finish with it even if ctx is cancelled.
	workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.sendTimeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return r.requeue(workCtx, payload, err)
	}

	msg, queuedAt, err := notify.DecodeQueued([]byte(payload))
	if err != nil {
		r.logger.Warn("dropping undecodable email", zap.Error(err))
		return r.fail(workCtx, payload)
	}

	if err := r.mailer.Send(workCtx, msg); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return r.requeue(workCtx, payload, err)
		}
		r.logger.Error("relay delivery failed", zap.String("subject", msg.Subject), zap.Error(err))
		return r.fail(workCtx, payload)
	}

	r.logger.Debug("email relayed",
		zap.String("subject", msg.Subject),
		zap.Duration("queued_for", time.Since(queuedAt)))
	return nil
}

func (r *MailRelay) fail(ctx context.Context, payload string) error {
	if err := r.queue.RPush(ctx, r.failedKey, payload).Err(); err != nil {
		return fmt.Errorf("park failed email: %w", err)
	}
	return nil
}

// requeue puts an interrupted message back at the head of the queue and
// returns cause so Run can tell shutdown from a real failure.
func (r *MailRelay) requeue(ctx context.Context, payload string, cause error) error {
	if err := r.queue.LPush(ctx, r.key, payload).Err(); err != nil {
		return fmt.Errorf("requeue email: %w", err)
	}
	r.logger.Info("email requeued", zap.Error(cause))
	return cause
}
