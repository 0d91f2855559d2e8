package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/notify"
)

// fakeQueue behaves like a Redis list: pushes fail on a done context, and
// onPop runs right after an item is handed out.
type fakeQueue struct {
	items  []string
	pushed map[string][]interface{}
	popErr error
	onPop  func()
}

func (q *fakeQueue) BLPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	if err := ctx.Err(); err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	if q.popErr != nil {
		return redis.NewStringSliceResult(nil, q.popErr)
	}
	if len(q.items) == 0 {
		return redis.NewStringSliceResult(nil, redis.Nil)
	}
	item := q.items[0]
	q.items = q.items[1:]
	if q.onPop != nil {
		q.onPop()
	}
	return redis.NewStringSliceResult([]string{keys[0], item}, nil)
}

func (q *fakeQueue) LPush(ctx context.Context, _ string, values ...interface{}) *redis.IntCmd {
	if err := ctx.Err(); err != nil {
		return redis.NewIntResult(0, err)
	}
	for _, v := range values {
		q.items = append([]string{v.(string)}, q.items...)
	}
	return redis.NewIntResult(int64(len(q.items)), nil)
}

func (q *fakeQueue) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	if err := ctx.Err(); err != nil {
		return redis.NewIntResult(0, err)
	}
	if q.pushed == nil {
		q.pushed = map[string][]interface{}{}
	}
	q.pushed[key] = append(q.pushed[key], values...)
	return redis.NewIntResult(int64(len(q.pushed[key])), nil)
}

type recordingMailer struct {
	sent   []notify.Message
	err    error
	onSend func()
}

func (m *recordingMailer) Send(ctx context.Context, msg notify.Message) error {
	if m.onSend != nil {
		m.onSend()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var testMessage = notify.Message{
	From:    "noreply@example.com",
	To:      "a@b.com",
	Subject: "Please verify your account",
	Text:    "verification code abc. Id: 1",
}

// enqueue produces a payload exactly as the queue mailer writes it.
func enqueue(t *testing.T, q *fakeQueue) {
	t.Helper()
	producer := &fakeQueue{}
	require.NoError(t, notify.NewRedisQueueMailer(producer, "outgoing").Send(context.Background(), testMessage))
	q.items = append(q.items, string(producer.pushed["outgoing"][0].([]byte)))
}

func TestMailRelayDelivers(t *testing.T) {
	q := &fakeQueue{}
	enqueue(t, q)
	mailer := &recordingMailer{}

	relay := NewMailRelay(q, mailer, zap.NewNop(), "outgoing")
	require.NoError(t, relay.ProcessOne(context.Background()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, testMessage, mailer.sent[0])
	assert.Empty(t, q.pushed["outgoing:failed"])
}

func TestMailRelayEmptyQueue(t *testing.T) {
	relay := NewMailRelay(&fakeQueue{}, &recordingMailer{}, zap.NewNop(), "outgoing")
	assert.NoError(t, relay.ProcessOne(context.Background()))
}

func TestMailRelayMovesFailuresAside(t *testing.T) {
	q := &fakeQueue{items: []string{"garbage"}}
	enqueue(t, q)
	mailer := &recordingMailer{err: errors.New("smtp down")}

	relay := NewMailRelay(q, mailer, zap.NewNop(), "outgoing")
	require.NoError(t, relay.ProcessOne(context.Background()))
	require.NoError(t, relay.ProcessOne(context.Background()))

	assert.Len(t, q.pushed["outgoing:failed"], 2)
	assert.Empty(t, mailer.sent)
}

func TestMailRelayReportsQueueErrors(t *testing.T) {
	boom := errors.New("connection reset")
	relay := NewMailRelay(&fakeQueue{popErr: boom}, &recordingMailer{}, zap.NewNop(), "outgoing")
	assert.ErrorIs(t, relay.ProcessOne(context.Background()), boom)
}

func TestMailRelayRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	relay := NewMailRelay(&fakeQueue{}, &recordingMailer{}, zap.NewNop(), "outgoing")
	assert.NoError(t, relay.Run(ctx))
}

func TestMailRelayRequeuesWhenCancelledAfterPop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := &fakeQueue{onPop: cancel}
	enqueue(t, q)
	mailer := &recordingMailer{}

	relay := NewMailRelay(q, mailer, zap.NewNop(), "outgoing")
	err := relay.ProcessOne(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Empty(t, mailer.sent)
	assert.Len(t, q.items, 1, "message is back on the queue")
	assert.Empty(t, q.pushed["outgoing:failed"])

	msg, _, err := notify.DecodeQueued([]byte(q.items[0]))
	require.NoError(t, err)
	assert.Equal(t, testMessage, msg)
}

func TestMailRelayDeliveryOutlivesShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := &fakeQueue{}
	enqueue(t, q)
	mailer := &recordingMailer{onSend: cancel}

	relay := NewMailRelay(q, mailer, zap.NewNop(), "outgoing")
	require.NoError(t, relay.ProcessOne(ctx))

	require.Len(t, mailer.sent, 1)
	assert.Empty(t, q.items)
}

func TestMailRelayRequeuesTimedOutDelivery(t *testing.T) {
	q := &fakeQueue{}
	enqueue(t, q)
	mailer := &recordingMailer{err: context.DeadlineExceeded}

	relay := NewMailRelay(q, mailer, zap.NewNop(), "outgoing")
	err := relay.ProcessOne(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Len(t, q.items, 1)
	assert.Empty(t, q.pushed["outgoing:failed"])
}
