package notify

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/smtppool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/account-service/internal/config"
)

var testMessage = Message{
	From:    "noreply@example.com",
	To:      "a@b.com",
	Subject: "Please verify your account",
	Text:    "verification code abc. Id: 1",
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.Send(context.Background(), testMessage))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "a@b.com", entry.ContextMap()["to"])

	assert.ErrorIs(t, m.Send(context.Background(), Message{To: "a@b.com"}), ErrInvalidMessage)
}

func TestLogMailerHonoursCancelledContext(t *testing.T) {
	m := NewLogMailer(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Send(ctx, testMessage), context.Canceled)
}

type fakeQueue struct {
	key    string
	values []interface{}
	err    error
}

func (f *fakeQueue) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.key = key
	f.values = append(f.values, values...)
	return redis.NewIntResult(int64(len(f.values)), f.err)
}

func TestRedisQueueMailer(t *testing.T) {
	q := &fakeQueue{}
	m := NewRedisQueueMailer(q, "outgoing")

	require.NoError(t, m.Send(context.Background(), testMessage))
	assert.Equal(t, "outgoing", q.key)
	require.Len(t, q.values, 1)

	var got queuedEmail
	require.NoError(t, json.Unmarshal(q.values[0].([]byte), &got))
	assert.Equal(t, testMessage, got.Message)
	assert.False(t, got.QueuedAt.IsZero())
}

func TestRedisQueueMailerPropagatesErrors(t *testing.T) {
	boom := errors.New("connection refused")
	m := NewRedisQueueMailer(&fakeQueue{err: boom}, "outgoing")

	err := m.Send(context.Background(), testMessage)
	assert.ErrorIs(t, err, boom)
}

type fakeSender struct {
	sent []smtppool.Email
	err  error
}

func (f *fakeSender) Send(e smtppool.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeSender) Close() {}

func TestSMTPMailerRoundRobin(t *testing.T) {
	a, b := &fakeSender{}, &fakeSender{}
	m := &SMTPMailer{
		pools:  []emailSender{a, b},
		hosts:  []string{"a:25", "b:25"},
		logger: zap.NewNop(),
	}

	for i := 0; i < 4; i++ {
		require.NoError(t, m.Send(context.Background(), testMessage))
	}
	assert.Len(t, a.sent, 2)
	assert.Len(t, b.sent, 2)
	assert.Equal(t, []string{"a@b.com"}, a.sent[0].To)
	assert.Equal(t, []byte(testMessage.Text), a.sent[0].Text)
}

func TestSMTPMailerReportsFailure(t *testing.T) {
	boom := errors.New("421 service not available")
	m := &SMTPMailer{
		pools:  []emailSender{&fakeSender{err: boom}},
		hosts:  []string{"a:25"},
		logger: zap.NewNop(),
	}

	err := m.Send(context.Background(), testMessage)
	assert.ErrorIs(t, err, boom)
}

func TestServerListFromConfig(t *testing.T) {
	list, err := ServerListFromConfig(config.SMTPConfig{
		Host:               "mail.local",
		Port:               2525,
		Username:           "user",
		Password:           "pass",
		Connections:        2,
		SendTimeoutSeconds: 5,
	})
	require.NoError(t, err)
	require.Len(t, list.Servers, 1)
	assert.Equal(t, "mail.local:2525", list.Servers[0].Address())
	assert.Equal(t, "user", list.Servers[0].AuthData.Username)
}

func TestReadServerListFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "smtp-servers.yaml")
	content := `servers:
  - host: smtp1.local
    port: "587"
    connections: 3
    sendTimeout: 5
    auth:
      user: bot
      password: secret
  - host: smtp2.local
    port: "25"
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	list, err := ReadServerListFromFile(file)
	require.NoError(t, err)
	require.Len(t, list.Servers, 2)
	assert.Equal(t, "smtp1.local:587", list.Servers[0].Address())
	assert.Equal(t, "bot", list.Servers[0].AuthData.Username)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("servers: []\n"), 0o600))
	_, err = ReadServerListFromFile(empty)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("relays: []\n"), 0o600))
	_, err = ReadServerListFromFile(unknown)
	assert.Error(t, err)
}

func TestDecodeQueued(t *testing.T) {
	q := &fakeQueue{}
	require.NoError(t, NewRedisQueueMailer(q, "outgoing").Send(context.Background(), testMessage))

	msg, queuedAt, err := DecodeQueued(q.values[0].([]byte))
	require.NoError(t, err)
	assert.Equal(t, testMessage, msg)
	assert.False(t, queuedAt.IsZero())

	_, _, err = DecodeQueued([]byte(`{"subject":"no recipients"}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, _, err = DecodeQueued([]byte(`not json`))
	assert.Error(t, err)
}
