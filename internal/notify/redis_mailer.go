package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// queueClient is the subset of the go-redis client the queue mailer needs.
type queueClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// queuedEmail is the envelope pushed for the mail bridge.
type queuedEmail struct {
	Message
	QueuedAt time.Time `json:"queuedAt"`
}

// RedisQueueMailer hands messages to a mail bridge through a Redis list.
// Send returns once the message is durably queued.
type RedisQueueMailer struct {
	client queueClient
	key    string
}

// NewRedisQueueMailer pushes onto the list named key.
func NewRedisQueueMailer(client queueClient, key string) *RedisQueueMailer {
	return &RedisQueueMailer{client: client, key: key}
}

func (m *RedisQueueMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(queuedEmail{Message: msg, QueuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	if err := m.client.RPush(ctx, m.key, payload).Err(); err != nil {
		return fmt.Errorf("queue email: %w", err)
	}
	return nil
}

// DecodeQueued parses a payload pushed by RedisQueueMailer.
func DecodeQueued(payload []byte) (Message, time.Time, error) {
	var queued queuedEmail
	if err := json.Unmarshal(payload, &queued); err != nil {
		return Message{}, time.Time{}, fmt.Errorf("decode queued email: %w", err)
	}
	if err := queued.Message.validate(); err != nil {
		return Message{}, time.Time{}, err
	}
	return queued.Message, queued.QueuedAt, nil
}
