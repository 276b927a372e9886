package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel notifications are published on.
const DefaultChannel = "EVENT_NOTIFICATION"

// RedisPublisher publishes events as JSON on a Redis pub/sub channel, where
// the notification service picks them up.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	now     func() time.Time
}

// NewRedisPublisher returns a publisher on channel (DefaultChannel if empty).
func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel, now: time.Now}
}

type envelope struct {
	Type   string    `json:"type"`
	SentAt time.Time `json:"sentAt"`
	Event
}

// Emit implements Notifier.
func (p *RedisPublisher) Emit(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(envelope{Type: p.channel, SentAt: p.now().UTC(), Event: ev})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
