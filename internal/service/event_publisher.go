package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const EventMatchAction = "EVENT_MATCH_ACTION"

type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisEventPublisher publishes JSON events on Redis pub/sub channels.
type RedisEventPublisher struct {
	rdb Publisher
}

func NewRedisEventPublisher(rdb Publisher) *RedisEventPublisher {
	return &RedisEventPublisher{rdb: rdb}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, channel string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", channel, err)
	}
	if err := p.rdb.Publish(ctx, channel, b).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// NoopEventPublisher drops events. Used when Redis is not configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, string, any) error { return nil }
