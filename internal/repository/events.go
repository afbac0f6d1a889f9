package repository

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/p2pdao/lending-dao/internal/domain"
)

const eventChannel = "dao:events"

// RedisPublisher fans events out on a pub/sub channel after a call commits.
// Publishing is best-effort: the state change already persisted, so a
// publish failure is logged and dropped rather than failing the call.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, events []*domain.Event) {
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			log.Printf("failed to encode event %s: %v", e.Type, err)
			continue
		}
		if err := p.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
			log.Printf("failed to publish event %s: %v", e.Type, err)
		}
	}
}
