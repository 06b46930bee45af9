package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduplicator decides whether a delivery is the first one seen for an event
// ID. Delivery is at-least-once, so without a deduplicator a redelivered
// event double-counts.
type Deduplicator interface {
	FirstDelivery(ctx context.Context, eventID string) (bool, error)
}

const dedupTTL = 24 * time.Hour

// RedisDeduplicator implements the idempotency barrier with SET NX and a TTL
// on the event ID. It is optional: when REDIS_URL is not configured the
// consumer counts every delivery.
type RedisDeduplicator struct {
	client *redis.Client
}

func NewRedisDeduplicator(client *redis.Client) *RedisDeduplicator {
	return &RedisDeduplicator{client: client}
}

func (d *RedisDeduplicator) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	return d.client.SetNX(ctx, "overdraft:event:"+eventID, 1, dedupTTL).Result()
}
