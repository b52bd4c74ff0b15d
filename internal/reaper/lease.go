package reaper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultLeaseKey = "groundslot:reaper:leader"

// RedisLease lets one instance sweep per lease period. The lease is never
// released early; it simply lapses, so a crashed holder costs one period.
type RedisLease struct {
	client   *redis.Client
	key      string
	instance string
	ttl      time.Duration
}

func NewRedisLease(client *redis.Client, ttl time.Duration) *RedisLease {
	return &RedisLease{
		client:   client,
		key:      DefaultLeaseKey,
		instance: uuid.NewString(),
		ttl:      ttl,
	}
}

func (l *RedisLease) Instance() string {
	return l.instance
}

func (l *RedisLease) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.instance, l.ttl).Result()
}
