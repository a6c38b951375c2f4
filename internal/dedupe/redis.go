package dedupe

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sender:seen:"

// RedisDeduper marks processed updates in Redis, so redelivered updates are
// recognized across restarts and across processes.
type RedisDeduper struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisDeduper(client *redis.Client, log *slog.Logger) *RedisDeduper {
	if log == nil {
		log = slog.Default()
	}

	return &RedisDeduper{
		client: client,
		log:    log,
	}
}

func (d *RedisDeduper) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := d.client.SetNX(ctx, keyPrefix+key, 1, ttl).Result()
	if err != nil {
		d.log.Error("failed to mark update as seen", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return !acquired, nil
}
