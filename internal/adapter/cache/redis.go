package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/microshop/orders-service/internal/adapter/config"
	"github.com/redis/go-redis/v9"
)

// Cache is a small string cache used for read-path catalog enrichment.
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get reports ok=false on a miss.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Key(operation, id string) string
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(conf *config.Redis) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: conf.Addr}),
	}
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisCache) Key(operation, id string) string {
	return fmt.Sprintf("orders:%s:%s", operation, id)
}
