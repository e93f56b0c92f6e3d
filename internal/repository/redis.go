package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shareloop/internal/config"
	"shareloop/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisItemCache keeps item records as JSON values under a per-item key
// with a TTL. A missing key is a miss, never an error.
type RedisItemCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisItemCache(client *redis.Client, ttl time.Duration) *RedisItemCache {
	return &RedisItemCache{
		client: client,
		ttl:    ttl,
	}
}

func itemKey(id int64) string {
	return fmt.Sprintf("item:%d", id)
}

func (r *RedisItemCache) Get(ctx context.Context, id int64) (*models.Item, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, itemKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item from redis: %w", err)
	}

	var item models.Item
	if err := json.Unmarshal([]byte(val), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	return &item, nil
}

func (r *RedisItemCache) Set(ctx context.Context, item *models.Item) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	if err := r.client.Set(ctx, itemKey(item.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set item in redis: %w", err)
	}

	return nil
}

func (r *RedisItemCache) Invalidate(ctx context.Context, id int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, itemKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete item from redis: %w", err)
	}
	return nil
}
