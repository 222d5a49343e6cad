package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"tokopos/backend/internal/domain"
)

type RedisOrderCache struct {
	client *redis.Client
}

func NewRedisOrderCache(addr string, password string, db int) *RedisOrderCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisOrderCache{client: client}
}

func (c *RedisOrderCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisOrderCache) Close() error {
	return c.client.Close()
}

func cacheKey(orderID string) string {
	return "order-detail:" + orderID
}

func (c *RedisOrderCache) Get(ctx context.Context, orderID string) (*domain.OrderDetailResponse, bool, error) {
	val, err := c.client.Get(ctx, cacheKey(orderID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var resp domain.OrderDetailResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

func (c *RedisOrderCache) Set(ctx context.Context, orderID string, value *domain.OrderDetailResponse, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(orderID), payload, ttl).Err()
}

func (c *RedisOrderCache) Invalidate(ctx context.Context, orderID string) error {
	return c.client.Del(ctx, cacheKey(orderID)).Err()
}
