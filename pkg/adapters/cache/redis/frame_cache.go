package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

// FrameCache 基于 Redis 的采样结果缓存，值为 JSON
type FrameCache struct {
	client *redis.Client
	prefix string
}

// NewFrameCache prefix 为空时使用 "dgmts:"
func NewFrameCache(client *redis.Client, prefix string) *FrameCache {
	if prefix == "" {
		prefix = "dgmts:"
	}
	return &FrameCache{client: client, prefix: prefix}
}

// Get 实现 ports.FrameCache
func (c *FrameCache) Get(ctx context.Context, key string) (*domain.SampleResult, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var result domain.SampleResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode cached frame: %w", err)
	}
	return &result, nil
}

// Set 实现 ports.FrameCache
func (c *FrameCache) Set(ctx context.Context, key string, result *domain.SampleResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}
