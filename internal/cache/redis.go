package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/logger"
)

const (
	keyPrefix     = "posts:published"
	generationKey = keyPrefix + ":gen"
)

// PostListCache 把已发布文章列表缓存在 Redis 中。
// 失效通过递增代数实现，旧代的键由 TTL 自然过期。
type PostListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPostListCache builds a listing cache on top of a Redis client.
func NewPostListCache(client *redis.Client, ttl time.Duration) *PostListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PostListCache{client: client, ttl: ttl}
}

// NewClient 创建 Redis 客户端并 ping 一次确认可用。
func NewClient(ctx context.Context, addr, password string, database int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: database})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Get 读取缓存，任何错误都视为未命中。
// 返回的 key 固定了读取时的代数，未命中时应原样交给 Set。
// 代数读取失败时 key 为空。
func (c *PostListCache) Get(ctx context.Context, categoryID, tagID string) ([]db.Post, string, bool) {
	key, err := c.key(ctx, categoryID, tagID)
	if err != nil {
		logger.Warn("post list cache unavailable", zap.Error(err))
		return nil, "", false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("post list cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, key, false
	}

	var posts []db.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		logger.Warn("post list cache entry corrupted", zap.String("key", key), zap.Error(err))
		return nil, key, false
	}
	return posts, key, true
}

// Set 把列表写到 Get 返回的 key 下，失败只记录日志。
// 期间若已失效，写入的是旧代的键，不会再被读到。
func (c *PostListCache) Set(ctx context.Context, key string, posts []db.Post) {
	if key == "" {
		return
	}

	payload, err := json.Marshal(posts)
	if err != nil {
		logger.Warn("encode post list failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("post list cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate 递增代数，使所有已缓存的列表失效。
func (c *PostListCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		logger.Warn("post list cache invalidation failed", zap.Error(err))
	}
}

func (c *PostListCache) key(ctx context.Context, categoryID, tagID string) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:%d:%s:%s", keyPrefix, gen, categoryID, tagID), nil
}
