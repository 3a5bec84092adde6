package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache 是列表读取的旁路缓存。所有方法均为尽力而为，失败只记录日志。
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context, prefix string)
}

type noopCache struct{}

// NoopCache 返回不缓存任何内容的实现
func NoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string, any) bool { return false }
func (noopCache) Set(context.Context, string, any)      {}
func (noopCache) Invalidate(context.Context, string)    {}

// MemoryCache 基于 go-cache 的进程内缓存，值以 JSON 保存避免调用方共享切片。
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache 构造 MemoryCache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{items: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string, dst any) bool {
	raw, ok := m.items.Get(key)
	if !ok {
		return false
	}
	data, ok := raw.([]byte)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		m.items.Delete(key)
		return false
	}
	return true
}

func (m *MemoryCache) Set(_ context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.items.SetDefault(key, data)
}

func (m *MemoryCache) Invalidate(_ context.Context, prefix string) {
	for key := range m.items.Items() {
		if strings.HasPrefix(key, prefix) {
			m.items.Delete(key)
		}
	}
}

// RedisCache 使用 Redis 保存列表结果，失效时按前缀 SCAN 删除。
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache 构造 RedisCache，ttl 非正数时使用 5 分钟。
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string, dst any) bool {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil || len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = r.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

func (r *RedisCache) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, key, data, r.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

func (r *RedisCache) Invalidate(ctx context.Context, prefix string) {
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			slog.WarnContext(ctx, "cache invalidate failed", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				slog.WarnContext(ctx, "cache invalidate failed", "prefix", prefix, "error", err)
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
