package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"election-commission/internal/core/metrics"
)

// Cache 基于 Redis 的字节级读穿缓存；Redis 故障只会让请求回源，不会报错
type Cache struct {
	rdb redis.UniversalClient
	sf  singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewWithClient(rdb redis.UniversalClient) *Cache { return &Cache{rdb: rdb} }

func (c *Cache) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.rdb.Close() }

// lookup 命中返回 true；redis.Nil 和连接错误都按未命中处理
func (c *Cache) lookup(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return b, true
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
	}
	return nil, false
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, ok := c.lookup(ctx, key); ok {
		return b, nil
	}
	// 同 key 并发回源合并为一次；回源不跟随单个调用方的取消
	ch := c.sf.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		b, err := load(fctx)
		if err != nil {
			return nil, err
		}
		_ = c.rdb.Set(fctx, key, b, ttl).Err()
		return b, nil
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
