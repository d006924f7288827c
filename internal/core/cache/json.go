package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var errNoValue = errors.New("cache: loader returned no value")

// Keyed 固定前缀 + TTL 的 JSON 读穿缓存，值类型 T 由调用方决定
type Keyed[T any] struct {
	c      *Cache
	prefix string
	ttl    time.Duration
}

func NewKeyed[T any](c *Cache, prefix string, ttl time.Duration) *Keyed[T] {
	return &Keyed[T]{c: c, prefix: prefix, ttl: ttl}
}

func (k *Keyed[T]) Key(id string) string { return k.prefix + id }

// GetOrLoad load 返回 nil 时不写缓存，直接返回 nil
func (k *Keyed[T]) GetOrLoad(ctx context.Context, id string, load func(ctx context.Context) (*T, error)) (*T, error) {
	var fresh *T
	b, err := k.c.GetOrLoad(ctx, k.Key(id), k.ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errNoValue
		}
		fresh = v
		return json.Marshal(v)
	})
	switch {
	case errors.Is(err, errNoValue):
		return nil, nil
	case err != nil:
		return nil, err
	case fresh != nil:
		return fresh, nil
	}

	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		// 旧版本或损坏的条目：删掉后直接回源
		_ = k.c.Invalidate(ctx, k.Key(id))
		v, lerr := load(ctx)
		if lerr != nil {
			return nil, fmt.Errorf("cache: decode %s: %v; reload: %w", k.Key(id), err, lerr)
		}
		return v, nil
	}
	return &out, nil
}

func (k *Keyed[T]) Invalidate(ctx context.Context, id string) error {
	return k.c.Invalidate(ctx, k.Key(id))
}
