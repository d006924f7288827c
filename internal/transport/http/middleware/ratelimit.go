package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "election-commission/internal/transport/http/response"
)

// 超过这个时间没请求的 IP 桶会被回收
const bucketIdle = 10 * time.Minute

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if !lim.Allow() {
			resp.Abort(c, resp.CodeTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}

// RateLimitPerIP 每个客户端 IP 一个令牌桶
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	b := newBuckets(rps, burst, time.Now)
	return func(c *gin.Context) {
		if !b.allow(c.ClientIP()) {
			resp.Abort(c, resp.CodeTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

type buckets struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	now       func() time.Time
	m         map[string]*bucket
	lastSweep time.Time
}

func newBuckets(rps rate.Limit, burst int, now func() time.Time) *buckets {
	return &buckets{rps: rps, burst: burst, now: now, m: map[string]*bucket{}, lastSweep: now()}
}

func (b *buckets) allow(key string) bool {
	now := b.now()
	b.mu.Lock()
	if now.Sub(b.lastSweep) > bucketIdle {
		for k, v := range b.m {
			if now.Sub(v.seen) > bucketIdle {
				delete(b.m, k)
			}
		}
		b.lastSweep = now
	}
	e, ok := b.m[key]
	if !ok {
		e = &bucket{lim: rate.NewLimiter(b.rps, b.burst)}
		b.m[key] = e
	}
	e.seen = now
	b.mu.Unlock()
	return e.lim.AllowN(now, 1)
}

func (b *buckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.m)
}
