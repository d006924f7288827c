package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "election-commission/internal/transport/http/response"
)

// 排队等待名额的上限，超过就返回 busy
const queueWait = time.Second

// ConcurrencyLimit 限制同时在处理的请求数（保护 DB 下游）
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), queueWait)
			err := sem.Acquire(ctx, 1)
			cancel()
			if err != nil {
				resp.Abort(c, resp.CodeTooManyRequests, "server busy")
				return
			}
		}
		defer sem.Release(1)
		c.Next()
	}
}
