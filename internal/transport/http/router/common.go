package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"election-commission/internal/core/config"
	"election-commission/internal/core/server"
	mdw "election-commission/internal/transport/http/middleware"
)

// newEngine 两个进程共用的中间件链 + /health + /metrics
func newEngine(l *zap.Logger, app config.App, lim config.Limits) *gin.Engine {
	r := server.NewRouter(app.CORSOrigins)

	chain := []gin.HandlerFunc{mdw.RequestID()}
	if lim.RPS > 0 {
		chain = append(chain, mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst))
	}
	if lim.PerIPRPS > 0 {
		chain = append(chain, mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst))
	}
	if lim.MaxConcurrent > 0 {
		chain = append(chain, mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyBytes > 0 {
		chain = append(chain, mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.RequestTimeoutSec > 0 {
		chain = append(chain, mdw.Timeout(time.Duration(lim.RequestTimeoutSec)*time.Second))
	}
	chain = append(chain, mdw.Recovery(l), mdw.Metrics(), mdw.AccessLog(l))
	r.Use(chain...)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
