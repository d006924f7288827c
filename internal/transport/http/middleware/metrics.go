package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	resp "election-commission/internal/transport/http/response"
)

// HTTP 状态恒为 200，业务结果看 code 标签
var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "election",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method, status and envelope code",
		},
		[]string{"path", "method", "status", "code"},
	)
	requestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "election",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	inflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "election",
		Name:      "http_inflight_requests",
		Help:      "Requests currently being served",
	})
)

func init() { prometheus.MustRegister(requestsTotal, requestSeconds, inflight) }

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		inflight.Inc()
		defer inflight.Dec()

		start := time.Now()
		c.Next()

		route := routeOf(c)
		requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), codeLabel(c)).Inc()
		requestSeconds.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// routeOf 未匹配路由统一归到一个标签，避免基数爆炸
func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}

func codeLabel(c *gin.Context) string {
	if n := resp.CodeOf(c); n >= 0 {
		return strconv.Itoa(n)
	}
	return "none"
}
