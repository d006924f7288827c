package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 10 * time.Second

// NewRouter 裸引擎 + CORS；其余中间件由 router 包按进程组装
func NewRouter(origins []string) *gin.Engine {
	r := gin.New()
	if len(origins) == 0 {
		r.Use(cors.Default())
		return r
	}
	cc := cors.DefaultConfig()
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	cc.AddAllowHeaders("Authorization")
	r.Use(cors.New(cc))
	return r
}

type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func (c Config) Addr() string { return net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) }

// BaseURL 给日志用的可点击地址
func (c Config) BaseURL() string {
	h := c.Host
	if h == "" || h == "0.0.0.0" {
		h = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(h, strconv.Itoa(c.Port))
}

func New(c Config, h http.Handler, l *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              c.Addr(),
		Handler:           h,
		ReadTimeout:       c.ReadTimeout,
		ReadHeaderTimeout: c.ReadTimeout,
		WriteTimeout:      c.WriteTimeout,
		IdleTimeout:       c.IdleTimeout,
		MaxHeaderBytes:    1 << 20, // 1MB
	}
	if l != nil {
		if el, err := zap.NewStdLogAt(l, zap.ErrorLevel); err == nil {
			srv.ErrorLog = el
		}
	}
	return srv
}

// Run 监听直到 ctx 结束，然后在宽限期内优雅关闭
func Run(ctx context.Context, srv *http.Server, l *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("shutdown %s: %w", srv.Addr, err)
		}
		return nil
	})
	return g.Wait()
}
