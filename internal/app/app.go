// Package app 组装两个进程共用的依赖：配置 → 日志 → DB → 仓储 → 缓存 → 服务 → 路由
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"election-commission/internal/core/auth"
	"election-commission/internal/core/cache"
	"election-commission/internal/core/config"
	"election-commission/internal/core/database"
	"election-commission/internal/core/logger"
	"election-commission/internal/core/server"
	"election-commission/internal/domain"
	"election-commission/internal/repo"
	"election-commission/internal/service"
	"election-commission/internal/transport/http/handler"
	"election-commission/internal/transport/http/router"
)

const resultsKeyPrefix = "election:results:"

type App struct {
	Cfg *config.Config
	Log *zap.Logger
	DB  *gorm.DB
	JWT *auth.JWTer

	Identity  *service.IdentityService
	Elections *service.ElectionService
	Votes     *service.VoteService

	registry router.Registry
	closers  []func()
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock 替换服务使用的时钟
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// NewLogger 按配置构建 zap，并把标准库 log 与 gin 的输出转进来
func NewLogger(name string, c config.Log) (*zap.Logger, func()) {
	opt := logger.Options{Service: name, Level: c.Level, JSON: c.JSON, Sampling: 100}
	if c.File.Enable {
		opt.File = logger.Rotate{
			Filename:   c.File.Filename,
			MaxSizeMB:  c.File.MaxSizeMB,
			MaxBackups: c.File.MaxBackups,
			MaxAgeDays: c.File.MaxAgeDays,
			Compress:   c.File.Compress,
		}
	}
	l, flush := logger.New(opt)
	undo := logger.RedirectStdLog(l, zapcore.InfoLevel)
	gin.DefaultWriter = logger.ToWriter(l, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(l, zapcore.ErrorLevel)
	return l, func() {
		undo()
		flush()
	}
}

func New(cfg *config.Config, l *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThresholdMs:    cfg.DB.SlowThresholdMs,
		Log:                l,
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	a := &App{Cfg: cfg, Log: l, DB: db}
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	users := repo.NewUserRepo(db)
	deps := service.Deps{
		Tx:        repo.NewTxRunner(db),
		Users:     users,
		Elections: repo.NewElectionRepo(db),
		Votes:     repo.NewVoteRepo(db),
		Log:       l,
		Now:       o.now,
	}
	// 未配置 redis 时保持接口为 nil，服务直接回源
	if rc := a.resultsCache(); rc != nil {
		deps.Cache = rc
	}

	a.JWT = auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)
	if o.now != nil {
		a.JWT = a.JWT.WithClock(o.now)
	}
	a.Identity = service.NewIdentityService(users, service.IdentityConfig{
		AdminSecretKey:  cfg.Election.AdminSecretKey,
		VoterIDAttempts: cfg.Election.VoterIDAttempts,
		BcryptCost:      cfg.Election.BcryptCost,
	}, l)
	a.Elections = service.NewElectionService(deps)
	a.Votes = service.NewVoteService(deps)

	a.registry = router.NewRegistry(
		handler.NewUserHandler(a.Identity, a.JWT),
		handler.NewElectionHandler(a.Elections),
		handler.NewVoteHandler(a.Votes),
	)
	return a, nil
}

func (a *App) resultsCache() *cache.Keyed[domain.Ballot] {
	rc := a.Cfg.Redis
	if rc.Addr == "" {
		return nil
	}
	c := cache.New(rc.Addr, rc.Password, rc.DB)
	a.closers = append(a.closers, func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		// 缓存故障时读路径自动回源，不阻止启动
		a.Log.Warn("redis unreachable, results will load from db", zap.String("addr", rc.Addr), zap.Error(err))
	} else {
		a.Log.Info("redis connected", zap.String("addr", rc.Addr))
	}
	return cache.NewKeyed[domain.Ballot](c, resultsKeyPrefix, time.Duration(rc.ResultsTTLSec)*time.Second)
}

// APIEngine 用户端 /api/v1
func (a *App) APIEngine() *gin.Engine {
	return router.NewAPIEngine(a.Log, a.Cfg, a.JWT, a.registry)
}

// AdminEngine 管理端 /admin/v1
func (a *App) AdminEngine() *gin.Engine {
	return router.NewAdminEngine(a.Log, a.Cfg, a.JWT, a.registry)
}

// Serve 启动监听，ctx 结束后优雅关闭
func (a *App) Serve(ctx context.Context, name string, hc config.HTTP, h http.Handler) error {
	sc := server.Config{
		Host:         hc.Host,
		Port:         hc.Port,
		ReadTimeout:  time.Duration(hc.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(hc.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(hc.IdleTimeoutSec) * time.Second,
	}
	l := a.Log.Named(name)
	l.Info("starting",
		zap.String("open", sc.BaseURL()),
		zap.String("health", sc.BaseURL()+"/health"),
		zap.String("metrics", sc.BaseURL()+"/metrics"),
	)
	if err := server.Run(ctx, server.New(sc, h, l), l); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	l.Info("stopped gracefully")
	return nil
}

// Close 逆序释放资源
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
