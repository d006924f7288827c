package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"election-commission/internal/app"
	"election-commission/internal/core/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := app.NewLogger("user-api", cfg.Log)
	defer cleanup()

	// 数据库/缓存/服务（失败会直接 Fatal）
	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	// 优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 路由（用户端）
	if err := a.Serve(ctx, "user api", cfg.App.HTTP, a.APIEngine()); err != nil {
		log.Error("user api exited", zap.Error(err))
	}
}
