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
	log, cleanup := app.NewLogger("admin-api", cfg.Log)
	defer cleanup()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 路由（后台端），默认只监听 127.0.0.1
	if err := a.Serve(ctx, "admin api", cfg.App.Admin, a.AdminEngine()); err != nil {
		log.Error("admin api exited", zap.Error(err))
	}
}
