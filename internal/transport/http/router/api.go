package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"election-commission/internal/core/auth"
	"election-commission/internal/core/config"
	mdw "election-commission/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, cfg *config.Config, jwter *auth.JWTer, reg Registry) *gin.Engine {
	r := newEngine(l, cfg.App, cfg.Limits)

	// 前缀
	api := r.Group("/api/v1")

	// 鉴权分组（⚠️ /users/profile、/votes 必须挂这里，才能拿到 userId）
	authUser := api.Group("")
	authUser.Use(mdw.AuthJWT(jwter, ""))

	reg.MountAPI(api, authUser)
	return r
}
