package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"election-commission/internal/core/auth"
	"election-commission/internal/core/config"
	"election-commission/internal/domain"
	mdw "election-commission/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, cfg *config.Config, jwter *auth.JWTer, reg Registry) *gin.Engine {
	r := newEngine(l, cfg.App, cfg.Limits)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, string(domain.RoleAdmin)))

	reg.MountAdmin(admin)
	return r
}
