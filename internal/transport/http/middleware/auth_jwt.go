package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"election-commission/internal/core/auth"
	"election-commission/internal/transport/http/ez"
	resp "election-commission/internal/transport/http/response"
)

// AuthJWT 解析 Bearer 令牌，把 uid/role/constituency 写入上下文；requireRole 为空时只要求登录
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			resp.Abort(c, resp.CodeUnauthorized, "not authorized, no token")
			return
		}
		claims, err := j.Parse(raw)
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "not authorized, token failed")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "not authorized as "+requireRole)
			return
		}
		c.Set(ez.KeyUserID, claims.UID)
		c.Set(ez.KeyRole, claims.Role)
		c.Set(ez.KeyConstituency, claims.Constituency)
		c.Set(ez.KeyClaims, claims)
		c.Next()
	}
}

// bearer 取 "Bearer <token>"，scheme 大小写不敏感
func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
