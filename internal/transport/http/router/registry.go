package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule 模块可选择实现其中一个或两个接口
// pub 为公共分组，authed 已挂 AuthJWT
type APIModule interface {
	MountAPI(pub, authed *gin.RouterGroup)
}
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 持有本进程要挂载的模块
type Registry struct {
	apiMods   []APIModule
	adminMods []AdminModule
}

// NewRegistry 根据类型断言分发到 API/Admin 列表
func NewRegistry(mods ...any) Registry {
	var r Registry
	for _, mod := range mods {
		if m, ok := mod.(APIModule); ok {
			r.apiMods = append(r.apiMods, m)
		}
		if m, ok := mod.(AdminModule); ok {
			r.adminMods = append(r.adminMods, m)
		}
	}
	sort.SliceStable(r.apiMods, func(i, j int) bool {
		return priorityOf(r.apiMods[i]) < priorityOf(r.apiMods[j])
	})
	sort.SliceStable(r.adminMods, func(i, j int) bool {
		return priorityOf(r.adminMods[i]) < priorityOf(r.adminMods[j])
	})
	return r
}

// MountAPI 在 /api/v1 上挂载所有 API 模块
func (r Registry) MountAPI(pub, authed *gin.RouterGroup) {
	for _, m := range r.apiMods {
		m.MountAPI(pub, authed)
	}
}

// MountAdmin 在 /admin/v1 上挂载所有 Admin 模块
func (r Registry) MountAdmin(admin *gin.RouterGroup) {
	for _, m := range r.adminMods {
		m.MountAdmin(admin)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
