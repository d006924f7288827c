package ez

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"election-commission/internal/domain"
	resp "election-commission/internal/transport/http/response"
)

// 上下文 key，由 AuthJWT 写入
const (
	KeyUserID       = "userId"
	KeyRole         = "role"
	KeyConstituency = "constituency"
	KeyClaims       = "claims"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/users/login"、"/elections/:id/status"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if c.GetString(KeyUserID) == "" {
				resp.JSON(c, resp.Error(resp.CodeUnauthorized, "not authorized, no token"))
				return
			}
			if len(a.Roles) > 0 && !hasRole(c.GetString(KeyRole), a.Roles) {
				resp.JSON(c, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		// 空 body 交给业务层校验，保证返回一致的提示
		if errors.Is(bindErr, io.EOF) {
			bindErr = nil
		}
		if bindErr != nil {
			resp.JSON(c, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			code, msg := Map(err)
			if code == resp.CodeServerError {
				_ = c.Error(err)
			}
			resp.JSON(c, resp.Error(code, msg))
			return
		}
		resp.JSON(c, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// Map 把错误翻译成信封里的 code/msg；内部错误不回显细节
func Map(err error) (int, string) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code == resp.CodeServerError {
			return ae.Code, ae.Msg
		}
		return ae.Code, ae.Error()
	}
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindValidation:
			return resp.CodeBadRequest, de.Msg
		case domain.KindUnauthorized:
			return resp.CodeUnauthorized, de.Msg
		case domain.KindForbidden:
			return resp.CodeForbidden, de.Msg
		case domain.KindNotFound:
			return resp.CodeNotFound, de.Msg
		case domain.KindConflict:
			return resp.CodeConflict, de.Msg
		}
	}
	return resp.CodeServerError, "internal error"
}

// Principal 取 AuthJWT 解析出的调用者；未登录返回零值
func Principal(c *gin.Context) domain.Principal {
	return domain.Principal{
		UserID:       c.GetString(KeyUserID),
		Role:         domain.Role(c.GetString(KeyRole)),
		Constituency: c.GetString(KeyConstituency),
	}
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}
