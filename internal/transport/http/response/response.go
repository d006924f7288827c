package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CtxKeyCode 本次请求写出的业务码，metrics/accesslog 从这里取
const CtxKeyCode = "respCode"

type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data any) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// JSON 写信封；HTTP 状态恒为 200，错误语义在 code 里
func JSON(c *gin.Context, r Resp) {
	c.Set(CtxKeyCode, r.Code)
	c.JSON(http.StatusOK, r)
}

// Abort 中间件拒绝请求时使用
func Abort(c *gin.Context, code int, msg string) {
	c.Set(CtxKeyCode, code)
	c.AbortWithStatusJSON(http.StatusOK, Error(code, msg))
}

// CodeOf 取已写出的业务码；未经信封写出时返回 -1
func CodeOf(c *gin.Context) int {
	if v, ok := c.Get(CtxKeyCode); ok {
		if code, ok := v.(int); ok {
			return code
		}
	}
	return -1
}
