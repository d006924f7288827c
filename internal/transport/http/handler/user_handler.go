package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"election-commission/internal/core/auth"
	"election-commission/internal/domain"
	"election-commission/internal/service"
	"election-commission/internal/transport/http/ez"
)

type UserHandler struct {
	svc *service.IdentityService
	jwt *auth.JWTer
}

func NewUserHandler(svc *service.IdentityService, j *auth.JWTer) *UserHandler {
	return &UserHandler{svc: svc, jwt: j}
}

func (h *UserHandler) Priority() int { return 10 }

type registerIn struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	Constituency string `json:"constituency"`
	Party        string `json:"party"`
	Manifesto    string `json:"manifesto"`
}

type registerAdminIn struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	AdminSecretKey string `json:"adminSecretKey"`
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// 注册/登录都直接下发令牌
type tokenOut struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type message struct {
	Message string `json:"message"`
}

func (h *UserHandler) MountAPI(pub, authed *gin.RouterGroup) {
	p, a := ez.New(pub), ez.New(authed)

	ez.RegisterAction(p, ez.Action[registerIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (tokenOut, error) {
			u, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
				Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role,
				Constituency: in.Constituency, Party: in.Party, Manifesto: in.Manifesto,
			})
			if err != nil {
				return tokenOut{}, err
			}
			return h.issue(u)
		},
	})

	ez.RegisterAction(p, ez.Action[registerAdminIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/users/admin",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registerAdminIn) (tokenOut, error) {
			u, err := h.svc.RegisterAdmin(c.Request.Context(), service.RegisterAdminInput{
				Name: in.Name, Email: in.Email, Password: in.Password, AdminKey: in.AdminSecretKey,
			})
			if err != nil {
				return tokenOut{}, err
			}
			return h.issue(u)
		},
	})

	ez.RegisterAction(p, ez.Action[loginIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/users/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (tokenOut, error) {
			u, err := h.svc.Authenticate(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return tokenOut{}, err
			}
			return h.issue(u)
		},
	})

	// 无状态令牌，客户端丢弃即可
	ez.RegisterAction(p, ez.Action[struct{}, message]{
		Method: http.MethodPost,
		Path:   "/users/logout",
		Binder: ez.BindNone,
		Handler: func(*gin.Context, *struct{}) (message, error) {
			return message{Message: "Logged out successfully"}, nil
		},
	})

	ez.RegisterAction(p, ez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users/leaders",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return h.svc.Leaders(c.Request.Context(), "")
		},
	})

	ez.RegisterAction(p, ez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users/leaders/:constituency",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return h.svc.Leaders(c.Request.Context(), c.Param("constituency"))
		},
	})

	ez.RegisterAction(a, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/profile",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.Profile(c.Request.Context(), ez.Principal(c))
		},
	})
}

type listUsersQ struct {
	Role   string `form:"role"`
	Q      string `form:"q"` // 按 email/name 模糊搜
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
}

type listUsersOut struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

func (h *UserHandler) MountAdmin(admin *gin.RouterGroup) {
	ez.RegisterAction(ez.New(admin), ez.Action[listUsersQ, listUsersOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  []string{string(domain.RoleAdmin)},
		Handler: func(c *gin.Context, in *listUsersQ) (listUsersOut, error) {
			us, total, err := h.svc.ListUsers(c.Request.Context(), domain.UserFilter{
				Role: domain.Role(in.Role), Q: in.Q, Offset: in.Offset, Limit: in.Limit,
			})
			if err != nil {
				return listUsersOut{}, err
			}
			return listUsersOut{Total: total, Items: us}, nil
		},
	})
}

func (h *UserHandler) issue(u *domain.User) (tokenOut, error) {
	tok, err := h.jwt.Issue(u.ID, string(u.Role), u.Constituency)
	if err != nil || tok == "" {
		return tokenOut{}, ez.Internal("issue token failed", err)
	}
	return tokenOut{Token: tok, User: u}, nil
}
