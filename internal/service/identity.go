package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"election-commission/internal/domain"
	"election-commission/pkg/utils"
)

type IdentityConfig struct {
	AdminSecretKey  string
	VoterIDAttempts int
	BcryptCost      int
}

type IdentityService struct {
	users      domain.UserRepository
	cfg        IdentityConfig
	log        *zap.Logger
	newVoterID func() (string, error)
}

func NewIdentityService(users domain.UserRepository, cfg IdentityConfig, log *zap.Logger) *IdentityService {
	if cfg.VoterIDAttempts <= 0 {
		cfg.VoterIDAttempts = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &IdentityService{users: users, cfg: cfg, log: log, newVoterID: utils.NewVoterID}
}

type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         string
	Constituency string
	Party        string
	Manifesto    string
}

func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name, email := strings.TrimSpace(in.Name), normEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.Validation("please add all required fields")
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, domain.Validation("role must be voter or leader")
	}
	constituency := strings.TrimSpace(in.Constituency)
	u := &domain.User{Name: name, Email: email, Role: role, Constituency: constituency}
	switch role {
	case domain.RoleAdmin:
		return nil, domain.Validation("admins must register through the admin endpoint")
	case domain.RoleLeader:
		party, manifesto := strings.TrimSpace(in.Party), strings.TrimSpace(in.Manifesto)
		if constituency == "" || party == "" || manifesto == "" {
			return nil, domain.Validation("leaders must provide constituency, party, and manifesto")
		}
		u.Party, u.Manifesto = party, manifesto
	case domain.RoleVoter:
		if constituency == "" {
			return nil, domain.Validation("voters must provide constituency")
		}
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	if role == domain.RoleVoter {
		err = s.createVoter(ctx, u)
	} else {
		err = s.users.Create(ctx, u)
	}
	if err != nil {
		return nil, s.mapCreateErr(err)
	}
	s.log.Info("user registered", zap.String("user", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// createVoter 选民号随机生成，撞上唯一索引就换一个重试
func (s *IdentityService) createVoter(ctx context.Context, u *domain.User) error {
	var err error
	for i := 0; i < s.cfg.VoterIDAttempts; i++ {
		vid, e := s.newVoterID()
		if e != nil {
			return fmt.Errorf("generate voter id: %w", e)
		}
		u.VoterID = &vid
		if err = s.users.Create(ctx, u); !errors.Is(err, domain.ErrDuplicateVoterID) {
			return err
		}
		s.log.Warn("voter id collision, retrying", zap.Int("attempt", i+1))
	}
	return fmt.Errorf("voter id space exhausted after %d attempts: %w", s.cfg.VoterIDAttempts, err)
}

type RegisterAdminInput struct {
	Name     string
	Email    string
	Password string
	AdminKey string
}

func (s *IdentityService) RegisterAdmin(ctx context.Context, in RegisterAdminInput) (*domain.User, error) {
	name, email := strings.TrimSpace(in.Name), normEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.Validation("please add all required fields")
	}
	if s.cfg.AdminSecretKey == "" ||
		subtle.ConstantTimeCompare([]byte(in.AdminKey), []byte(s.cfg.AdminSecretKey)) != 1 {
		return nil, domain.Unauthorized("invalid admin secret key")
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: domain.RoleAdmin}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, s.mapCreateErr(err)
	}
	s.log.Info("admin registered", zap.String("user", u.ID))
	return u, nil
}

func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, normEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.Unauthorized("invalid email or password")
	}
	return u, nil
}

func (s *IdentityService) Profile(ctx context.Context, p domain.Principal) (*domain.User, error) {
	if p.IsZero() {
		return nil, domain.Unauthorized("not authorized, no session")
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("user not found")
	}
	return u, err
}

// Leaders 全部领导人；constituency 非空时按选区忽略大小写过滤
func (s *IdentityService) Leaders(ctx context.Context, constituency string) ([]domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleLeader, constituency)
}

func (s *IdentityService) ListUsers(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	if f.Role != "" {
		if _, ok := domain.ParseRole(string(f.Role)); !ok {
			return nil, 0, domain.Validation("unknown role filter")
		}
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.users.List(ctx, f)
}

func (s *IdentityService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.Conflict("user already exists")
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

// 预检之后仍可能并发插入同一邮箱，以唯一索引为准
func (s *IdentityService) mapCreateErr(err error) error {
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return domain.Conflict("user already exists")
	}
	return err
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
