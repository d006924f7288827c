package domain

import (
	"context"
	"strings"
	"time"
)

type Role string

const (
	RoleVoter  Role = "voter"
	RoleLeader Role = "leader"
	RoleAdmin  Role = "admin"
)

// ParseRole 空字符串按 voter 处理
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleVoter:
		return RoleVoter, true
	case RoleLeader:
		return RoleLeader, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Constituency string    `json:"constituency,omitempty"`
	Party        string    `json:"party,omitempty"`
	Manifesto    string    `json:"manifesto,omitempty"`
	VoterID      *string   `json:"voterId,omitempty"` // 仅 voter 有值
	HasVoted     bool      `json:"hasVoted"`
	Votes        int64     `json:"votes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) InConstituency(name string) bool {
	return SameConstituency(u.Constituency, name)
}

// SameConstituency compares constituency names case-insensitively, ignoring surrounding space.
func SameConstituency(a, b string) bool {
	return ConstituencyKey(a) == ConstituencyKey(b)
}

// ConstituencyKey is the normalised form used for lookups and unique indexes.
func ConstituencyKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type UserFilter struct {
	Role   Role
	Q      string
	Offset int
	Limit  int
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	// ListByRole 按角色查询；constituency 非空时按选区忽略大小写匹配
	ListByRole(ctx context.Context, role Role, constituency string) ([]User, error)
	List(ctx context.Context, f UserFilter) ([]User, int64, error)
	CountByRole(ctx context.Context, role Role) (int64, error)
	IncrementVotes(ctx context.Context, candidateID string) error
	MarkVoted(ctx context.Context, voterID string) error
	// VoteCounts 只取计票列，缺失的 ID 不出现在结果里
	VoteCounts(ctx context.Context, ids []string) (map[string]int64, error)
}
