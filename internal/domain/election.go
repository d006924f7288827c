package domain

import (
	"context"
	"time"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusUpcoming, StatusActive, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

type MemberKind string

const (
	MemberCandidate MemberKind = "candidate"
	MemberVoter     MemberKind = "voter"
)

// Constituency 选区：候选人与选民均为用户 ID，保持插入顺序
type Constituency struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Candidates []string `json:"candidates"`
	Voters     []string `json:"voters"`
}

func (c *Constituency) HasCandidate(userID string) bool { return contains(c.Candidates, userID) }
func (c *Constituency) HasVoter(userID string) bool     { return contains(c.Voters, userID) }

type Election struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	StartDate         time.Time      `json:"startDate"`
	EndDate           time.Time      `json:"endDate"`
	Status            Status         `json:"status"`
	ManuallyCompleted bool           `json:"manuallyCompleted"`
	CreatedBy         string         `json:"createdBy"`
	Constituencies    []Constituency `json:"constituencies"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// Constituency finds an entry by name, case-insensitively.
func (e *Election) Constituency(name string) (*Constituency, bool) {
	key := ConstituencyKey(name)
	for i := range e.Constituencies {
		if ConstituencyKey(e.Constituencies[i].Name) == key {
			return &e.Constituencies[i], true
		}
	}
	return nil, false
}

func (e *Election) EffectiveStatus(now time.Time) Status {
	return ResolveStatus(now, e.StartDate, e.EndDate, e.ManuallyCompleted, e.Status)
}

type ElectionRepository interface {
	Create(ctx context.Context, e *Election) error
	FindByID(ctx context.Context, id string) (*Election, error)
	// List 按创建时间倒序
	List(ctx context.Context) ([]Election, error)
	// CompareAndSetStatus 仅当当前状态为 from 时写入 to
	CompareAndSetStatus(ctx context.Context, id string, from, to Status) (bool, error)
	// SetStatus 管理员覆盖；latch=true 时同时置 manuallyCompleted
	SetStatus(ctx context.Context, id string, status Status, latch bool) error
	AddMember(ctx context.Context, constituencyID string, kind MemberKind, userID string) error
	// EnsureMember inserts the member unless present and reports whether a row was added.
	EnsureMember(ctx context.Context, constituencyID string, kind MemberKind, userID string) (bool, error)
	RemoveMember(ctx context.Context, constituencyID string, kind MemberKind, userID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
