package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"election-commission/internal/domain"
)

// ResultsCache 按选举缓存候选人名片；票数是跨选举的全局计数，每次现读不进缓存。为 nil 时直接回源
type ResultsCache interface {
	GetOrLoad(ctx context.Context, electionID string, load func(ctx context.Context) (*domain.Ballot, error)) (*domain.Ballot, error)
	Invalidate(ctx context.Context, electionID string) error
}

// Deps 选举、投票服务共享的依赖
type Deps struct {
	Tx        domain.TxRunner
	Users     domain.UserRepository
	Elections domain.ElectionRepository
	Votes     domain.VoteRepository
	Cache     ResultsCache
	Log       *zap.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d Deps) invalidate(ctx context.Context, electionID string) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Invalidate(ctx, electionID); err != nil {
		d.Log.Warn("results cache invalidate failed", zap.String("election", electionID), zap.Error(err))
	}
}

// findElection 不存在时返回 NotFound 业务错误
func (d Deps) findElection(ctx context.Context, id string) (*domain.Election, error) {
	e, err := d.Elections.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("election not found")
	}
	return e, err
}
