package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"election-commission/internal/core/metrics"
	"election-commission/internal/domain"
)

type VoteService struct{ Deps }

func NewVoteService(d Deps) *VoteService { return &VoteService{Deps: d.withDefaults()} }

// Cast 投票：窗口检查在事务外并按需把状态写成 active；
// 资格检查、候选人补登记、记票、计数、hasVoted 在同一事务内完成
func (s *VoteService) Cast(ctx context.Context, p domain.Principal, electionID, candidateID string) (*domain.Vote, error) {
	v, err := s.cast(ctx, p, electionID, candidateID)
	if err != nil {
		metrics.VoteRejections.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}
	metrics.VotesCast.Inc()
	s.invalidate(ctx, electionID)
	s.Log.Info("vote cast",
		zap.String("election", v.ElectionID),
		zap.String("constituency", v.Constituency),
		zap.String("voter", v.VoterID),
	)
	return v, nil
}

func (s *VoteService) cast(ctx context.Context, p domain.Principal, electionID, candidateID string) (*domain.Vote, error) {
	if p.IsZero() {
		return nil, domain.Unauthorized("not authorized, no session")
	}
	if strings.TrimSpace(electionID) == "" || strings.TrimSpace(candidateID) == "" {
		return nil, domain.Validation("please provide election ID and candidate ID")
	}
	e, err := s.findElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if err := s.openWindow(ctx, e); err != nil {
		return nil, err
	}

	var vote *domain.Vote
	err = s.Tx.InTx(ctx, func(ctx context.Context) error {
		// 事务内重读，拿到最新成员
		e, err := s.findElection(ctx, electionID)
		if err != nil {
			return err
		}
		el, err := s.checkEligibility(ctx, e, p, candidateID)
		if err != nil {
			return err
		}
		added, err := s.Elections.EnsureMember(ctx, el.constituency.ID, domain.MemberCandidate, el.candidate.ID)
		if err != nil {
			return err
		}
		if added {
			s.Log.Info("candidate auto-registered",
				zap.String("election", e.ID),
				zap.String("constituency", el.constituency.Name),
				zap.String("candidate", el.candidate.ID),
			)
		}
		vote = &domain.Vote{
			ElectionID:   e.ID,
			Constituency: el.voter.Constituency,
			VoterID:      el.voter.ID,
			CandidateID:  el.candidate.ID,
			Timestamp:    s.Now(),
		}
		if err := s.Votes.Create(ctx, vote); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return errVotedInElection
			}
			return err
		}
		if err := s.Users.IncrementVotes(ctx, el.candidate.ID); err != nil {
			return err
		}
		return s.Users.MarkVoted(ctx, el.voter.ID)
	})
	if err != nil {
		return nil, err
	}
	return vote, nil
}

// openWindow 只看日期与人工结束标记；窗口内且存储状态不是 active 时写回
func (s *VoteService) openWindow(ctx context.Context, e *domain.Election) error {
	now := s.Now()
	switch {
	case now.Before(e.StartDate):
		return errNotStarted
	case now.After(e.EndDate):
		return errEnded
	case e.ManuallyCompleted && e.Status == domain.StatusCompleted:
		return errClosed
	}
	if e.Status == domain.StatusActive {
		return nil
	}
	ok, err := s.Elections.CompareAndSetStatus(ctx, e.ID, e.Status, domain.StatusActive)
	if err != nil {
		return err
	}
	if ok {
		metrics.StatusWritebacks.Inc()
		s.Log.Info("status written back",
			zap.String("election", e.ID),
			zap.String("from", string(e.Status)),
			zap.String("to", string(domain.StatusActive)),
		)
	}
	e.Status = domain.StatusActive
	return nil
}

func rejectReason(err error) string {
	for e, reason := range rejectReasons {
		if errors.Is(err, e) {
			return reason
		}
	}
	switch domain.KindOf(err) {
	case domain.KindInternal:
		return metrics.ReasonInternal
	case domain.KindNotFound:
		return metrics.ReasonNotFound
	default:
		return domain.KindOf(err).String()
	}
}
