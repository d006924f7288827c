package service

import (
	"context"
	"errors"

	"election-commission/internal/core/metrics"
	"election-commission/internal/domain"
)

var (
	errNotStarted      = domain.Validation("voting has not started yet for this election")
	errEnded           = domain.Validation("voting has ended for this election")
	errClosed          = domain.Validation("voting has been closed for this election")
	errNotVoter        = domain.Forbidden("only voters can cast votes")
	errVotedInElection = domain.Conflict("you have already voted in this election")
	errHasVoted        = domain.Conflict("you have already voted")
	errBadCandidate    = domain.NotFound("candidate not found or not a leader")
	errOtherDistrict   = domain.Validation("you can only vote for candidates in your constituency")
	errNotInElection   = domain.Validation("your constituency is not part of this election")
	errNotRegistered   = domain.Validation("you are not registered to vote in this election")
)

var rejectReasons = map[error]string{
	errNotStarted:      metrics.ReasonWindow,
	errEnded:           metrics.ReasonWindow,
	errClosed:          metrics.ReasonWindow,
	errNotVoter:        metrics.ReasonRole,
	errVotedInElection: metrics.ReasonDuplicate,
	errHasVoted:        metrics.ReasonDuplicate,
	errBadCandidate:    metrics.ReasonCandidate,
	errOtherDistrict:   metrics.ReasonConstituency,
	errNotInElection:   metrics.ReasonConstituency,
	errNotRegistered:   metrics.ReasonNotEnrolled,
}

type eligible struct {
	voter        *domain.User
	candidate    *domain.User
	constituency *domain.Constituency
}

// checkEligibility 按固定顺序检查，每一步对应一种失败
func (s *VoteService) checkEligibility(ctx context.Context, e *domain.Election, p domain.Principal, candidateID string) (*eligible, error) {
	// 以库中最新记录为准，不信任令牌里的角色和选区
	voter, err := s.Users.FindByID(ctx, p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Unauthorized("not authorized, user not found")
	}
	if err != nil {
		return nil, err
	}
	if voter.Role != domain.RoleVoter {
		return nil, errNotVoter
	}

	// 唯一索引是最终裁决，这两处只是提前给出明确错误
	voted, err := s.Votes.Exists(ctx, e.ID, voter.ID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, errVotedInElection
	}
	if voter.HasVoted {
		return nil, errHasVoted
	}

	cand, err := s.Users.FindByID(ctx, candidateID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && cand.Role != domain.RoleLeader) {
		return nil, errBadCandidate
	}
	if err != nil {
		return nil, err
	}
	if !domain.SameConstituency(cand.Constituency, voter.Constituency) {
		return nil, errOtherDistrict
	}
	c, ok := e.Constituency(voter.Constituency)
	if !ok {
		return nil, errNotInElection
	}
	if !c.HasVoter(voter.ID) {
		return nil, errNotRegistered
	}
	return &eligible{voter: voter, candidate: cand, constituency: c}, nil
}
