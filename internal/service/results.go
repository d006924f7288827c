package service

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"election-commission/internal/domain"
)

// Results 每个选区按得票降序排列候选人；同票保持登记顺序。状态、成员与票数总是现读
func (s *ElectionService) Results(ctx context.Context, id string) (*domain.Results, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := candidateIDs(e)

	var (
		profiles map[string]domain.CandidateProfile
		votes    map[string]int64
	)
	if s.Cache == nil {
		users, err := s.Users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		profiles, votes = make(map[string]domain.CandidateProfile, len(users)), make(map[string]int64, len(users))
		for _, u := range users {
			profiles[u.ID] = profileOf(u)
			votes[u.ID] = u.Votes
		}
	} else {
		if profiles, err = s.profiles(ctx, e.ID, ids); err != nil {
			return nil, err
		}
		if votes, err = s.Users.VoteCounts(ctx, ids); err != nil {
			return nil, err
		}
	}
	return &domain.Results{Status: e.Status, Results: rank(e, profiles, votes)}, nil
}

// profiles 走缓存取名片；缓存故障或缺少当前成员时回源
func (s *ElectionService) profiles(ctx context.Context, electionID string, ids []string) (map[string]domain.CandidateProfile, error) {
	load := func(ctx context.Context) (*domain.Ballot, error) {
		users, err := s.Users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		b := &domain.Ballot{Candidates: make([]domain.CandidateProfile, 0, len(users))}
		for _, u := range users {
			b.Candidates = append(b.Candidates, profileOf(u))
		}
		return b, nil
	}

	b, err := s.Cache.GetOrLoad(ctx, electionID, load)
	if err != nil {
		s.Log.Warn("results cache unavailable", zap.String("election", electionID), zap.Error(err))
	}
	if err != nil || b == nil || !covers(b, ids) {
		// 缓存里的名单早于最近一次成员变更：丢弃后回源
		if err == nil && b != nil {
			s.invalidate(ctx, electionID)
		}
		if b, err = load(ctx); err != nil {
			return nil, err
		}
	}
	out := make(map[string]domain.CandidateProfile, len(b.Candidates))
	for _, p := range b.Candidates {
		out[p.ID] = p
	}
	return out, nil
}

func rank(e *domain.Election, profiles map[string]domain.CandidateProfile, votes map[string]int64) []domain.ConstituencyResult {
	out := make([]domain.ConstituencyResult, 0, len(e.Constituencies))
	for _, c := range e.Constituencies {
		cr := domain.ConstituencyResult{Constituency: c.Name, Candidates: make([]domain.CandidateResult, 0, len(c.Candidates))}
		for _, cid := range c.Candidates {
			p, ok := profiles[cid]
			if !ok {
				continue
			}
			cr.Candidates = append(cr.Candidates, domain.CandidateResult{ID: p.ID, Name: p.Name, Party: p.Party, Votes: votes[cid]})
		}
		sort.SliceStable(cr.Candidates, func(i, j int) bool { return cr.Candidates[i].Votes > cr.Candidates[j].Votes })
		out = append(out, cr)
	}
	return out
}

func candidateIDs(e *domain.Election) []string {
	var ids []string
	for _, c := range e.Constituencies {
		ids = append(ids, c.Candidates...)
	}
	return ids
}

func covers(b *domain.Ballot, ids []string) bool {
	have := make(map[string]struct{}, len(b.Candidates))
	for _, p := range b.Candidates {
		have[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}

func profileOf(u domain.User) domain.CandidateProfile {
	return domain.CandidateProfile{ID: u.ID, Name: u.Name, Party: u.Party}
}

// Statistics 三类计数并发查询；投票率分母是系统内全部选民
func (s *ElectionService) Statistics(ctx context.Context, id string) (*domain.VoteStatistics, error) {
	e, err := s.findElection(ctx, id)
	if err != nil {
		return nil, err
	}
	st := &domain.VoteStatistics{VotesByConstituency: make([]domain.ConstituencyVotes, len(e.Constituencies))}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Votes.CountByElection(gctx, e.ID)
		st.TotalVotes = n
		return err
	})
	g.Go(func() error {
		n, err := s.Users.CountByRole(gctx, domain.RoleVoter)
		st.TotalVoters = n
		return err
	})
	for i, c := range e.Constituencies {
		i, c := i, c
		g.Go(func() error {
			n, err := s.Votes.CountByConstituency(gctx, e.ID, c.Name)
			st.VotesByConstituency[i] = domain.ConstituencyVotes{Constituency: c.Name, Votes: n}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	st.VoterTurnout = domain.FormatTurnout(st.TotalVotes, st.TotalVoters)
	return st, nil
}
