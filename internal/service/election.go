package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"election-commission/internal/core/metrics"
	"election-commission/internal/domain"
)

type ElectionService struct{ Deps }

func NewElectionService(d Deps) *ElectionService { return &ElectionService{Deps: d.withDefaults()} }

type CreateElectionInput struct {
	Title          string
	Description    string
	StartDate      time.Time
	EndDate        time.Time
	Constituencies []string
}

func (s *ElectionService) Create(ctx context.Context, p domain.Principal, in CreateElectionInput) (*domain.Election, error) {
	title, desc := strings.TrimSpace(in.Title), strings.TrimSpace(in.Description)
	if title == "" || desc == "" || in.StartDate.IsZero() || in.EndDate.IsZero() || len(in.Constituencies) == 0 {
		return nil, domain.Validation("please add all required fields")
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, domain.Validation("end date must be after start date")
	}
	names := make([]string, 0, len(in.Constituencies))
	seen := make(map[string]struct{}, len(in.Constituencies))
	for _, raw := range in.Constituencies {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, domain.Validation("constituency name cannot be empty")
		}
		key := domain.ConstituencyKey(name)
		if _, dup := seen[key]; dup {
			return nil, domain.Validation(fmt.Sprintf("duplicate constituency: %s", name))
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	e := &domain.Election{
		Title:          title,
		Description:    desc,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Status:         domain.ResolveStatus(s.Now(), in.StartDate, in.EndDate, false, domain.StatusUpcoming),
		CreatedBy:      p.UserID,
		Constituencies: make([]domain.Constituency, 0, len(names)),
	}
	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		// 自动登记：创建时刻的快照，之后注册的用户不会补进来
		for _, name := range names {
			leaders, err := s.Users.ListByRole(ctx, domain.RoleLeader, name)
			if err != nil {
				return err
			}
			voters, err := s.Users.ListByRole(ctx, domain.RoleVoter, name)
			if err != nil {
				return err
			}
			e.Constituencies = append(e.Constituencies, domain.Constituency{
				Name:       name,
				Candidates: userIDs(leaders),
				Voters:     userIDs(voters),
			})
		}
		return s.Elections.Create(ctx, e)
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, domain.Validation("constituency names must be unique")
	}
	if err != nil {
		return nil, err
	}
	for _, c := range e.Constituencies {
		s.Log.Info("constituency enrolled",
			zap.String("election", e.ID),
			zap.String("constituency", c.Name),
			zap.Int("candidates", len(c.Candidates)),
			zap.Int("voters", len(c.Voters)),
		)
	}
	return e, nil
}

func (s *ElectionService) List(ctx context.Context) ([]domain.Election, error) {
	es, err := s.Elections.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range es {
		s.refreshStatus(ctx, &es[i])
	}
	return es, nil
}

func (s *ElectionService) Get(ctx context.Context, id string) (*domain.Election, error) {
	e, err := s.findElection(ctx, id)
	if err != nil {
		return nil, err
	}
	s.refreshStatus(ctx, e)
	return e, nil
}

// refreshStatus 读时重算状态，与存储值不同则条件写回；写回失败只记日志
func (s *ElectionService) refreshStatus(ctx context.Context, e *domain.Election) {
	eff := e.EffectiveStatus(s.Now())
	if eff == e.Status {
		return
	}
	ok, err := s.Elections.CompareAndSetStatus(ctx, e.ID, e.Status, eff)
	switch {
	case err != nil:
		s.Log.Warn("status write-back failed", zap.String("election", e.ID), zap.Error(err))
	case ok:
		metrics.StatusWritebacks.Inc()
		s.Log.Info("status written back",
			zap.String("election", e.ID),
			zap.String("from", string(e.Status)),
			zap.String("to", string(eff)),
		)
	}
	e.Status = eff
}

func (s *ElectionService) UpdateStatus(ctx context.Context, id, status string) (*domain.Election, error) {
	st, ok := domain.ParseStatus(strings.TrimSpace(status))
	if !ok {
		return nil, domain.Validation("please provide a valid status")
	}
	if _, err := s.findElection(ctx, id); err != nil {
		return nil, err
	}
	latch := st == domain.StatusCompleted
	if err := s.Elections.SetStatus(ctx, id, st, latch); err != nil {
		return nil, err
	}
	if latch {
		s.Log.Info("election manually completed", zap.String("election", id))
	}
	return s.findElection(ctx, id)
}

func (s *ElectionService) AddCandidate(ctx context.Context, electionID, candidateID, constituency string) (*domain.Election, error) {
	if strings.TrimSpace(candidateID) == "" || strings.TrimSpace(constituency) == "" {
		return nil, domain.Validation("please provide candidate ID and constituency name")
	}
	e, err := s.findElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	cand, err := s.Users.FindByID(ctx, candidateID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("candidate not found")
	}
	if err != nil {
		return nil, err
	}
	c, ok := e.Constituency(constituency)
	if !ok {
		return nil, domain.NotFound("constituency not found")
	}
	if cand.Role != domain.RoleLeader {
		return nil, domain.Validation("candidate is not a leader")
	}
	if !cand.InConstituency(c.Name) {
		return nil, domain.Validation("candidate must belong to the specified constituency")
	}
	if c.HasCandidate(cand.ID) {
		return nil, domain.Conflict("candidate already added to this constituency")
	}
	if err := s.Elections.AddMember(ctx, c.ID, domain.MemberCandidate, cand.ID); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Conflict("candidate already added to this constituency")
		}
		return nil, err
	}
	s.invalidate(ctx, e.ID)
	return s.Get(ctx, e.ID)
}

func (s *ElectionService) RemoveCandidate(ctx context.Context, electionID, candidateID, constituency string) (*domain.Election, error) {
	if strings.TrimSpace(candidateID) == "" || strings.TrimSpace(constituency) == "" {
		return nil, domain.Validation("please provide candidate ID and constituency name")
	}
	e, err := s.findElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	c, ok := e.Constituency(constituency)
	if !ok {
		return nil, domain.NotFound("constituency not found")
	}
	removed, err := s.Elections.RemoveMember(ctx, c.ID, domain.MemberCandidate, candidateID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, domain.Validation("candidate is not registered for this constituency")
	}
	s.invalidate(ctx, e.ID)
	return s.Get(ctx, e.ID)
}

func (s *ElectionService) RegisterVoter(ctx context.Context, electionID, voterID, constituency string) (string, *domain.Election, error) {
	if strings.TrimSpace(voterID) == "" || strings.TrimSpace(constituency) == "" {
		return "", nil, domain.Validation("please provide voter ID and constituency name")
	}
	e, err := s.findElection(ctx, electionID)
	if err != nil {
		return "", nil, err
	}
	voter, err := s.Users.FindByID(ctx, voterID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && voter.Role != domain.RoleVoter) {
		return "", nil, domain.NotFound("voter not found")
	}
	if err != nil {
		return "", nil, err
	}
	c, ok := e.Constituency(constituency)
	if !ok {
		return "", nil, domain.NotFound("constituency not found")
	}
	if c.HasVoter(voter.ID) {
		return "", nil, domain.Conflict("voter is already registered for this constituency")
	}
	if err := s.Elections.AddMember(ctx, c.ID, domain.MemberVoter, voter.ID); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return "", nil, domain.Conflict("voter is already registered for this constituency")
		}
		return "", nil, err
	}
	updated, err := s.Get(ctx, e.ID)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Voter %s registered for %s constituency", voter.Name, c.Name), updated, nil
}

// Delete 同一事务内先删选票再删选举；候选人计票与 hasVoted 不回退
func (s *ElectionService) Delete(ctx context.Context, id string) error {
	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.findElection(ctx, id); err != nil {
			return err
		}
		removed, err := s.Votes.DeleteByElection(ctx, id)
		if err != nil {
			return err
		}
		if err := s.Elections.Delete(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NotFound("election not found")
			}
			return err
		}
		s.Log.Info("election deleted", zap.String("election", id), zap.Int("votes", len(removed)))
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func userIDs(us []domain.User) []string {
	out := make([]string, 0, len(us))
	for _, u := range us {
		out = append(out, u.ID)
	}
	return out
}
