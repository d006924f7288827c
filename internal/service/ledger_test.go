package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"election-commission/internal/domain"
)

type LedgerSuite struct {
	suite.Suite
	f   *fixture
	ctx context.Context
}

func TestLedgerSuite(t *testing.T) { suite.Run(t, new(LedgerSuite)) }

func (s *LedgerSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.ctx = context.Background()
}

func (s *LedgerSuite) cast(v *domain.User, e *domain.Election, candidateID string) (*domain.Vote, error) {
	return s.f.votes.Cast(s.ctx, principalOf(v), e.ID, candidateID)
}

func (s *LedgerSuite) requireKind(err error, k domain.Kind, msg string) {
	s.T().Helper()
	requireKind(s.T(), err, k, msg)
}

// Springfield 有已登记选民 V、无候选人；L 属于 Springfield
func (s *LedgerSuite) TestAutoRegistersCandidate() {
	t := s.T()
	v := s.f.voter(t, "V", "Springfield")
	e := s.f.election(t, "Springfield")
	l := s.f.leader(t, "L", "Springfield")
	s.Require().Empty(e.Constituencies[0].Candidates)

	vote, err := s.cast(v, e, l.ID)
	s.Require().NoError(err)
	s.Equal("Springfield", vote.Constituency)
	s.Equal(t0, vote.Timestamp)

	s.EqualValues(1, s.f.user(t, l.ID).Votes)
	s.True(s.f.user(t, v.ID).HasVoted)
	s.Equal([]string{l.ID}, s.f.reload(t, e.ID).Constituencies[0].Candidates)
	s.Contains(s.f.cache.invalidations(), e.ID)
}

func (s *LedgerSuite) TestSecondVoteConflicts() {
	t := s.T()
	v := s.f.voter(t, "V", "Springfield")
	l := s.f.leader(t, "L", "Springfield")
	e := s.f.election(t, "Springfield")
	_, err := s.cast(v, e, l.ID)
	s.Require().NoError(err)

	_, err = s.cast(v, e, l.ID)
	s.requireKind(err, domain.KindConflict, "you have already voted in this election")
	s.EqualValues(1, s.f.user(t, l.ID).Votes)
	n, err := s.f.st.Votes.CountByElection(s.ctx, e.ID)
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *LedgerSuite) TestHasVotedIsGlobal() {
	t := s.T()
	v := s.f.voter(t, "V", "Springfield")
	l := s.f.leader(t, "L", "Springfield")
	e1 := s.f.election(t, "Springfield")
	e2 := s.f.election(t, "Springfield")
	_, err := s.cast(v, e1, l.ID)
	s.Require().NoError(err)

	_, err = s.cast(v, e2, l.ID)
	s.requireKind(err, domain.KindConflict, "you have already voted")
}

func (s *LedgerSuite) TestCrossConstituencyRejected() {
	t := s.T()
	v := s.f.voter(t, "V", "Chennai")
	l := s.f.leader(t, "L", "Delhi")
	e := s.f.election(t, "Chennai", "Delhi")

	_, err := s.cast(v, e, l.ID)
	s.requireKind(err, domain.KindValidation, "you can only vote for candidates in your constituency")
	s.Zero(s.f.user(t, l.ID).Votes)
	s.False(s.f.user(t, v.ID).HasVoted)
	s.Equal(e.Constituencies, s.f.reload(t, e.ID).Constituencies)
}

func (s *LedgerSuite) TestWindow() {
	t := s.T()
	v := s.f.voter(t, "V", "A")
	l := s.f.leader(t, "L", "A")
	e := s.f.election(t, "A")

	s.f.clock.Set(t0.Add(-2 * time.Hour))
	_, err := s.cast(v, e, l.ID)
	s.requireKind(err, domain.KindValidation, "voting has not started yet for this election")

	s.f.clock.Set(t0.Add(2 * time.Hour))
	_, err = s.cast(v, e, l.ID)
	s.requireKind(err, domain.KindValidation, "voting has ended for this election")

	// 窗口边界是闭区间
	s.f.clock.Set(e.EndDate)
	_, err = s.cast(v, e, l.ID)
	s.NoError(err)
}

func (s *LedgerSuite) TestWritesBackActiveStatus() {
	t := s.T()
	v := s.f.voter(t, "V", "A")
	l := s.f.leader(t, "L", "A")
	e, err := s.f.elections.Create(s.ctx, s.f.admin, CreateElectionInput{
		Title: "T", Description: "D",
		StartDate: t0.Add(time.Minute), EndDate: t0.Add(time.Hour),
		Constituencies: []string{"A"},
	})
	s.Require().NoError(err)
	s.Require().Equal(domain.StatusUpcoming, s.f.reload(t, e.ID).Status)

	s.f.clock.Advance(2 * time.Minute)
	_, err = s.cast(v, e, l.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusActive, s.f.reload(t, e.ID).Status)
}

func (s *LedgerSuite) TestManuallyClosed() {
	t := s.T()
	v := s.f.voter(t, "V", "A")
	l := s.f.leader(t, "L", "A")
	e := s.f.election(t, "A")
	_, err := s.f.elections.UpdateStatus(s.ctx, e.ID, "completed")
	s.Require().NoError(err)

	_, err = s.cast(v, e, l.ID)
	s.requireKind(err, domain.KindValidation, "voting has been closed for this election")
}

func (s *LedgerSuite) TestOnlyVoters() {
	t := s.T()
	l := s.f.leader(t, "L", "A")
	other := s.f.leader(t, "M", "A")
	e := s.f.election(t, "A")

	_, err := s.cast(l, e, other.ID)
	s.requireKind(err, domain.KindForbidden, "only voters can cast votes")
	_, err = s.f.votes.Cast(s.ctx, s.f.admin, e.ID, l.ID)
	s.requireKind(err, domain.KindForbidden, "only voters can cast votes")
}

func (s *LedgerSuite) TestCandidateMustBeLeader() {
	t := s.T()
	v := s.f.voter(t, "V", "A")
	w := s.f.voter(t, "W", "A")
	e := s.f.election(t, "A")

	_, err := s.cast(v, e, w.ID)
	s.requireKind(err, domain.KindNotFound, "candidate not found or not a leader")
	_, err = s.cast(v, e, "ghost")
	s.requireKind(err, domain.KindNotFound, "candidate not found or not a leader")
}

func (s *LedgerSuite) TestConstituencyNotInElection() {
	t := s.T()
	v := s.f.voter(t, "V", "Ogdenville")
	l := s.f.leader(t, "L", "Ogdenville")
	e := s.f.election(t, "Springfield")

	_, err := s.cast(v, e, l.ID)
	s.requireKind(err, domain.KindValidation, "your constituency is not part of this election")
}

func (s *LedgerSuite) TestVoterMustBeRegistered() {
	t := s.T()
	l := s.f.leader(t, "L", "Springfield")
	e := s.f.election(t, "Springfield")
	late := s.f.voter(t, "late", "Springfield")

	_, err := s.cast(late, e, l.ID)
	s.requireKind(err, domain.KindValidation, "you are not registered to vote in this election")

	_, _, err = s.f.elections.RegisterVoter(s.ctx, e.ID, late.ID, "Springfield")
	s.Require().NoError(err)
	_, err = s.cast(late, e, l.ID)
	s.NoError(err)
}

func (s *LedgerSuite) TestUnknownElection() {
	v := s.f.voter(s.T(), "V", "A")
	_, err := s.f.votes.Cast(s.ctx, principalOf(v), "missing", "x")
	s.requireKind(err, domain.KindNotFound, "election not found")
	_, err = s.f.votes.Cast(s.ctx, principalOf(v), "", "x")
	s.requireKind(err, domain.KindValidation, "please provide election ID and candidate ID")
	_, err = s.f.votes.Cast(s.ctx, domain.Principal{}, "e", "x")
	s.requireKind(err, domain.KindUnauthorized, "")
}

func (s *LedgerSuite) TestAutoRegistrationIsIdempotent() {
	t := s.T()
	v1 := s.f.voter(t, "v1", "A")
	v2 := s.f.voter(t, "v2", "A")
	e := s.f.election(t, "A")
	l := s.f.leader(t, "L", "A")

	_, err := s.cast(v1, e, l.ID)
	s.Require().NoError(err)
	_, err = s.cast(v2, e, l.ID)
	s.Require().NoError(err)

	s.Equal([]string{l.ID}, s.f.reload(t, e.ID).Constituencies[0].Candidates)
	s.EqualValues(2, s.f.user(t, l.ID).Votes)
}

func (s *LedgerSuite) TestConcurrentCastsRecordOneVote() {
	t := s.T()
	v := s.f.voter(t, "V", "A")
	l := s.f.leader(t, "L", "A")
	e := s.f.election(t, "A")

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.cast(v, e, l.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	s.Equal(1, oks)
	for _, err := range errs {
		s.Equal(domain.KindConflict, domain.KindOf(err), "error: %v", err)
	}
	s.EqualValues(1, s.f.user(t, l.ID).Votes)
	cnt, err := s.f.st.Votes.CountByElection(s.ctx, e.ID)
	s.Require().NoError(err)
	s.EqualValues(1, cnt)
}
