package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"election-commission/internal/domain"
	"election-commission/internal/testutil"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func strp(s string) *string { return &s }

func TestUserUniqueIndexes(t *testing.T) {
	st := testutil.NewStores(t)
	ctx := context.Background()

	a := &domain.User{Name: "a", Email: "a@example.com", PasswordHash: "h", Role: domain.RoleVoter, Constituency: "X", VoterID: strp("1000000000")}
	require.NoError(t, st.Users.Create(ctx, a))
	assert.NotEmpty(t, a.ID)

	err := st.Users.Create(ctx, &domain.User{Name: "b", Email: "a@example.com", PasswordHash: "h", Role: domain.RoleVoter, VoterID: strp("2000000000")})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	err = st.Users.Create(ctx, &domain.User{Name: "c", Email: "c@example.com", PasswordHash: "h", Role: domain.RoleVoter, VoterID: strp("1000000000")})
	assert.ErrorIs(t, err, domain.ErrDuplicateVoterID)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// voter_id 为 NULL 的多行互不冲突
	require.NoError(t, st.Users.Create(ctx, &domain.User{Name: "l1", Email: "l1@example.com", PasswordHash: "h", Role: domain.RoleLeader}))
	require.NoError(t, st.Users.Create(ctx, &domain.User{Name: "l2", Email: "l2@example.com", PasswordHash: "h", Role: domain.RoleLeader}))

	_, err = st.Users.FindByID(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListByRoleMatchesConstituencyCaseInsensitively(t *testing.T) {
	st := testutil.NewStores(t)
	ctx := context.Background()
	for _, c := range []string{"Springfield", "SPRINGFIELD", "Shelbyville"} {
		require.NoError(t, st.Users.Create(ctx, &domain.User{Name: c, Email: c + "@example.com", PasswordHash: "h", Role: domain.RoleLeader, Constituency: c}))
	}
	us, err := st.Users.ListByRole(ctx, domain.RoleLeader, " springfield ")
	require.NoError(t, err)
	assert.Len(t, us, 2)

	n, err := st.Users.CountByRole(ctx, domain.RoleLeader)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func newElection(t *testing.T, st *testutil.Stores, candidates, voters []string, names ...string) *domain.Election {
	t.Helper()
	e := &domain.Election{
		Title: "T", Description: "D", StartDate: t0, EndDate: t0.Add(time.Hour),
		Status: domain.StatusUpcoming, CreatedBy: "admin",
	}
	for _, n := range names {
		e.Constituencies = append(e.Constituencies, domain.Constituency{Name: n, Candidates: candidates, Voters: voters})
	}
	require.NoError(t, st.Elections.Create(context.Background(), e))
	return e
}

func TestElectionRoundTripKeepsOrder(t *testing.T) {
	st := testutil.NewStores(t)
	ctx := context.Background()
	e := newElection(t, st, []string{"c2", "c1"}, []string{"v1"}, "Zeta", "Alpha")

	got, err := st.Elections.FindByID(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, got.Constituencies, 2)
	assert.Equal(t, "Zeta", got.Constituencies[0].Name)
	assert.Equal(t, "Alpha", got.Constituencies[1].Name)
	assert.Equal(t, []string{"c2", "c1"}, got.Constituencies[0].Candidates)
	assert.Equal(t, []string{"v1"}, got.Constituencies[1].Voters)

	require.NoError(t, st.Elections.AddMember(ctx, got.Constituencies[0].ID, domain.MemberCandidate, "c0"))
	got, err = st.Elections.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2", "c1", "c0"}, got.Constituencies[0].Candidates)
}

func TestDuplicateConstituencyRejected(t *testing.T) {
	st := testutil.NewStores(t)
	err := st.Elections.Create(context.Background(), &domain.Election{
		Title: "T", Description: "D", StartDate: t0, EndDate: t0.Add(time.Hour), Status: domain.StatusUpcoming,
		Constituencies: []domain.Constituency{{Name: "Delhi"}, {Name: "delhi "}},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestMembership(t *testing.T) {
	st := testutil.NewStores(t)
	ctx := context.Background()
	e := newElection(t, st, nil, nil, "A")
	cid := e.Constituencies[0].ID

	require.NoError(t, st.Elections.AddMember(ctx, cid, domain.MemberVoter, "v"))
	assert.ErrorIs(t, st.Elections.AddMember(ctx, cid, domain.MemberVoter, "v"), domain.ErrDuplicate)
	// 同一用户可以同时是候选人和选民行
	require.NoError(t, st.Elections.AddMember(ctx, cid, domain.MemberCandidate, "v"))

	added, err := st.Elections.EnsureMember(ctx, cid, domain.MemberCandidate, "l")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = st.Elections.EnsureMember(ctx, cid, domain.MemberCandidate, "l")
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := st.Elections.RemoveMember(ctx, cid, domain.MemberCandidate, "l")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = st.Elections.RemoveMember(ctx, cid, domain.MemberCandidate, "l")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCompareAndSetStatus(t *testing.T) {
	st := testutil.NewStores(t)
	ctx := context.Background()
	e := newElection(t, st, nil, nil, "A")

	ok, err := st.Elections.CompareAndSetStatus(ctx, e.ID, domain.StatusUpcoming, domain.StatusActive)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = st.Elections.CompareAndSetStatus(ctx, e.ID, domain.StatusUpcoming, domain.StatusActive)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Elections.SetStatus(ctx, e.ID, domain.StatusCompleted, true))
	require.NoError(t, st.Elections.SetStatus(ctx, e.ID, domain.StatusActive, false))
	got, err := st.Elections.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.True(t, got.ManuallyCompleted)
}

func TestVotesOnePerElectionAndDelete(t *testing.T) {
	st := testutil.NewStores(t)
	ctx := context.Background()
	voter := &domain.User{Name: "v", Email: "v@example.com", PasswordHash: "h", Role: domain.RoleVoter, VoterID: strp("1111111111")}
	cand := &domain.User{Name: "c", Email: "c@example.com", PasswordHash: "h", Role: domain.RoleLeader}
	require.NoError(t, st.Users.Create(ctx, voter))
	require.NoError(t, st.Users.Create(ctx, cand))
	e1 := newElection(t, st, nil, nil, "A")
	e2 := newElection(t, st, nil, nil, "A")

	vote := func(e *domain.Election) error {
		return st.Votes.Create(ctx, &domain.Vote{ElectionID: e.ID, VoterID: voter.ID, CandidateID: cand.ID, Constituency: "a", Timestamp: t0})
	}
	require.NoError(t, vote(e1))
	assert.ErrorIs(t, vote(e1), domain.ErrDuplicate)
	require.NoError(t, vote(e2))
	require.NoError(t, st.Users.IncrementVotes(ctx, cand.ID))
	require.NoError(t, st.Users.IncrementVotes(ctx, cand.ID))
	require.NoError(t, st.Users.MarkVoted(ctx, voter.ID))

	n, err := st.Votes.CountByConstituency(ctx, e1.ID, "A")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	ok, err := st.Votes.Exists(ctx, e1.ID, voter.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := st.Votes.DeleteByElection(ctx, e1.ID)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	ok, err = st.Votes.Exists(ctx, e1.ID, voter.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = st.Votes.Exists(ctx, e2.ID, voter.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	counts, err := st.Users.VoteCounts(ctx, []string{cand.ID, voter.ID, "ghost"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{cand.ID: 2, voter.ID: 0}, counts)
	counts, err = st.Users.VoteCounts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestListSearchTreatsWildcardsLiterally(t *testing.T) {
	st := testutil.NewStores(t)
	ctx := context.Background()
	for _, u := range []*domain.User{
		{Name: "100% Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob_smith@example.com"},
		{Name: "Carol", Email: "carol@example.com"},
		{Name: "Dan!", Email: "dan@example.com"},
	} {
		u.PasswordHash, u.Role = "h", domain.RoleLeader
		require.NoError(t, st.Users.Create(ctx, u))
	}

	names := func(q string) []string {
		us, total, err := st.Users.List(ctx, domain.UserFilter{Q: q, Limit: 10})
		require.NoError(t, err)
		require.EqualValues(t, len(us), total)
		out := make([]string, 0, len(us))
		for _, u := range us {
			out = append(out, u.Name)
		}
		return out
	}
	assert.Equal(t, []string{"100% Alice"}, names("%"))
	assert.Equal(t, []string{"Bob"}, names("_"))
	assert.Equal(t, []string{"Dan!"}, names("!"))
	assert.Len(t, names("example"), 4)
}

func TestTxRollsBack(t *testing.T) {
	st := testutil.NewStores(t)
	ctx := context.Background()
	boom := errors.New("boom")
	err := st.Tx.InTx(ctx, func(ctx context.Context) error {
		require.NoError(t, st.Users.Create(ctx, &domain.User{Name: "x", Email: "x@example.com", PasswordHash: "h", Role: domain.RoleLeader}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = st.Users.FindByEmail(ctx, "x@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElectionDelete(t *testing.T) {
	st := testutil.NewStores(t)
	ctx := context.Background()
	e := newElection(t, st, []string{"c"}, []string{"v"}, "A")
	require.NoError(t, st.Elections.Delete(ctx, e.ID))
	_, err := st.Elections.FindByID(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, st.Elections.Delete(ctx, e.ID), domain.ErrNotFound)
}
