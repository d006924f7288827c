package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"election-commission/internal/domain"
	"election-commission/internal/testutil"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

const adminKey = "test-admin-key"

type fixture struct {
	st        *testutil.Stores
	clock     *testutil.Clock
	cache     *memCache
	identity  *IdentityService
	elections *ElectionService
	votes     *VoteService
	admin     domain.Principal
}

// newFixture mods 可替换 Deps（比如换成 gomock 缓存）
func newFixture(t *testing.T, mods ...func(*Deps)) *fixture {
	t.Helper()
	st := testutil.NewStores(t)
	clock := testutil.NewClock(t0)
	cache := newMemCache()
	deps := Deps{
		Tx:        st.Tx,
		Users:     st.Users,
		Elections: st.Elections,
		Votes:     st.Votes,
		Cache:     cache,
		Now:       clock.Now,
	}
	for _, m := range mods {
		m(&deps)
	}
	f := &fixture{
		st:        st,
		clock:     clock,
		cache:     cache,
		identity:  NewIdentityService(st.Users, IdentityConfig{AdminSecretKey: adminKey, BcryptCost: bcrypt.MinCost}, nil),
		elections: NewElectionService(deps),
		votes:     NewVoteService(deps),
	}
	a, err := f.identity.RegisterAdmin(context.Background(), RegisterAdminInput{
		Name: "Root", Email: "root@example.com", Password: "pw", AdminKey: adminKey,
	})
	require.NoError(t, err)
	f.admin = principalOf(a)
	return f
}

func principalOf(u *domain.User) domain.Principal {
	return domain.Principal{UserID: u.ID, Role: u.Role, Constituency: u.Constituency}
}

func (f *fixture) voter(t *testing.T, name, constituency string) *domain.User {
	t.Helper()
	u, err := f.identity.Register(context.Background(), RegisterInput{
		Name: name, Email: name + "@example.com", Password: "pw", Role: "voter", Constituency: constituency,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) leader(t *testing.T, name, constituency string) *domain.User {
	t.Helper()
	u, err := f.identity.Register(context.Background(), RegisterInput{
		Name: name, Email: name + "@example.com", Password: "pw", Role: "leader",
		Constituency: constituency, Party: "Party of " + name, Manifesto: "Vote " + name,
	})
	require.NoError(t, err)
	return u
}

// election 投票窗口为 [t0-1h, t0+1h]
func (f *fixture) election(t *testing.T, constituencies ...string) *domain.Election {
	t.Helper()
	e, err := f.elections.Create(context.Background(), f.admin, CreateElectionInput{
		Title:          "General",
		Description:    "General election",
		StartDate:      t0.Add(-time.Hour),
		EndDate:        t0.Add(time.Hour),
		Constituencies: constituencies,
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) user(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := f.st.Users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) reload(t *testing.T, id string) *domain.Election {
	t.Helper()
	e, err := f.st.Elections.FindByID(context.Background(), id)
	require.NoError(t, err)
	return e
}

// memCache 进程内 ResultsCache，记录失效调用
type memCache struct {
	mu          sync.Mutex
	items       map[string]domain.Ballot
	loads       int
	invalidated []string
}

func newMemCache() *memCache { return &memCache{items: map[string]domain.Ballot{}} }

func (m *memCache) GetOrLoad(ctx context.Context, id string, load func(context.Context) (*domain.Ballot, error)) (*domain.Ballot, error) {
	m.mu.Lock()
	if r, ok := m.items[id]; ok {
		m.mu.Unlock()
		return &r, nil
	}
	m.mu.Unlock()
	r, err := load(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.items[id] = *r
	m.loads++
	m.mu.Unlock()
	return r, nil
}

func (m *memCache) Invalidate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	m.invalidated = append(m.invalidated, id)
	return nil
}

func (m *memCache) invalidations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.invalidated...)
}

func requireKind(t *testing.T, err error, k domain.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, k, domain.KindOf(err), "error: %v", err)
	if msg != "" {
		require.Equal(t, msg, err.Error())
	}
}
