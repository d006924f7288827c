package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTurnout(t *testing.T) {
	assert.Equal(t, "30.00%", FormatTurnout(3, 10))
	assert.Equal(t, "33.33%", FormatTurnout(1, 3))
	assert.Equal(t, "100.00%", FormatTurnout(4, 4))
	assert.Equal(t, "0.00%", FormatTurnout(0, 0))
	assert.Equal(t, "0.00%", FormatTurnout(5, 0))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("")
	assert.True(t, ok)
	assert.Equal(t, RoleVoter, r)

	r, ok = ParseRole(" Leader ")
	assert.True(t, ok)
	assert.Equal(t, RoleLeader, r)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("completed")
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, s)
	_, ok = ParseStatus("paused")
	assert.False(t, ok)
}

func TestElectionConstituencyLookup(t *testing.T) {
	e := Election{Constituencies: []Constituency{
		{Name: "Springfield", Voters: []string{"v1"}},
		{Name: "Shelbyville"},
	}}
	c, ok := e.Constituency("  springFIELD ")
	assert.True(t, ok)
	assert.Equal(t, "Springfield", c.Name)
	assert.True(t, c.HasVoter("v1"))
	assert.False(t, c.HasCandidate("v1"))

	_, ok = e.Constituency("Capital City")
	assert.False(t, ok)
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Conflict("you have already voted"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, IsKind(err, KindConflict))
	assert.Equal(t, KindInternal, KindOf(ErrNotFound))
	assert.False(t, IsKind(nil, KindInternal))
	assert.ErrorIs(t, ErrDuplicateVoterID, ErrDuplicate)
	assert.Equal(t, "not_found", KindNotFound.String())
}
