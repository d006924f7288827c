package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveStatus(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		now    time.Time
		latch  bool
		stored Status
		want   Status
	}{
		{"before start", start.Add(-time.Minute), false, StatusUpcoming, StatusUpcoming},
		{"at start", start, false, StatusUpcoming, StatusActive},
		{"inside window", start.Add(time.Hour), false, StatusUpcoming, StatusActive},
		{"at end", end, false, StatusActive, StatusActive},
		{"after end", end.Add(time.Second), false, StatusActive, StatusCompleted},
		{"stored completed without latch follows clock", start.Add(time.Hour), false, StatusCompleted, StatusActive},
		{"latch with completed is sticky", start.Add(-time.Hour), true, StatusCompleted, StatusCompleted},
		{"latch without completed follows clock", start.Add(time.Hour), true, StatusActive, StatusActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveStatus(tc.now, start, end, tc.latch, tc.stored))
		})
	}
}

func TestResolveStatusLatchNeverReverts(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)
	for d := -48 * time.Hour; d <= 48*time.Hour; d += 30 * time.Minute {
		assert.Equal(t, StatusCompleted, ResolveStatus(start.Add(d), start, end, true, StatusCompleted))
	}
}

func TestResolveStatusMonotonic(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)
	rank := map[Status]int{StatusUpcoming: 0, StatusActive: 1, StatusCompleted: 2}
	prev := -1
	for d := -24 * time.Hour; d <= 24*time.Hour; d += 15 * time.Minute {
		r := rank[ResolveStatus(start.Add(d), start, end, false, StatusUpcoming)]
		assert.GreaterOrEqual(t, r, prev)
		prev = r
	}
}
