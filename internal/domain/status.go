package domain

import "time"

// ResolveStatus maps the clock and an election's dates onto its effective status.
// A manual completion is sticky: once latched together with a stored completed
// status, the dates are no longer consulted.
func ResolveStatus(now, start, end time.Time, manuallyCompleted bool, stored Status) Status {
	if manuallyCompleted && stored == StatusCompleted {
		return StatusCompleted
	}
	switch {
	case now.Before(start):
		return StatusUpcoming
	case !now.After(end):
		return StatusActive
	default:
		return StatusCompleted
	}
}
