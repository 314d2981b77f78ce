package engine

import (
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// StreakTracker folds check records into per-spot streak state. Streaks are
// day-granular: the final eligible check of a calendar day decides whether
// that day extends the streak or breaks it.
type StreakTracker struct {
	loc *time.Location
}

// NewStreakTracker creates a tracker that buckets checks into calendar days
// in the given location. A nil location falls back to time.Local.
func NewStreakTracker(loc *time.Location) *StreakTracker {
	if loc == nil {
		loc = time.Local
	}
	return &StreakTracker{loc: loc}
}

// Apply folds one record into the state in place. Ineligible records change
// nothing. A later check on the same day recomputes the day's contribution
// from DayStart, so an earlier verdict that day never double-counts.
// Current never exceeds Best after Apply returns.
func (t *StreakTracker) Apply(state *model.StreakState, record *model.CheckRecord) {
	if state == nil || record == nil || !record.Eligible {
		return
	}

	day := record.Day(t.loc)
	if day != state.LastDate {
		// New day: what we have now is this day's starting point.
		state.DayStart = state.Current
	}

	if record.Status == model.StatusSorted {
		state.Current = state.DayStart + 1
	} else {
		state.Current = 0
	}
	if state.Current > state.Best {
		state.Best = state.Current
	}

	state.LastDate = day
	state.LastStatus = record.Status
}

// Reset zeroes the current streak and counts the reset. Best is untouched:
// it is a lifetime high-water mark.
func (t *StreakTracker) Reset(state *model.StreakState) {
	if state == nil {
		return
	}
	state.Current = 0
	state.DayStart = 0
	state.TotalResets++
}
