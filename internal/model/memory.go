package model

import "time"

// RecurrenceStat tracks how often one item shows up out of place at a spot,
// over a bounded trailing window of eligible checks. It is a derived view:
// replaying a spot's full check history from an empty state must reproduce
// it exactly.
type RecurrenceStat struct {
	LastSeen       time.Time
	Label          string
	SpotID         int64
	Occurrences    int
	EligibleChecks int
}

// Ratio returns occurrences over eligible checks within the window.
func (s *RecurrenceStat) Ratio() float64 {
	if s.EligibleChecks == 0 {
		return 0
	}
	return float64(s.Occurrences) / float64(s.EligibleChecks)
}

// StreakState holds the per-spot streak counters. Current counts consecutive
// eligible days ending sorted; Best is the monotonic maximum Current has ever
// reached. Current <= Best holds after every transition.
//
// DayStart is Current as of the start of LastDate's day. It lets a later
// check on the same day recompute the day's contribution from scratch, so
// only the final eligible check of a day counts.
type StreakState struct {
	LastDate    string
	LastStatus  SpotStatus
	SpotID      int64
	Current     int
	Best        int
	DayStart    int
	TotalResets int
}

// SnoozeWindow suppresses streak and recurrence accounting until Until.
// Expiry is lazy: there is no timer, readers compare against the clock.
type SnoozeWindow struct {
	Until  time.Time
	SpotID int64
}

// Active reports whether the window suppresses checks at the given instant.
func (w *SnoozeWindow) Active(now time.Time) bool {
	if w == nil || w.Until.IsZero() {
		return false
	}
	return now.Before(w.Until)
}

// SpotInsights aggregates longer-term patterns for display and for the
// analytical voice. Computed from history, never stored.
type SpotInsights struct {
	UsuallySortedBy string
	WorstDay        string
	BestDay         string
	TotalChecks     int
}
