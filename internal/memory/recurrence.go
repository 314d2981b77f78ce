// Package memory maintains longitudinal per-spot statistics: recurring
// out-of-place items and longer-term patterns, derived entirely from the
// append-only check history.
package memory

import (
	"sort"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// Recurrence policy. The window is a trailing count of eligible checks so
// the ratio is reproducible from raw history alone.
const (
	// WindowSize bounds the trailing window of eligible checks considered.
	WindowSize = 20
	// DefaultThreshold is the ratio at which an item becomes recurring.
	DefaultThreshold = 0.5
	// DefaultMinOccurrences guards against flagging recurrence from a
	// single data point.
	DefaultMinOccurrences = 2
)

// Recurrence computes per-item recurrence statistics. Zero value is not
// usable; use New.
type Recurrence struct {
	threshold      float64
	minOccurrences int
}

// New creates a recurrence tracker with the default policy.
func New() *Recurrence {
	return &Recurrence{
		threshold:      DefaultThreshold,
		minOccurrences: DefaultMinOccurrences,
	}
}

// NewWithPolicy creates a recurrence tracker with a custom threshold and
// minimum occurrence count.
func NewWithPolicy(threshold float64, minOccurrences int) *Recurrence {
	return &Recurrence{threshold: threshold, minOccurrences: minOccurrences}
}

// Recurring reports whether a stat crosses the recurring line.
func (r *Recurrence) Recurring(stat *model.RecurrenceStat) bool {
	return stat.Occurrences >= r.minOccurrences && stat.Ratio() >= r.threshold
}

// Apply folds one new check record into existing stats and returns the
// updated set, sorted by label. Ineligible records change nothing. Apply is
// equivalent to replaying the full history: it recomputes the window from
// the records seen so far, which the caller passes in chronological order
// via successive calls.
//
// Incremental use requires the caller to hand Apply the same records, in the
// same order, that Replay would see; the engine guarantees this by applying
// every eligible record exactly once at check time.
func (r *Recurrence) Apply(history []model.CheckRecord, record *model.CheckRecord) []model.RecurrenceStat {
	all := make([]model.CheckRecord, 0, len(history)+1)
	all = append(all, history...)
	if record != nil {
		all = append(all, *record)
	}
	return r.Replay(all)
}

// Replay computes stats from scratch over a spot's full check history. Only
// eligible records inside the trailing window count. The result is
// deterministic: same records, same stats, bit for bit.
func (r *Recurrence) Replay(records []model.CheckRecord) []model.RecurrenceStat {
	eligible := make([]model.CheckRecord, 0, len(records))
	for _, rec := range records {
		if rec.Eligible {
			eligible = append(eligible, rec)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Timestamp.Before(eligible[j].Timestamp)
	})

	if len(eligible) > WindowSize {
		eligible = eligible[len(eligible)-WindowSize:]
	}

	// First pass: which labels have ever appeared in the window, and when
	// each label entered history. A label's eligible-check count starts at
	// its first appearance so absence can lower its frequency afterwards.
	firstSeen := make(map[string]int)
	for i, rec := range eligible {
		for _, v := range rec.Verdicts {
			if _, ok := firstSeen[v.Label]; !ok {
				firstSeen[v.Label] = i
			}
		}
	}

	stats := make(map[string]*model.RecurrenceStat, len(firstSeen))
	for label, first := range firstSeen {
		stats[label] = &model.RecurrenceStat{
			Label:          label,
			EligibleChecks: len(eligible) - first,
		}
	}

	for _, s := range stats {
		s.SpotID = eligible[0].SpotID
	}

	for _, rec := range eligible {
		for _, v := range rec.OutOfPlace() {
			s := stats[v.Label]
			s.Occurrences++
			if rec.Timestamp.After(s.LastSeen) {
				s.LastSeen = rec.Timestamp
			}
		}
	}

	if len(stats) == 0 {
		return nil
	}

	out := make([]model.RecurrenceStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Annotate marks each out-of-place verdict that the stats show as
// recurring, attaching the occurrence count for the composer.
func (r *Recurrence) Annotate(verdicts []model.ItemVerdict, stats []model.RecurrenceStat) []model.ItemVerdict {
	byLabel := make(map[string]model.RecurrenceStat, len(stats))
	for _, s := range stats {
		byLabel[s.Label] = s
	}

	out := make([]model.ItemVerdict, len(verdicts))
	copy(out, verdicts)
	for i := range out {
		if out[i].State != model.ItemOutOfPlace {
			continue
		}
		stat, ok := byLabel[out[i].Label]
		if !ok {
			continue
		}
		if r.Recurring(&stat) {
			out[i].Recurring = true
			out[i].RecurringCount = stat.Occurrences
		}
	}
	return out
}

// Insights derives day-of-week and time-of-day patterns from history for
// display and for the analytical voice.
func Insights(records []model.CheckRecord, loc *time.Location) model.SpotInsights {
	in := model.SpotInsights{TotalChecks: len(records)}
	if len(records) == 0 {
		return in
	}

	worst := make(map[string]int)
	best := make(map[string]int)
	sortedHours := make(map[int]int)

	for _, rec := range records {
		ts := rec.Timestamp.In(loc)
		day := ts.Weekday().String()
		switch rec.Status {
		case model.StatusNeedsAttention:
			worst[day]++
		case model.StatusSorted:
			best[day]++
			sortedHours[ts.Hour()]++
		}
	}

	in.WorstDay = topDay(worst)
	in.BestDay = topDay(best)
	if hour, ok := topHour(sortedHours); ok {
		in.UsuallySortedBy = formatHour(hour)
	}
	return in
}

func topDay(counts map[string]int) string {
	bestDay := ""
	bestCount := 0
	for day, n := range counts {
		if n > bestCount || (n == bestCount && n > 0 && day < bestDay) {
			bestDay, bestCount = day, n
		}
	}
	return bestDay
}

func topHour(counts map[int]int) (int, bool) {
	bestHour, bestCount := 0, 0
	found := false
	for hour, n := range counts {
		if n > bestCount || (n == bestCount && found && hour < bestHour) {
			bestHour, bestCount = hour, n
			found = true
		}
	}
	return bestHour, found
}

func formatHour(hour int) string {
	return time.Date(0, time.January, 1, hour, 0, 0, 0, time.UTC).Format("3:00 PM")
}
