package model

import (
	"errors"
	"time"
)

// Model validation errors.
var (
	ErrMissingName   = errors.New("spot name is required")
	ErrMissingCamera = errors.New("camera entity is required")
	ErrUnknownVoice  = errors.New("unknown voice")
)

// ItemState describes a single item's standing against the spot definition.
type ItemState string

// Item state constants.
const (
	ItemOutOfPlace ItemState = "out_of_place"
	ItemClear      ItemState = "clear"
)

// ItemVerdict is the judgment for one definition clause. The Label is
// normalized (lowercased, trimmed) so it can be matched against history.
type ItemVerdict struct {
	Label          string    `json:"label"`
	State          ItemState `json:"state"`
	Note           string    `json:"note,omitempty"`
	Recurring      bool      `json:"recurring,omitempty"`
	RecurringCount int       `json:"recurring_count,omitempty"`
}

// CheckNotes carries the free-text commentary produced alongside a check.
type CheckNotes struct {
	Main          string `json:"main,omitempty"`
	Pattern       string `json:"pattern,omitempty"`
	Encouragement string `json:"encouragement,omitempty"`
}

// CheckRecord is one completed check of a spot. Records are append-only:
// once written they are never mutated, only superseded by newer records.
type CheckRecord struct {
	Timestamp       time.Time     `json:"timestamp"`
	ObservationRef  string        `json:"observation_ref,omitempty"`
	Status          SpotStatus    `json:"status"`
	Verdicts        []ItemVerdict `json:"items"`
	APIResponseTime time.Duration `json:"-"`
	ID              int64         `json:"id"`
	SpotID          int64         `json:"spot_id"`
	Eligible        bool          `json:"eligible"`
	Notes           CheckNotes    `json:"notes"`
}

// OutOfPlace returns the verdicts whose state is out_of_place, in order.
func (r *CheckRecord) OutOfPlace() []ItemVerdict {
	var out []ItemVerdict
	for _, v := range r.Verdicts {
		if v.State == ItemOutOfPlace {
			out = append(out, v)
		}
	}
	return out
}

// Clear returns the verdicts whose state is clear, in order.
func (r *CheckRecord) Clear() []ItemVerdict {
	var out []ItemVerdict
	for _, v := range r.Verdicts {
		if v.State == ItemClear {
			out = append(out, v)
		}
	}
	return out
}

// Day returns the calendar day of the record in the given location,
// formatted as 2006-01-02. Streak accounting is day-granular.
func (r *CheckRecord) Day(loc *time.Location) string {
	return r.Timestamp.In(loc).Format("2006-01-02")
}

// CheckResult is what a single engine run returns to the caller. Field
// names are stable: the API layer serializes this struct directly.
type CheckResult struct {
	Status        SpotStatus    `json:"status"`
	Report        string        `json:"report"`
	Items         []ItemVerdict `json:"items"`
	CurrentStreak int           `json:"current_streak"`
	BestStreak    int           `json:"best_streak"`
	Eligible      bool          `json:"eligible"`
	SpotID        int64         `json:"spot_id"`
}
