// Package readiness evaluates a spot observation against the user's
// free-text ready-state definition.
package readiness

import (
	"context"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// Clause is one independent checkable criterion from a definition. The text
// is opaque: what it means is decided by the match strategy.
type Clause struct {
	// Text is the normalized clause as the user wrote it.
	Text string
	// Label is the normalized item label derived from the clause, used for
	// recurrence tracking when no observation label matches.
	Label string
}

// MatchStrategy decides the verdict for a single clause against an
// observation. Implementations must always return a verdict: a clause is
// never silently dropped.
type MatchStrategy interface {
	Match(ctx context.Context, clause Clause, obs *model.Observation) (model.ItemVerdict, error)
}
