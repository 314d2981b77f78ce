package readiness

import (
	"context"
	"strings"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// TokenMatcher is the local match strategy: it pairs a clause with the
// observation label sharing the most tokens, then reads the label's state
// description to decide the verdict. It needs no network and is fully
// deterministic, which also makes it the strategy of choice in tests.
type TokenMatcher struct{}

// NewTokenMatcher creates a token-overlap match strategy.
func NewTokenMatcher() *TokenMatcher {
	return &TokenMatcher{}
}

// Match implements MatchStrategy.
func (m *TokenMatcher) Match(_ context.Context, clause Clause, obs *model.Observation) (model.ItemVerdict, error) {
	label, desc, ok := m.bestLabel(clause, obs)
	if !ok {
		// Nothing observed about this clause. Absence of the item is the
		// ready state for "no X" style clauses, and for "X present" style
		// clauses the adapter reports what it sees; an unreported item is
		// treated as clear rather than inventing a problem.
		return model.ItemVerdict{
			Label: clause.Label,
			State: model.ItemClear,
			Note:  "not seen in this check",
		}, nil
	}

	state := model.ItemOutOfPlace
	if m.descriptionClear(clause, desc) {
		state = model.ItemClear
	}

	return model.ItemVerdict{
		Label: label,
		State: state,
		Note:  desc,
	}, nil
}

// bestLabel finds the observation label with the highest token overlap
// against the clause. Ties go to the lexically smaller label so results do
// not depend on map iteration order.
func (m *TokenMatcher) bestLabel(clause Clause, obs *model.Observation) (label, desc string, ok bool) {
	clauseTokens := tokenSet(clause.Text)

	bestScore := 0
	for l, d := range obs.Labels {
		score := overlap(clauseTokens, tokenSet(Normalize(l)))
		if score > bestScore || (score == bestScore && score > 0 && l < label) {
			bestScore = score
			label, desc, ok = Normalize(l), d, true
		}
	}
	if bestScore == 0 {
		return "", "", false
	}
	return label, desc, ok
}

// descriptionClear decides whether a state description satisfies the clause.
// A description is clear when it uses a ready-state word, or when it repeats
// the clause's own expectation (definition "sink empty", description
// "empty").
func (m *TokenMatcher) descriptionClear(clause Clause, desc string) bool {
	descTokens := tokenSet(Normalize(desc))

	for tok := range descTokens {
		if clearWords[tok] {
			return true
		}
	}

	// Expectation tokens are the clause tokens past the item label.
	labelTokens := tokenSet(clause.Label)
	for tok := range tokenSet(clause.Text) {
		if labelTokens[tok] {
			continue
		}
		if descTokens[tok] {
			return true
		}
	}

	return false
}

// clearWords are descriptions that signal the ready state on their own.
var clearWords = map[string]bool{
	"clear": true, "clean": true, "empty": true, "tidy": true, "neat": true,
	"made": true, "folded": true, "hung": true, "stowed": true,
	"ok": true, "good": true, "fine": true, "none": true, "ready": true,
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		tok = strings.Trim(tok, ".,;:!()")
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}

func overlap(a, b map[string]bool) int {
	n := 0
	for tok := range a {
		if b[tok] {
			n++
		}
	}
	return n
}
