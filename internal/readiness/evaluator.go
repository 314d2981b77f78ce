package readiness

import (
	"context"
	"fmt"

	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// Evaluation is the structured outcome of judging one observation against
// one definition.
type Evaluation struct {
	Status   model.SpotStatus
	Verdicts []model.ItemVerdict
}

// Evaluator turns an observation into per-clause verdicts and an overall
// status. The matching strategy is pluggable; state logic is not.
type Evaluator struct {
	strategy MatchStrategy
}

// NewEvaluator creates an evaluator with the given match strategy.
func NewEvaluator(strategy MatchStrategy) *Evaluator {
	return &Evaluator{strategy: strategy}
}

// Evaluate produces exactly one verdict per definition clause. An empty
// definition yields zero verdicts and status sorted. A missing or empty
// observation is an evaluation error: the caller must not persist a check
// for it.
func (e *Evaluator) Evaluate(ctx context.Context, definition string, obs *model.Observation) (*Evaluation, error) {
	if obs.Empty() {
		return nil, fmt.Errorf("%w: observation payload is absent or empty", common.ErrEvaluation)
	}

	clauses := ParseDefinition(definition)

	verdicts := make([]model.ItemVerdict, 0, len(clauses))
	status := model.StatusSorted

	for _, clause := range clauses {
		verdict, err := e.strategy.Match(ctx, clause, obs)
		if err != nil {
			return nil, fmt.Errorf("%w: clause %q: %v", common.ErrEvaluation, clause.Text, err)
		}
		verdict.Label = Normalize(verdict.Label)
		verdicts = append(verdicts, verdict)
		if verdict.State == model.ItemOutOfPlace {
			status = model.StatusNeedsAttention
		}
	}

	return &Evaluation{Status: status, Verdicts: verdicts}, nil
}
