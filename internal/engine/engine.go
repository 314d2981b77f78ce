// Package engine orchestrates spot checks: observe, judge readiness, fold
// the result into memory and streak state, and compose the report. All
// state changes for one check commit atomically or not at all.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
	"github.com/kozzzzzzy/twin-sync-addon/internal/memory"
	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/kozzzzzzy/twin-sync-addon/internal/readiness"
	"github.com/kozzzzzzy/twin-sync-addon/internal/report"
	"github.com/kozzzzzzy/twin-sync-addon/internal/service"
	"github.com/kozzzzzzy/twin-sync-addon/internal/vision"
)

// SpotEngine runs checks against spots. Checks for different spots may run
// concurrently; checks for the same spot are serialized by a per-spot lock.
type SpotEngine struct {
	storage    service.Storage
	vision     vision.Client
	evaluator  *readiness.Evaluator
	recurrence *memory.Recurrence
	composer   *report.Composer
	tracker    *StreakTracker
	notifier   service.Notifier
	clock      func() time.Time
	locks      map[int64]*sync.Mutex
	mu         sync.Mutex
	config     Config
}

// Config holds configuration options for the spot engine.
type Config struct {
	// Location sets the calendar-day boundary for streak accounting.
	Location *time.Location
	// ObservationTimeout bounds one vision call, end to end.
	ObservationTimeout time.Duration
	// MaxConcurrentChecks caps the fan-out of CheckAll.
	MaxConcurrentChecks int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Location:            time.Local,
		ObservationTimeout:  90 * time.Second,
		MaxConcurrentChecks: 3,
	}
}

// New creates a spot engine with the default configuration and a
// log-backed notifier.
func New(storage service.Storage, visionClient vision.Client, evaluator *readiness.Evaluator) *SpotEngine {
	return NewWithConfig(storage, visionClient, evaluator, DefaultConfig())
}

// NewWithConfig creates a spot engine with custom configuration.
func NewWithConfig(storage service.Storage, visionClient vision.Client, evaluator *readiness.Evaluator, config Config) *SpotEngine {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.ObservationTimeout <= 0 {
		config.ObservationTimeout = 90 * time.Second
	}
	if config.MaxConcurrentChecks <= 0 {
		config.MaxConcurrentChecks = 1
	}
	return &SpotEngine{
		storage:    storage,
		vision:     visionClient,
		evaluator:  evaluator,
		recurrence: memory.New(),
		composer:   report.NewComposer(),
		tracker:    NewStreakTracker(config.Location),
		notifier:   NewLogNotifier(),
		clock:      time.Now,
		locks:      make(map[int64]*sync.Mutex),
		config:     config,
	}
}

// SetNotifier replaces the engine's notifier. Pass nil to silence events.
func (e *SpotEngine) SetNotifier(n service.Notifier) {
	e.notifier = n
}

// RunCheck performs one complete check of a spot. The vision call happens
// outside the per-spot lock with a bounded timeout; everything that touches
// state runs inside the lock and inside one transaction. On any error after
// observation, no record is persisted and no counters move.
func (e *SpotEngine) RunCheck(ctx context.Context, spotID int64) (*model.CheckResult, error) {
	spot, err := e.storage.GetSpot(ctx, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load spot %d: %w", spotID, err)
	}

	memoryContext, err := e.buildMemoryContext(ctx, spotID)
	if err != nil {
		return nil, err
	}

	slog.Info("Checking spot", "spot", spot.Name, "camera", spot.CameraEntity)

	obsCtx, cancel := context.WithTimeout(ctx, e.config.ObservationTimeout)
	observed, err := e.vision.Observe(obsCtx, vision.ObservationRequest{
		SpotName:          spot.Name,
		CameraEntity:      spot.CameraEntity,
		Definition:        spot.Definition,
		CustomVoicePrompt: spot.CustomVoicePrompt,
		MemoryContext:     memoryContext,
		Voice:             spot.Voice,
	})
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: spot %q", common.ErrObservationTimeout, spot.Name)
		}
		return nil, err
	}

	lock := e.lockFor(spotID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("Failed to roll back check transaction", "spot_id", spotID, "error", rbErr)
			}
		}
	}()

	now := e.clock()

	snooze, err := tx.GetSnooze(ctx, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to read snooze: %w", err)
	}
	eligible := !snooze.Active(now)
	if snooze != nil && eligible {
		// Window expired; clear it so later reads see a clean slate.
		if err := tx.ClearSnooze(ctx, spotID); err != nil {
			return nil, fmt.Errorf("failed to clear expired snooze: %w", err)
		}
	}

	evaluation, err := e.evaluator.Evaluate(ctx, spot.Definition, observed.Observation)
	if err != nil {
		return nil, err
	}

	record := &model.CheckRecord{
		SpotID:          spotID,
		Timestamp:       now,
		Status:          evaluation.Status,
		Verdicts:        evaluation.Verdicts,
		Eligible:        eligible,
		Notes:           observed.Notes,
		ObservationRef:  observed.Observation.SourceRef,
		APIResponseTime: observed.ResponseTime,
	}

	streak, err := tx.GetStreak(ctx, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to read streak: %w", err)
	}

	if eligible {
		history, histErr := tx.GetChecks(ctx, spotID, service.CheckFilter{EligibleOnly: true})
		if histErr != nil {
			return nil, fmt.Errorf("failed to read check history: %w", histErr)
		}
		stats := e.recurrence.Apply(history, record)
		record.Verdicts = e.recurrence.Annotate(evaluation.Verdicts, stats)
		if err := tx.PutRecurrenceStats(ctx, spotID, stats); err != nil {
			return nil, fmt.Errorf("failed to store recurrence stats: %w", err)
		}
		e.tracker.Apply(streak, record)
		if err := tx.PutStreak(ctx, streak); err != nil {
			return nil, fmt.Errorf("failed to store streak: %w", err)
		}
	} else {
		// Snoozed: the record is kept for the audit trail, but counters
		// stay put. Annotate against existing stats for display only.
		stats, statsErr := tx.GetRecurrenceStats(ctx, spotID)
		if statsErr != nil {
			return nil, fmt.Errorf("failed to read recurrence stats: %w", statsErr)
		}
		record.Verdicts = e.recurrence.Annotate(evaluation.Verdicts, stats)
	}

	if _, err := tx.AppendCheck(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to append check record: %w", err)
	}

	spot.Status = record.Status
	spot.LastCheck = &now
	if err := tx.UpdateSpot(ctx, spot); err != nil {
		return nil, fmt.Errorf("failed to update spot: %w", err)
	}

	rendered := e.composer.Compose(report.Input{
		SpotName:       spot.Name,
		Voice:          spot.Voice,
		CustomTemplate: spot.CustomVoicePrompt,
		Verdicts:       record.Verdicts,
		Status:         record.Status,
		Notes:          record.Notes,
		Streak:         *streak,
	})

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit check: %w", err)
	}
	committed = true

	if e.notifier != nil {
		e.notifier.CheckCompleted(ctx, service.CheckCompletedEvent{
			Timestamp: now,
			Status:    record.Status,
			Report:    rendered,
			SpotID:    spotID,
			Eligible:  eligible,
		})
	}

	return &model.CheckResult{
		Status:        record.Status,
		Report:        rendered,
		Items:         record.Verdicts,
		CurrentStreak: streak.Current,
		BestStreak:    streak.Best,
		Eligible:      eligible,
		SpotID:        spotID,
	}, nil
}

// SpotOutcome is one spot's result from a CheckAll run.
type SpotOutcome struct {
	Err      error
	Result   *model.CheckResult
	SpotName string
	SpotID   int64
	Skipped  bool
}

// CheckAll runs a check for every spot. Actively snoozed spots are skipped
// without spending an observation. One spot failing never aborts the
// others; each outcome carries its own error.
func (e *SpotEngine) CheckAll(ctx context.Context) ([]SpotOutcome, error) {
	spots, err := e.storage.GetAllSpots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load spots: %w", err)
	}

	slog.Info("Checking all spots", "count", len(spots))

	outcomes := make([]SpotOutcome, len(spots))
	var g errgroup.Group
	g.SetLimit(e.config.MaxConcurrentChecks)

	for i, spot := range spots {
		i, spot := i, spot
		g.Go(func() error {
			outcomes[i] = SpotOutcome{SpotID: spot.ID, SpotName: spot.Name}

			snooze, snErr := e.storage.GetSnooze(ctx, spot.ID)
			if snErr == nil && snooze.Active(e.clock()) {
				outcomes[i].Skipped = true
				return nil
			}

			result, runErr := e.RunCheck(ctx, spot.ID)
			if runErr != nil {
				slog.Error("Spot check failed", "spot", spot.Name, "error", runErr)
				outcomes[i].Err = runErr
				return nil
			}
			outcomes[i].Result = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// ResetStreak zeroes a spot's current streak. Best survives as the
// lifetime record; the reset itself is counted.
func (e *SpotEngine) ResetStreak(ctx context.Context, spotID int64) (*model.StreakState, error) {
	if _, err := e.storage.GetSpot(ctx, spotID); err != nil {
		return nil, fmt.Errorf("failed to load spot %d: %w", spotID, err)
	}

	lock := e.lockFor(spotID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	streak, err := tx.GetStreak(ctx, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to read streak: %w", err)
	}
	e.tracker.Reset(streak)
	if err := tx.PutStreak(ctx, streak); err != nil {
		return nil, fmt.Errorf("failed to store streak: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit streak reset: %w", err)
	}
	committed = true

	return streak, nil
}

// Insights derives longer-term patterns from a spot's full history.
func (e *SpotEngine) Insights(ctx context.Context, spotID int64) (model.SpotInsights, error) {
	records, err := e.storage.GetChecks(ctx, spotID, service.CheckFilter{})
	if err != nil {
		return model.SpotInsights{}, fmt.Errorf("failed to read check history: %w", err)
	}
	return memory.Insights(records, e.config.Location), nil
}

func (e *SpotEngine) lockFor(spotID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[spotID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[spotID] = lock
	}
	return lock
}

// buildMemoryContext summarizes a spot's history for the vision prompt:
// recurring items, the running streak, and habit patterns. Empty history
// yields an empty string; the client substitutes a first-check note.
func (e *SpotEngine) buildMemoryContext(ctx context.Context, spotID int64) (string, error) {
	stats, err := e.storage.GetRecurrenceStats(ctx, spotID)
	if err != nil {
		return "", fmt.Errorf("failed to read recurrence stats: %w", err)
	}
	streak, err := e.storage.GetStreak(ctx, spotID)
	if err != nil {
		return "", fmt.Errorf("failed to read streak: %w", err)
	}
	records, err := e.storage.GetChecks(ctx, spotID, service.CheckFilter{})
	if err != nil {
		return "", fmt.Errorf("failed to read check history: %w", err)
	}
	insights := memory.Insights(records, e.config.Location)

	var lines []string
	for i := range stats {
		if e.recurrence.Recurring(&stats[i]) {
			lines = append(lines, fmt.Sprintf("Recurring item: %s (out of place in %d of last %d checks)",
				stats[i].Label, stats[i].Occurrences, stats[i].EligibleChecks))
		}
	}
	if streak.Current > 0 {
		lines = append(lines, fmt.Sprintf("Current streak: %d sorted days (best: %d)", streak.Current, streak.Best))
	} else if streak.Best > 0 {
		lines = append(lines, fmt.Sprintf("Best streak so far: %d sorted days", streak.Best))
	}
	if insights.WorstDay != "" {
		lines = append(lines, fmt.Sprintf("Toughest day historically: %s", insights.WorstDay))
	}
	if insights.UsuallySortedBy != "" {
		lines = append(lines, fmt.Sprintf("Usually sorted by %s", insights.UsuallySortedBy))
	}
	return strings.Join(lines, "\n"), nil
}
