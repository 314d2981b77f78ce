package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/kozzzzzzy/twin-sync-addon/internal/readiness"
	"github.com/kozzzzzzy/twin-sync-addon/internal/service"
	"github.com/kozzzzzzy/twin-sync-addon/internal/storage"
)

func testStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedSpot(t *testing.T, store *storage.SQLiteStorage, name string) *model.Spot {
	t.Helper()
	spot, err := store.CreateSpot(context.Background(), &model.Spot{
		Name:         name,
		CameraEntity: "camera." + name,
		Definition:   "- counter clear of dishes\n- sink empty",
		Voice:        model.VoiceSupportive,
	})
	require.NoError(t, err)
	return spot
}

func testEngine(store service.Storage, mock *MockVisionClient, now *time.Time) *SpotEngine {
	eng := NewWithConfig(store, mock, readiness.NewEvaluator(readiness.NewTokenMatcher()), Config{
		Location:            time.UTC,
		ObservationTimeout:  5 * time.Second,
		MaxConcurrentChecks: 2,
	})
	eng.clock = func() time.Time { return *now }
	return eng
}

func mugObservation() map[string]string {
	return map[string]string{
		"counter": "a mug sitting out",
		"sink":    "empty",
	}
}

func sortedObservation() map[string]string {
	return map[string]string{
		"counter": "clear",
		"sink":    "empty",
	}
}

func TestRunCheckPersistsRecordAndUpdatesSpot(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "kitchen")

	mock := NewMockVisionClient().Script(mugObservation(), model.CheckNotes{Main: "one mug out"})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	eng := testEngine(store, mock, &now)

	result, err := eng.RunCheck(ctx, spot.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusNeedsAttention, result.Status)
	assert.True(t, result.Eligible)
	assert.Contains(t, result.Report, "kitchen")
	require.Len(t, result.Items, 2)

	checks, err := store.GetChecks(ctx, spot.ID, service.CheckFilter{})
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.True(t, checks[0].Eligible)
	assert.Equal(t, model.StatusNeedsAttention, checks[0].Status)
	assert.Equal(t, "one mug out", checks[0].Notes.Main)

	updated, err := store.GetSpot(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNeedsAttention, updated.Status)
	require.NotNil(t, updated.LastCheck)
	assert.True(t, updated.LastCheck.Equal(now))

	stats, err := store.GetRecurrenceStats(ctx, spot.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2, "every observed label gets a stat row")
	assert.Equal(t, "counter", stats[0].Label)
	assert.Equal(t, 1, stats[0].Occurrences)
	assert.Equal(t, "sink", stats[1].Label)
	assert.Equal(t, 0, stats[1].Occurrences)
}

func TestRunCheckStreakAcrossDays(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	mock := NewMockVisionClient()
	for i := 0; i < 5; i++ {
		mock.Script(sortedObservation(), model.CheckNotes{})
	}
	mock.Script(mugObservation(), model.CheckNotes{})

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	eng := testEngine(store, mock, &now)

	for day := 0; day < 5; day++ {
		now = time.Date(2026, 3, 1+day, 9, 0, 0, 0, time.UTC)
		result, err := eng.RunCheck(ctx, spot.ID)
		require.NoError(t, err)
		assert.Equal(t, day+1, result.CurrentStreak)
	}

	now = time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)
	result, err := eng.RunCheck(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, 5, result.BestStreak)
}

func TestRunCheckSameDayCountsOnce(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	mock := NewMockVisionClient().Script(sortedObservation(), model.CheckNotes{})
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	eng := testEngine(store, mock, &now)

	_, err := eng.RunCheck(ctx, spot.ID)
	require.NoError(t, err)

	now = now.Add(6 * time.Hour)
	result, err := eng.RunCheck(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak, "two sorted checks on one day count once")
}

func TestRunCheckSnoozedRecordIsIneligible(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.PutSnooze(ctx, &model.SnoozeWindow{SpotID: spot.ID, Until: now.Add(time.Hour)}))

	mock := NewMockVisionClient().Script(mugObservation(), model.CheckNotes{})
	eng := testEngine(store, mock, &now)

	result, err := eng.RunCheck(ctx, spot.ID)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, model.StatusNeedsAttention, result.Status)

	checks, err := store.GetChecks(ctx, spot.ID, service.CheckFilter{})
	require.NoError(t, err)
	require.Len(t, checks, 1, "the record is persisted for the audit trail")
	assert.False(t, checks[0].Eligible)

	stats, err := store.GetRecurrenceStats(ctx, spot.ID)
	require.NoError(t, err)
	assert.Empty(t, stats, "snoozed checks never feed recurrence")

	streak, err := store.GetStreak(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, streak.Current)
}

func TestSnoozeUnsnoozeWithoutChecksIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	before, err := store.GetStreak(ctx, spot.ID)
	require.NoError(t, err)
	statsBefore, err := store.GetRecurrenceStats(ctx, spot.ID)
	require.NoError(t, err)

	mgr := NewSnoozeManager(store)
	_, err = mgr.Snooze(ctx, spot.ID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, mgr.Unsnooze(ctx, spot.ID))

	after, err := store.GetStreak(ctx, spot.ID)
	require.NoError(t, err)
	statsAfter, err := store.GetRecurrenceStats(ctx, spot.ID)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, statsBefore, statsAfter)
}

func TestRunCheckVisionFailureLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	mock := NewMockVisionClient()
	mock.Fail(errors.New("camera offline"))
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	eng := testEngine(store, mock, &now)

	_, err := eng.RunCheck(ctx, spot.ID)
	require.Error(t, err)

	checks, err := store.GetChecks(ctx, spot.ID, service.CheckFilter{})
	require.NoError(t, err)
	assert.Empty(t, checks)

	updated, err := store.GetSpot(ctx, spot.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.LastCheck)
}

func TestRunCheckEmptyObservationIsEvaluationError(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	mock := NewMockVisionClient().Script(map[string]string{}, model.CheckNotes{})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	eng := testEngine(store, mock, &now)

	_, err := eng.RunCheck(ctx, spot.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEvaluation)

	checks, err := store.GetChecks(ctx, spot.ID, service.CheckFilter{})
	require.NoError(t, err)
	assert.Empty(t, checks, "a failed evaluation persists nothing")
}

func TestRunCheckAnnotatesRecurringItems(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "kitchen")

	mock := NewMockVisionClient().Script(mugObservation(), model.CheckNotes{})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	eng := testEngine(store, mock, &now)

	var result *model.CheckResult
	var err error
	for day := 0; day < 4; day++ {
		now = time.Date(2026, 3, 1+day, 9, 0, 0, 0, time.UTC)
		result, err = eng.RunCheck(ctx, spot.ID)
		require.NoError(t, err)
	}

	var counter *model.ItemVerdict
	for i := range result.Items {
		if result.Items[i].Label == "counter" {
			counter = &result.Items[i]
		}
	}
	require.NotNil(t, counter)
	assert.True(t, counter.Recurring)
	assert.Equal(t, 4, counter.RecurringCount)
}

func TestRunCheckClearsExpiredSnooze(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.PutSnooze(ctx, &model.SnoozeWindow{SpotID: spot.ID, Until: now.Add(-time.Minute)}))

	mock := NewMockVisionClient().Script(sortedObservation(), model.CheckNotes{})
	eng := testEngine(store, mock, &now)

	result, err := eng.RunCheck(ctx, spot.ID)
	require.NoError(t, err)
	assert.True(t, result.Eligible, "an expired window does not suppress the check")

	window, err := store.GetSnooze(ctx, spot.ID)
	require.NoError(t, err)
	assert.Nil(t, window, "the expired window is cleared on the way through")
}

func TestCheckAllSkipsSnoozedAndIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	kitchen := seedSpot(t, store, "kitchen")
	desk := seedSpot(t, store, "desk")
	hall := seedSpot(t, store, "hall")

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.PutSnooze(ctx, &model.SnoozeWindow{SpotID: hall.ID, Until: now.Add(time.Hour)}))

	mock := NewMockVisionClient().Script(sortedObservation(), model.CheckNotes{})
	eng := testEngine(store, mock, &now)

	outcomes, err := eng.CheckAll(ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	byID := make(map[int64]SpotOutcome)
	for _, o := range outcomes {
		byID[o.SpotID] = o
	}
	assert.True(t, byID[hall.ID].Skipped)
	require.NotNil(t, byID[kitchen.ID].Result)
	require.NotNil(t, byID[desk.ID].Result)
	assert.Equal(t, model.StatusSorted, byID[kitchen.ID].Result.Status)
}

func TestCheckAllOneFailureDoesNotAbortOthers(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	seedSpot(t, store, "kitchen")

	mock := NewMockVisionClient()
	mock.Fail(errors.New("camera offline"))
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	eng := testEngine(store, mock, &now)

	outcomes, err := eng.CheckAll(ctx)
	require.NoError(t, err, "spot failures surface per outcome, not as run errors")
	require.Len(t, outcomes, 1)
	assert.Error(t, outcomes[0].Err)
}

func TestResetStreak(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	mock := NewMockVisionClient().Script(sortedObservation(), model.CheckNotes{})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	eng := testEngine(store, mock, &now)

	for day := 0; day < 3; day++ {
		now = time.Date(2026, 3, 1+day, 9, 0, 0, 0, time.UTC)
		_, err := eng.RunCheck(ctx, spot.ID)
		require.NoError(t, err)
	}

	state, err := eng.ResetStreak(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Current)
	assert.Equal(t, 3, state.Best)
	assert.Equal(t, 1, state.TotalResets)

	stored, err := store.GetStreak(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Current)
	assert.Equal(t, 3, stored.Best)
}
