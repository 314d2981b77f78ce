package storage

import (
	"context"
	"testing"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/kozzzzzzy/twin-sync-addon/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	db, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testSpot(t *testing.T, db *SQLiteStorage) *model.Spot {
	t.Helper()
	spot, err := db.CreateSpot(context.Background(), &model.Spot{
		Name:         "Kitchen",
		CameraEntity: "camera.kitchen",
		Definition:   "- counter clear\n- sink empty",
		Type:         model.SpotKitchen,
		Voice:        model.VoiceSupportive,
	})
	require.NoError(t, err)
	return spot
}

func TestSQLiteStorage_SpotCRUD(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()

	spot := testSpot(t, db)
	assert.NotZero(t, spot.ID)
	assert.Equal(t, model.StatusUnknown, spot.Status)
	assert.False(t, spot.CreatedAt.IsZero())

	got, err := db.GetSpot(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", got.Name)
	assert.Equal(t, model.SpotKitchen, got.Type)

	byName, err := db.GetSpotByName(ctx, "Kitchen")
	require.NoError(t, err)
	assert.Equal(t, spot.ID, byName.ID)

	got.Definition = "- counter clear"
	got.Voice = model.VoiceDirect
	now := time.Now()
	got.LastCheck = &now
	got.Status = model.StatusSorted
	require.NoError(t, db.UpdateSpot(ctx, got))

	updated, err := db.GetSpot(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, "- counter clear", updated.Definition)
	assert.Equal(t, model.VoiceDirect, updated.Voice)
	assert.Equal(t, model.StatusSorted, updated.Status)
	require.NotNil(t, updated.LastCheck)

	all, err := db.GetAllSpots(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, db.DeleteSpot(ctx, spot.ID))
	_, err = db.GetSpot(ctx, spot.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_GetSpotNotFound(t *testing.T) {
	db := testStorage(t)

	_, err := db.GetSpot(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = db.UpdateSpot(context.Background(), &model.Spot{ID: 999, Name: "x", CameraEntity: "camera.x"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = db.DeleteSpot(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_CreateSpotValidation(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()

	_, err := db.CreateSpot(ctx, nil)
	assert.Error(t, err)

	_, err = db.CreateSpot(ctx, &model.Spot{CameraEntity: "camera.x"})
	assert.ErrorIs(t, err, ErrInvalidSpot)

	_, err = db.CreateSpot(ctx, &model.Spot{Name: "x", CameraEntity: "camera.x", Voice: "sarcastic"})
	assert.ErrorIs(t, err, ErrInvalidSpot)
}

func TestSQLiteStorage_ChecksAppendOnly(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()
	spot := testSpot(t, db)

	record := &model.CheckRecord{
		SpotID:    spot.ID,
		Timestamp: time.Now().Truncate(time.Second),
		Status:    model.StatusNeedsAttention,
		Eligible:  true,
		Verdicts: []model.ItemVerdict{
			{Label: "counter", State: model.ItemOutOfPlace, Note: "mug present"},
			{Label: "sink", State: model.ItemClear},
		},
		Notes:           model.CheckNotes{Main: "One mug out."},
		APIResponseTime: 1200 * time.Millisecond,
	}

	inserted, err := db.AppendCheck(ctx, record)
	require.NoError(t, err)
	assert.NotZero(t, inserted.ID)

	// A record that already has an id cannot be appended again.
	_, err = db.AppendCheck(ctx, inserted)
	assert.ErrorIs(t, err, ErrRecordImmutable)

	checks, err := db.GetChecks(ctx, spot.ID, service.CheckFilter{})
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, record.Verdicts, checks[0].Verdicts)
	assert.Equal(t, "One mug out.", checks[0].Notes.Main)
	assert.Equal(t, 1200*time.Millisecond, checks[0].APIResponseTime)
	assert.True(t, checks[0].Eligible)
}

func TestSQLiteStorage_GetChecksFilter(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()
	spot := testSpot(t, db)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := db.AppendCheck(ctx, &model.CheckRecord{
			SpotID:    spot.ID,
			Timestamp: base.AddDate(0, 0, i),
			Status:    model.StatusSorted,
			Eligible:  i%2 == 0,
		})
		require.NoError(t, err)
	}

	eligible, err := db.GetChecks(ctx, spot.ID, service.CheckFilter{EligibleOnly: true})
	require.NoError(t, err)
	assert.Len(t, eligible, 3)

	since := base.AddDate(0, 0, 3)
	recent, err := db.GetChecks(ctx, spot.ID, service.CheckFilter{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	limited, err := db.GetChecks(ctx, spot.ID, service.CheckFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.True(t, limited[0].Timestamp.Before(limited[1].Timestamp), "oldest first")
}

func TestSQLiteStorage_RecurrenceStatsRoundTrip(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()
	spot := testSpot(t, db)

	stats := []model.RecurrenceStat{
		{SpotID: spot.ID, Label: "counter", Occurrences: 4, EligibleChecks: 5, LastSeen: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)},
		{SpotID: spot.ID, Label: "papers", Occurrences: 1, EligibleChecks: 3},
	}
	require.NoError(t, db.PutRecurrenceStats(ctx, spot.ID, stats))

	got, err := db.GetRecurrenceStats(ctx, spot.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "counter", got[0].Label)
	assert.Equal(t, 4, got[0].Occurrences)
	assert.True(t, got[0].LastSeen.Equal(stats[0].LastSeen))
	assert.True(t, got[1].LastSeen.IsZero())

	// Put replaces wholesale.
	require.NoError(t, db.PutRecurrenceStats(ctx, spot.ID, stats[:1]))
	got, err = db.GetRecurrenceStats(ctx, spot.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteStorage_StreakUpsert(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()
	spot := testSpot(t, db)

	// Unstored streak reads as zero state.
	state, err := db.GetStreak(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, &model.StreakState{SpotID: spot.ID}, state)

	state.Current = 3
	state.Best = 5
	state.LastDate = "2026-03-05"
	state.LastStatus = model.StatusSorted
	require.NoError(t, db.PutStreak(ctx, state))

	got, err := db.GetStreak(ctx, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, state, got)

	// Invariant is enforced at the storage boundary too.
	err = db.PutStreak(ctx, &model.StreakState{SpotID: spot.ID, Current: 6, Best: 5})
	assert.ErrorIs(t, err, ErrInvalidStreak)
}

func TestSQLiteStorage_SnoozeLifecycle(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()
	spot := testSpot(t, db)

	window, err := db.GetSnooze(ctx, spot.ID)
	require.NoError(t, err)
	assert.Nil(t, window)

	until := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	require.NoError(t, db.PutSnooze(ctx, &model.SnoozeWindow{SpotID: spot.ID, Until: until}))

	window, err = db.GetSnooze(ctx, spot.ID)
	require.NoError(t, err)
	require.NotNil(t, window)
	assert.True(t, window.Until.Equal(until))

	// Overwrite, no stacking.
	later := until.Add(time.Hour)
	require.NoError(t, db.PutSnooze(ctx, &model.SnoozeWindow{SpotID: spot.ID, Until: later}))
	window, err = db.GetSnooze(ctx, spot.ID)
	require.NoError(t, err)
	assert.True(t, window.Until.Equal(later))

	require.NoError(t, db.ClearSnooze(ctx, spot.ID))
	window, err = db.GetSnooze(ctx, spot.ID)
	require.NoError(t, err)
	assert.Nil(t, window)

	// Clearing twice is fine.
	require.NoError(t, db.ClearSnooze(ctx, spot.ID))
}

func TestSQLiteStorage_DeleteSpotCascades(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()
	spot := testSpot(t, db)

	_, err := db.AppendCheck(ctx, &model.CheckRecord{
		SpotID: spot.ID, Timestamp: time.Now(), Status: model.StatusSorted, Eligible: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.PutRecurrenceStats(ctx, spot.ID, []model.RecurrenceStat{{SpotID: spot.ID, Label: "mug", Occurrences: 1, EligibleChecks: 1}}))
	require.NoError(t, db.PutStreak(ctx, &model.StreakState{SpotID: spot.ID, Current: 1, Best: 1}))
	require.NoError(t, db.PutSnooze(ctx, &model.SnoozeWindow{SpotID: spot.ID, Until: time.Now().Add(time.Hour)}))

	require.NoError(t, db.DeleteSpot(ctx, spot.ID))

	checks, err := db.GetChecks(ctx, spot.ID, service.CheckFilter{})
	require.NoError(t, err)
	assert.Empty(t, checks)

	stats, err := db.GetRecurrenceStats(ctx, spot.ID)
	require.NoError(t, err)
	assert.Empty(t, stats)

	streak, err := db.GetStreak(ctx, spot.ID)
	require.NoError(t, err)
	assert.Zero(t, streak.Current)

	window, err := db.GetSnooze(ctx, spot.ID)
	require.NoError(t, err)
	assert.Nil(t, window)
}

func TestSQLiteStorage_TransactionRollback(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()
	spot := testSpot(t, db)

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.AppendCheck(ctx, &model.CheckRecord{
		SpotID: spot.ID, Timestamp: time.Now(), Status: model.StatusSorted, Eligible: true,
	})
	require.NoError(t, err)
	require.NoError(t, tx.PutStreak(ctx, &model.StreakState{SpotID: spot.ID, Current: 1, Best: 1}))

	require.NoError(t, tx.Rollback())

	checks, err := db.GetChecks(ctx, spot.ID, service.CheckFilter{})
	require.NoError(t, err)
	assert.Empty(t, checks, "rolled back check must not persist")

	streak, err := db.GetStreak(ctx, spot.ID)
	require.NoError(t, err)
	assert.Zero(t, streak.Current, "rolled back streak must not persist")
}

func TestSQLiteStorage_TransactionCommit(t *testing.T) {
	db := testStorage(t)
	ctx := context.Background()
	spot := testSpot(t, db)

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.AppendCheck(ctx, &model.CheckRecord{
		SpotID: spot.ID, Timestamp: time.Now(), Status: model.StatusSorted, Eligible: true,
	})
	require.NoError(t, err)
	require.NoError(t, tx.PutStreak(ctx, &model.StreakState{SpotID: spot.ID, Current: 1, Best: 1}))
	require.NoError(t, tx.Commit())

	checks, err := db.GetChecks(ctx, spot.ID, service.CheckFilter{})
	require.NoError(t, err)
	assert.Len(t, checks, 1)
}

func TestSQLiteStorage_MigrateIdempotent(t *testing.T) {
	db := testStorage(t)
	require.NoError(t, db.Migrate(context.Background()))
	require.NoError(t, db.Migrate(context.Background()))
}
