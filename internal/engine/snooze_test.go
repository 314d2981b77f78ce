package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnoozeOverwritesExistingWindow(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	mgr := NewSnoozeManager(store)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mgr.clock = func() time.Time { return now }

	first, err := mgr.Snooze(ctx, spot.ID, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), first.Until)

	second, err := mgr.Snooze(ctx, spot.ID, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), second.Until)

	stored, err := store.GetSnooze(ctx, spot.ID)
	require.NoError(t, err)
	assert.True(t, second.Until.Equal(stored.Until), "later snooze replaces the earlier one")
}

func TestSnoozeRejectsNonPositiveDuration(t *testing.T) {
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	mgr := NewSnoozeManager(store)
	_, err := mgr.Snooze(context.Background(), spot.ID, 0)
	assert.Error(t, err)
	_, err = mgr.Snooze(context.Background(), spot.ID, -time.Minute)
	assert.Error(t, err)
}

func TestUnsnoozeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	mgr := NewSnoozeManager(store)
	require.NoError(t, mgr.Unsnooze(ctx, spot.ID), "unsnoozing a spot that is not snoozed succeeds")

	_, err := mgr.Snooze(ctx, spot.ID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, mgr.Unsnooze(ctx, spot.ID))
	require.NoError(t, mgr.Unsnooze(ctx, spot.ID))

	stored, err := store.GetSnooze(ctx, spot.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSnoozeActiveLazyExpiry(t *testing.T) {
	ctx := context.Background()
	store := testStorage(t)
	spot := seedSpot(t, store, "desk")

	mgr := NewSnoozeManager(store)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mgr.clock = func() time.Time { return now }

	_, err := mgr.Snooze(ctx, spot.ID, time.Hour)
	require.NoError(t, err)

	active, err := mgr.Active(ctx, spot.ID)
	require.NoError(t, err)
	assert.NotNil(t, active)

	// Move the clock past the window: no timer fires, reads just see it
	// as inactive.
	now = now.Add(2 * time.Hour)
	active, err = mgr.Active(ctx, spot.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}
