package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/kozzzzzzy/twin-sync-addon/internal/service"
)

// SnoozeManager manipulates per-spot snooze windows. A snoozed spot can
// still be checked; the resulting records are flagged ineligible and stay
// out of streak and recurrence accounting.
type SnoozeManager struct {
	storage service.Storage
	clock   func() time.Time
}

// NewSnoozeManager creates a snooze manager backed by the given storage.
func NewSnoozeManager(storage service.Storage) *SnoozeManager {
	return &SnoozeManager{storage: storage, clock: time.Now}
}

// Snooze suppresses accounting for the spot for the given duration,
// replacing any existing window.
func (m *SnoozeManager) Snooze(ctx context.Context, spotID int64, d time.Duration) (*model.SnoozeWindow, error) {
	if d <= 0 {
		return nil, fmt.Errorf("snooze duration must be positive, got %s", d)
	}
	window := &model.SnoozeWindow{
		SpotID: spotID,
		Until:  m.clock().Add(d),
	}
	if err := m.storage.PutSnooze(ctx, window); err != nil {
		return nil, fmt.Errorf("failed to snooze spot %d: %w", spotID, err)
	}
	return window, nil
}

// Unsnooze removes the spot's snooze window. Removing a window that does
// not exist is a no-op.
func (m *SnoozeManager) Unsnooze(ctx context.Context, spotID int64) error {
	if err := m.storage.ClearSnooze(ctx, spotID); err != nil {
		return fmt.Errorf("failed to unsnooze spot %d: %w", spotID, err)
	}
	return nil
}

// Active returns the spot's snooze window when it is currently in effect.
// Expired windows report inactive; there is no timer, expiry is lazy.
func (m *SnoozeManager) Active(ctx context.Context, spotID int64) (*model.SnoozeWindow, error) {
	window, err := m.storage.GetSnooze(ctx, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to read snooze for spot %d: %w", spotID, err)
	}
	if !window.Active(m.clock()) {
		return nil, nil
	}
	return window, nil
}
