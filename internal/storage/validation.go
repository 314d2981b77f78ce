package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidSpot     = errors.New("invalid spot")
	ErrInvalidRecord   = errors.New("invalid check record")
	ErrInvalidStreak   = errors.New("invalid streak state")
	ErrInvalidSnooze   = errors.New("invalid snooze window")
	ErrRecordImmutable = errors.New("check records are append-only")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateSpot(spot *model.Spot) error {
	if spot == nil {
		return fmt.Errorf("%w: spot", ErrNilParameter)
	}
	if strings.TrimSpace(spot.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSpot)
	}
	if strings.TrimSpace(spot.CameraEntity) == "" {
		return fmt.Errorf("%w: camera entity is required", ErrInvalidSpot)
	}
	if spot.Voice != "" && !spot.Voice.Valid() {
		return fmt.Errorf("%w: unknown voice %q", ErrInvalidSpot, spot.Voice)
	}
	if spot.Type != "" && !spot.Type.Valid() {
		return fmt.Errorf("%w: unknown spot type %q", ErrInvalidSpot, spot.Type)
	}
	return nil
}

func validateCheckRecord(record *model.CheckRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.ID != 0 {
		return fmt.Errorf("%w: record already has id %d", ErrRecordImmutable, record.ID)
	}
	if record.SpotID == 0 {
		return fmt.Errorf("%w: spot id is required", ErrInvalidRecord)
	}
	if record.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidRecord)
	}
	switch record.Status {
	case model.StatusSorted, model.StatusNeedsAttention:
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidRecord, record.Status)
	}
	return nil
}

func validateStreak(state *model.StreakState) error {
	if state == nil {
		return fmt.Errorf("%w: streak state", ErrNilParameter)
	}
	if state.SpotID == 0 {
		return fmt.Errorf("%w: spot id is required", ErrInvalidStreak)
	}
	if state.Current < 0 || state.Best < 0 || state.DayStart < 0 {
		return fmt.Errorf("%w: negative counter", ErrInvalidStreak)
	}
	if state.Current > state.Best {
		return fmt.Errorf("%w: current %d exceeds best %d", ErrInvalidStreak, state.Current, state.Best)
	}
	return nil
}

func validateSnooze(window *model.SnoozeWindow) error {
	if window == nil {
		return fmt.Errorf("%w: snooze window", ErrNilParameter)
	}
	if window.SpotID == 0 {
		return fmt.Errorf("%w: spot id is required", ErrInvalidSnooze)
	}
	if window.Until.IsZero() {
		return fmt.Errorf("%w: until is required", ErrInvalidSnooze)
	}
	return nil
}
