// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// CheckFilter defines filtering options for check history queries.
type CheckFilter struct {
	Since        *time.Time
	Limit        int
	EligibleOnly bool
}

// Storage defines the contract for our persistence layer. The engine never
// assumes a specific storage technology; it only requires atomic
// read-modify-write per spot-scoped key, which BeginTx provides.
type Storage interface {
	// Spot operations
	CreateSpot(ctx context.Context, spot *model.Spot) (*model.Spot, error)
	GetSpot(ctx context.Context, id int64) (*model.Spot, error)
	GetSpotByName(ctx context.Context, name string) (*model.Spot, error)
	GetAllSpots(ctx context.Context) ([]model.Spot, error)
	UpdateSpot(ctx context.Context, spot *model.Spot) error
	// DeleteSpot cascades: checks, recurrence stats, streak state and any
	// snooze window go with the spot.
	DeleteSpot(ctx context.Context, id int64) error

	// Check history: append-only
	AppendCheck(ctx context.Context, record *model.CheckRecord) (*model.CheckRecord, error)
	GetChecks(ctx context.Context, spotID int64, filter CheckFilter) ([]model.CheckRecord, error)

	// Recurrence stats
	GetRecurrenceStats(ctx context.Context, spotID int64) ([]model.RecurrenceStat, error)
	PutRecurrenceStats(ctx context.Context, spotID int64, stats []model.RecurrenceStat) error

	// Streak state
	GetStreak(ctx context.Context, spotID int64) (*model.StreakState, error)
	PutStreak(ctx context.Context, state *model.StreakState) error

	// Snooze window
	GetSnooze(ctx context.Context, spotID int64) (*model.SnoozeWindow, error)
	PutSnooze(ctx context.Context, window *model.SnoozeWindow) error
	ClearSnooze(ctx context.Context, spotID int64) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a storage transaction. All Storage methods invoked
// through it either commit together or leave no trace.
type Transaction interface {
	Commit() error
	Rollback() error
	Storage
}

// CheckCompletedEvent is emitted after every engine run, successful or not.
type CheckCompletedEvent struct {
	Timestamp time.Time
	Status    model.SpotStatus
	Report    string
	SpotID    int64
	Eligible  bool
}

// Notifier receives engine events. Transport is the caller's concern.
type Notifier interface {
	CheckCompleted(ctx context.Context, event CheckCompletedEvent)
}
