package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// GetRecurrenceStats returns a spot's recurrence stats sorted by label.
func (s *SQLiteStorage) GetRecurrenceStats(ctx context.Context, spotID int64) ([]model.RecurrenceStat, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getRecurrenceStatsTx(ctx, s.db, spotID)
}

func (s *SQLiteStorage) getRecurrenceStatsTx(ctx context.Context, q queryable, spotID int64) ([]model.RecurrenceStat, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT spot_id, label, occurrences, eligible_checks, last_seen
		FROM recurrence_stats
		WHERE spot_id = ?
		ORDER BY label
	`, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurrence stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []model.RecurrenceStat
	for rows.Next() {
		var stat model.RecurrenceStat
		var lastSeen sql.NullTime
		if err := rows.Scan(&stat.SpotID, &stat.Label, &stat.Occurrences, &stat.EligibleChecks, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan recurrence stat: %w", err)
		}
		if lastSeen.Valid {
			stat.LastSeen = lastSeen.Time
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// PutRecurrenceStats replaces a spot's recurrence stats wholesale. The
// stats are a derived view of the check history; replacing the full set
// keeps the stored state identical to a replay.
func (s *SQLiteStorage) PutRecurrenceStats(ctx context.Context, spotID int64, stats []model.RecurrenceStat) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.putRecurrenceStatsTx(ctx, s.db, spotID, stats)
}

func (s *SQLiteStorage) putRecurrenceStatsTx(ctx context.Context, q queryable, spotID int64, stats []model.RecurrenceStat) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM recurrence_stats WHERE spot_id = ?`, spotID); err != nil {
		return fmt.Errorf("failed to clear recurrence stats: %w", err)
	}

	for _, stat := range stats {
		var lastSeen any
		if !stat.LastSeen.IsZero() {
			lastSeen = stat.LastSeen
		}
		if _, err := q.ExecContext(ctx, `
			INSERT INTO recurrence_stats (spot_id, label, occurrences, eligible_checks, last_seen)
			VALUES (?, ?, ?, ?, ?)
		`, spotID, stat.Label, stat.Occurrences, stat.EligibleChecks, lastSeen); err != nil {
			return fmt.Errorf("failed to insert recurrence stat %q: %w", stat.Label, err)
		}
	}
	return nil
}

// GetStreak returns a spot's streak state, zero-valued if none stored yet.
func (s *SQLiteStorage) GetStreak(ctx context.Context, spotID int64) (*model.StreakState, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getStreakTx(ctx, s.db, spotID)
}

func (s *SQLiteStorage) getStreakTx(ctx context.Context, q queryable, spotID int64) (*model.StreakState, error) {
	var state model.StreakState
	err := q.QueryRowContext(ctx, `
		SELECT spot_id, current, best, day_start, last_date, last_status, total_resets
		FROM streaks
		WHERE spot_id = ?
	`, spotID).Scan(&state.SpotID, &state.Current, &state.Best, &state.DayStart, &state.LastDate, &state.LastStatus, &state.TotalResets)

	if errors.Is(err, sql.ErrNoRows) {
		return &model.StreakState{SpotID: spotID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return &state, nil
}

// PutStreak upserts a spot's streak state.
func (s *SQLiteStorage) PutStreak(ctx context.Context, state *model.StreakState) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStreak(state); err != nil {
		return err
	}
	return s.putStreakTx(ctx, s.db, state)
}

func (s *SQLiteStorage) putStreakTx(ctx context.Context, q queryable, state *model.StreakState) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO streaks (spot_id, current, best, day_start, last_date, last_status, total_resets)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(spot_id) DO UPDATE SET
			current = excluded.current,
			best = excluded.best,
			day_start = excluded.day_start,
			last_date = excluded.last_date,
			last_status = excluded.last_status,
			total_resets = excluded.total_resets
	`, state.SpotID, state.Current, state.Best, state.DayStart, state.LastDate, state.LastStatus, state.TotalResets)
	if err != nil {
		return fmt.Errorf("failed to put streak: %w", err)
	}
	return nil
}

// GetSnooze returns the spot's snooze window, or nil when none is set.
func (s *SQLiteStorage) GetSnooze(ctx context.Context, spotID int64) (*model.SnoozeWindow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getSnoozeTx(ctx, s.db, spotID)
}

func (s *SQLiteStorage) getSnoozeTx(ctx context.Context, q queryable, spotID int64) (*model.SnoozeWindow, error) {
	var window model.SnoozeWindow
	err := q.QueryRowContext(ctx, `
		SELECT spot_id, until FROM snoozes WHERE spot_id = ?
	`, spotID).Scan(&window.SpotID, &window.Until)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snooze: %w", err)
	}
	return &window, nil
}

// PutSnooze sets or overwrites the spot's snooze window. Windows never
// stack.
func (s *SQLiteStorage) PutSnooze(ctx context.Context, window *model.SnoozeWindow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSnooze(window); err != nil {
		return err
	}
	return s.putSnoozeTx(ctx, s.db, window)
}

func (s *SQLiteStorage) putSnoozeTx(ctx context.Context, q queryable, window *model.SnoozeWindow) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO snoozes (spot_id, until)
		VALUES (?, ?)
		ON CONFLICT(spot_id) DO UPDATE SET until = excluded.until
	`, window.SpotID, window.Until)
	if err != nil {
		return fmt.Errorf("failed to put snooze: %w", err)
	}
	return nil
}

// ClearSnooze removes any snooze window for the spot. Clearing an absent
// window is not an error.
func (s *SQLiteStorage) ClearSnooze(ctx context.Context, spotID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.clearSnoozeTx(ctx, s.db, spotID)
}

func (s *SQLiteStorage) clearSnoozeTx(ctx context.Context, q queryable, spotID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM snoozes WHERE spot_id = ?`, spotID); err != nil {
		return fmt.Errorf("failed to clear snooze: %w", err)
	}
	return nil
}
