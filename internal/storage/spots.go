package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// CreateSpot inserts a new spot and returns it with its assigned id.
func (s *SQLiteStorage) CreateSpot(ctx context.Context, spot *model.Spot) (*model.Spot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateSpot(spot); err != nil {
		return nil, err
	}
	return s.createSpotTx(ctx, s.db, spot)
}

func (s *SQLiteStorage) createSpotTx(ctx context.Context, q queryable, spot *model.Spot) (*model.Spot, error) {
	if spot.Voice == "" {
		spot.Voice = model.DefaultVoice
	}
	if spot.Type == "" {
		spot.Type = model.SpotCustom
	}
	if spot.Status == "" {
		spot.Status = model.StatusUnknown
	}
	if spot.CreatedAt.IsZero() {
		spot.CreatedAt = time.Now()
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO spots (name, camera_entity, definition, spot_type, voice, custom_voice_prompt, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, spot.Name, spot.CameraEntity, spot.Definition, spot.Type, spot.Voice, spot.CustomVoicePrompt, spot.Status, spot.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create spot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get spot id: %w", err)
	}

	return s.getSpotTx(ctx, q, id)
}

// GetSpot retrieves a spot by id.
func (s *SQLiteStorage) GetSpot(ctx context.Context, id int64) (*model.Spot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getSpotTx(ctx, s.db, id)
}

const spotColumns = `id, name, camera_entity, definition, spot_type, voice, custom_voice_prompt, status, last_check, created_at`

func (s *SQLiteStorage) getSpotTx(ctx context.Context, q queryable, id int64) (*model.Spot, error) {
	row := q.QueryRowContext(ctx, `SELECT `+spotColumns+` FROM spots WHERE id = ?`, id)
	return scanSpot(row)
}

// GetSpotByName retrieves a spot by its unique name.
func (s *SQLiteStorage) GetSpotByName(ctx context.Context, name string) (*model.Spot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getSpotByNameTx(ctx, s.db, name)
}

func (s *SQLiteStorage) getSpotByNameTx(ctx context.Context, q queryable, name string) (*model.Spot, error) {
	row := q.QueryRowContext(ctx, `SELECT `+spotColumns+` FROM spots WHERE name = ?`, name)
	return scanSpot(row)
}

func scanSpot(row *sql.Row) (*model.Spot, error) {
	var spot model.Spot
	var lastCheck sql.NullTime

	err := row.Scan(
		&spot.ID,
		&spot.Name,
		&spot.CameraEntity,
		&spot.Definition,
		&spot.Type,
		&spot.Voice,
		&spot.CustomVoicePrompt,
		&spot.Status,
		&lastCheck,
		&spot.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spot: %w", err)
	}

	if lastCheck.Valid {
		spot.LastCheck = &lastCheck.Time
	}
	return &spot, nil
}

// GetAllSpots returns every spot ordered by creation time.
func (s *SQLiteStorage) GetAllSpots(ctx context.Context) ([]model.Spot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAllSpotsTx(ctx, s.db)
}

func (s *SQLiteStorage) getAllSpotsTx(ctx context.Context, q queryable) ([]model.Spot, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+spotColumns+` FROM spots ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list spots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var spots []model.Spot
	for rows.Next() {
		var spot model.Spot
		var lastCheck sql.NullTime
		if err := rows.Scan(
			&spot.ID,
			&spot.Name,
			&spot.CameraEntity,
			&spot.Definition,
			&spot.Type,
			&spot.Voice,
			&spot.CustomVoicePrompt,
			&spot.Status,
			&lastCheck,
			&spot.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan spot: %w", err)
		}
		if lastCheck.Valid {
			spot.LastCheck = &lastCheck.Time
		}
		spots = append(spots, spot)
	}
	return spots, rows.Err()
}

// UpdateSpot persists mutable spot fields: name, definition, voice, camera,
// status and last-check stamp.
func (s *SQLiteStorage) UpdateSpot(ctx context.Context, spot *model.Spot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSpot(spot); err != nil {
		return err
	}
	return s.updateSpotTx(ctx, s.db, spot)
}

func (s *SQLiteStorage) updateSpotTx(ctx context.Context, q queryable, spot *model.Spot) error {
	result, err := q.ExecContext(ctx, `
		UPDATE spots
		SET name = ?, camera_entity = ?, definition = ?, spot_type = ?, voice = ?,
		    custom_voice_prompt = ?, status = ?, last_check = ?
		WHERE id = ?
	`, spot.Name, spot.CameraEntity, spot.Definition, spot.Type, spot.Voice,
		spot.CustomVoicePrompt, spot.Status, spot.LastCheck, spot.ID)
	if err != nil {
		return fmt.Errorf("failed to update spot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteSpot removes a spot and everything it owns: checks, recurrence
// stats, streak state and any snooze window.
func (s *SQLiteStorage) DeleteSpot(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deleteSpotTx(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) deleteSpotTx(ctx context.Context, q queryable, id int64) error {
	// Child rows go explicitly as well as via FK cascade, so the delete is
	// complete even on databases opened without foreign_keys.
	for _, query := range []string{
		`DELETE FROM checks WHERE spot_id = ?`,
		`DELETE FROM recurrence_stats WHERE spot_id = ?`,
		`DELETE FROM streaks WHERE spot_id = ?`,
		`DELETE FROM snoozes WHERE spot_id = ?`,
	} {
		if _, err := q.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete spot children: %w", err)
		}
	}

	result, err := q.ExecContext(ctx, `DELETE FROM spots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete spot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
