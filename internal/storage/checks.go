package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/kozzzzzzy/twin-sync-addon/internal/service"
)

// AppendCheck inserts a new check record. Records are append-only: the
// record must not carry an id yet, and nothing ever updates the row.
func (s *SQLiteStorage) AppendCheck(ctx context.Context, record *model.CheckRecord) (*model.CheckRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCheckRecord(record); err != nil {
		return nil, err
	}
	return s.appendCheckTx(ctx, s.db, record)
}

func (s *SQLiteStorage) appendCheckTx(ctx context.Context, q queryable, record *model.CheckRecord) (*model.CheckRecord, error) {
	verdicts := record.Verdicts
	if verdicts == nil {
		verdicts = []model.ItemVerdict{}
	}
	verdictsJSON, err := json.Marshal(verdicts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode verdicts: %w", err)
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO checks (spot_id, timestamp, status, eligible, verdicts_json,
		                    notes_main, notes_pattern, notes_encouragement,
		                    observation_ref, api_response_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.SpotID, record.Timestamp, record.Status, record.Eligible, string(verdictsJSON),
		record.Notes.Main, record.Notes.Pattern, record.Notes.Encouragement,
		record.ObservationRef, record.APIResponseTime.Milliseconds())
	if err != nil {
		return nil, fmt.Errorf("failed to append check: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get check id: %w", err)
	}

	inserted := *record
	inserted.ID = id
	inserted.Verdicts = verdicts
	return &inserted, nil
}

// GetChecks returns a spot's check history in timestamp order, oldest
// first.
func (s *SQLiteStorage) GetChecks(ctx context.Context, spotID int64, filter service.CheckFilter) ([]model.CheckRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getChecksTx(ctx, s.db, spotID, filter)
}

func (s *SQLiteStorage) getChecksTx(ctx context.Context, q queryable, spotID int64, filter service.CheckFilter) ([]model.CheckRecord, error) {
	query := `
		SELECT id, spot_id, timestamp, status, eligible, verdicts_json,
		       notes_main, notes_pattern, notes_encouragement,
		       observation_ref, api_response_ms
		FROM checks
		WHERE spot_id = ?`
	args := []any{spotID}

	if filter.Since != nil {
		query += ` AND timestamp >= ?`
		args = append(args, *filter.Since)
	}
	if filter.EligibleOnly {
		query += ` AND eligible = 1`
	}
	query += ` ORDER BY timestamp, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query checks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.CheckRecord
	for rows.Next() {
		var rec model.CheckRecord
		var verdictsJSON string
		var responseMs int64
		if err := rows.Scan(
			&rec.ID,
			&rec.SpotID,
			&rec.Timestamp,
			&rec.Status,
			&rec.Eligible,
			&verdictsJSON,
			&rec.Notes.Main,
			&rec.Notes.Pattern,
			&rec.Notes.Encouragement,
			&rec.ObservationRef,
			&responseMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		if err := json.Unmarshal([]byte(verdictsJSON), &rec.Verdicts); err != nil {
			return nil, fmt.Errorf("failed to decode verdicts for check %d: %w", rec.ID, err)
		}
		rec.APIResponseTime = time.Duration(responseMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}
