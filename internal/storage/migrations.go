package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS spots (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					camera_entity TEXT NOT NULL,
					definition TEXT NOT NULL DEFAULT '',
					spot_type TEXT NOT NULL DEFAULT 'custom',
					voice TEXT NOT NULL DEFAULT 'supportive',
					custom_voice_prompt TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL DEFAULT 'unknown',
					last_check DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS checks (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					spot_id INTEGER NOT NULL,
					timestamp DATETIME NOT NULL,
					status TEXT NOT NULL,
					eligible INTEGER NOT NULL DEFAULT 1,
					verdicts_json TEXT NOT NULL DEFAULT '[]',
					notes_main TEXT NOT NULL DEFAULT '',
					notes_pattern TEXT NOT NULL DEFAULT '',
					notes_encouragement TEXT NOT NULL DEFAULT '',
					observation_ref TEXT NOT NULL DEFAULT '',
					api_response_ms INTEGER NOT NULL DEFAULT 0,
					FOREIGN KEY (spot_id) REFERENCES spots(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_checks_spot_id ON checks(spot_id)`,
				`CREATE INDEX idx_checks_timestamp ON checks(timestamp)`,

				`CREATE TABLE IF NOT EXISTS recurrence_stats (
					spot_id INTEGER NOT NULL,
					label TEXT NOT NULL,
					occurrences INTEGER NOT NULL DEFAULT 0,
					eligible_checks INTEGER NOT NULL DEFAULT 0,
					last_seen DATETIME,
					PRIMARY KEY (spot_id, label),
					FOREIGN KEY (spot_id) REFERENCES spots(id) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS streaks (
					spot_id INTEGER PRIMARY KEY,
					current INTEGER NOT NULL DEFAULT 0,
					best INTEGER NOT NULL DEFAULT 0,
					day_start INTEGER NOT NULL DEFAULT 0,
					last_date TEXT NOT NULL DEFAULT '',
					last_status TEXT NOT NULL DEFAULT '',
					total_resets INTEGER NOT NULL DEFAULT 0,
					FOREIGN KEY (spot_id) REFERENCES spots(id) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS snoozes (
					spot_id INTEGER PRIMARY KEY,
					until DATETIME NOT NULL,
					FOREIGN KEY (spot_id) REFERENCES spots(id) ON DELETE CASCADE
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index recurrence stats by last seen for pruning",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_recurrence_last_seen ON recurrence_stats(last_seen)`)
			if err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
