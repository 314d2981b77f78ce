// Package storage provides the data persistence layer for the twinspot
// application.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/kozzzzzzy/twin-sync-addon/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{tx: tx, storage: s}, nil
}

// queryable is an interface satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.

func (t *sqliteTransaction) CreateSpot(ctx context.Context, spot *model.Spot) (*model.Spot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateSpot(spot); err != nil {
		return nil, err
	}
	return t.storage.createSpotTx(ctx, t.tx, spot)
}

func (t *sqliteTransaction) GetSpot(ctx context.Context, id int64) (*model.Spot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getSpotTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetSpotByName(ctx context.Context, name string) (*model.Spot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.getSpotByNameTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetAllSpots(ctx context.Context) ([]model.Spot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getAllSpotsTx(ctx, t.tx)
}

func (t *sqliteTransaction) UpdateSpot(ctx context.Context, spot *model.Spot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSpot(spot); err != nil {
		return err
	}
	return t.storage.updateSpotTx(ctx, t.tx, spot)
}

func (t *sqliteTransaction) DeleteSpot(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteSpotTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) AppendCheck(ctx context.Context, record *model.CheckRecord) (*model.CheckRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCheckRecord(record); err != nil {
		return nil, err
	}
	return t.storage.appendCheckTx(ctx, t.tx, record)
}

func (t *sqliteTransaction) GetChecks(ctx context.Context, spotID int64, filter service.CheckFilter) ([]model.CheckRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getChecksTx(ctx, t.tx, spotID, filter)
}

func (t *sqliteTransaction) GetRecurrenceStats(ctx context.Context, spotID int64) ([]model.RecurrenceStat, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getRecurrenceStatsTx(ctx, t.tx, spotID)
}

func (t *sqliteTransaction) PutRecurrenceStats(ctx context.Context, spotID int64, stats []model.RecurrenceStat) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.putRecurrenceStatsTx(ctx, t.tx, spotID, stats)
}

func (t *sqliteTransaction) GetStreak(ctx context.Context, spotID int64) (*model.StreakState, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getStreakTx(ctx, t.tx, spotID)
}

func (t *sqliteTransaction) PutStreak(ctx context.Context, state *model.StreakState) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStreak(state); err != nil {
		return err
	}
	return t.storage.putStreakTx(ctx, t.tx, state)
}

func (t *sqliteTransaction) GetSnooze(ctx context.Context, spotID int64) (*model.SnoozeWindow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getSnoozeTx(ctx, t.tx, spotID)
}

func (t *sqliteTransaction) PutSnooze(ctx context.Context, window *model.SnoozeWindow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSnooze(window); err != nil {
		return err
	}
	return t.storage.putSnoozeTx(ctx, t.tx, window)
}

func (t *sqliteTransaction) ClearSnooze(ctx context.Context, spotID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.clearSnoozeTx(ctx, t.tx, spotID)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("migrate cannot run inside a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}

func (t *sqliteTransaction) Close() error {
	return nil
}
