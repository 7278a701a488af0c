package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"wealth_planner/pkg/models"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS balance_sheets (
		team_id    TEXT NOT NULL,
		client_id  TEXT NOT NULL,
		items_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (team_id, client_id)
	);
`

// SQLiteStore is the single-file local store used when no Postgres URL is
// configured.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save upserts the client's items.
func (s *SQLiteStore) Save(ctx context.Context, teamID, clientID string, items []models.BalanceSheetItem) error {
	if err := validateKey(teamID, clientID); err != nil {
		return err
	}

	data, err := encodeItems(items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO balance_sheets (team_id, client_id, items_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (team_id, client_id)
		DO UPDATE SET
			items_json = excluded.items_json,
			updated_at = excluded.updated_at;
	`
	_, err = s.db.ExecContext(ctx, query, teamID, clientID, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save balance sheet: %w", err)
	}
	return nil
}

// Load returns the client's items, or ErrNotFound.
func (s *SQLiteStore) Load(ctx context.Context, teamID, clientID string) ([]models.BalanceSheetItem, error) {
	if err := validateKey(teamID, clientID); err != nil {
		return nil, err
	}

	query := `SELECT items_json FROM balance_sheets WHERE team_id = ? AND client_id = ?`

	var data string
	if err := s.db.QueryRowContext(ctx, query, teamID, clientID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load balance sheet: %w", err)
	}
	return decodeItems([]byte(data))
}
