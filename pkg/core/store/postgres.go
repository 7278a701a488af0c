package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wealth_planner/pkg/models"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS balance_sheets (
		team_id    TEXT NOT NULL,
		client_id  TEXT NOT NULL,
		items_json JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (team_id, client_id)
	);
`

// PostgresStore keeps balance sheets in a JSONB column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over pool. A nil pool falls back to the
// shared pool from InitDB.
func NewPostgresStore(p *pgxpool.Pool) *PostgresStore {
	if p == nil {
		p = GetPool()
	}
	return &PostgresStore{pool: p}
}

// EnsureSchema creates the balance_sheets table if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save upserts the client's items.
func (s *PostgresStore) Save(ctx context.Context, teamID, clientID string, items []models.BalanceSheetItem) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if err := validateKey(teamID, clientID); err != nil {
		return err
	}

	data, err := encodeItems(items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO balance_sheets (team_id, client_id, items_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (team_id, client_id)
		DO UPDATE SET
			items_json = EXCLUDED.items_json,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.pool.Exec(ctx, query, teamID, clientID, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save balance sheet: %w", err)
	}
	return nil
}

// Load returns the client's items, or ErrNotFound.
func (s *PostgresStore) Load(ctx context.Context, teamID, clientID string) ([]models.BalanceSheetItem, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if err := validateKey(teamID, clientID); err != nil {
		return nil, err
	}

	query := `SELECT items_json FROM balance_sheets WHERE team_id = $1 AND client_id = $2`

	var data []byte
	if err := s.pool.QueryRow(ctx, query, teamID, clientID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load balance sheet: %w", err)
	}
	return decodeItems(data)
}
