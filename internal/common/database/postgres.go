// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"decree-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// decreeSchema creates the decree table. The candidates table belongs to the
// records store; only its generated marker column is ensured here.
const decreeSchema = `
CREATE TABLE IF NOT EXISTS decrees (
	id           UUID PRIMARY KEY,
	candidate_id TEXT NOT NULL,
	category     TEXT NOT NULL,
	owner_name   TEXT NOT NULL,
	number       TEXT NOT NULL,
	unit         TEXT NOT NULL DEFAULT '',
	issued_at    DATE NOT NULL,
	status       TEXT NOT NULL DEFAULT 'active',
	batch_id     TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS decrees_candidate_id_idx ON decrees (candidate_id);
ALTER TABLE IF EXISTS candidates ADD COLUMN IF NOT EXISTS sk_generated_at TIMESTAMPTZ;
`

// EnsureSchema applies the decree schema idempotently.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, decreeSchema); err != nil {
		return fmt.Errorf("ensure decree schema: %w", err)
	}
	return nil
}
