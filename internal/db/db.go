package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureSchema creates the tables if they do not exist yet. This is a
// one-shot idempotent bootstrap, not a migration system.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			company JSONB NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'new',
			notes JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS contacts_user_id_idx ON contacts (user_id)`,
		`CREATE TABLE IF NOT EXISTS call_logs (
			id TEXT PRIMARY KEY,
			contact_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			called_at TIMESTAMPTZ NOT NULL,
			duration INTEGER,
			notes TEXT,
			status TEXT NOT NULL DEFAULT 'completed',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS call_logs_contact_id_idx ON call_logs (contact_id)`,
		`CREATE INDEX IF NOT EXISTS call_logs_user_id_idx ON call_logs (user_id)`,
		`CREATE TABLE IF NOT EXISTS settings (
			type TEXT PRIMARY KEY,
			maintenance_mode BOOLEAN NOT NULL DEFAULT FALSE,
			registration_disabled BOOLEAN NOT NULL DEFAULT FALSE,
			system_notice TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ,
			updated_by TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
