// Package db provides database connection helpers.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// jobsSchema creates the curated postings table when it is missing.
const jobsSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id               UUID PRIMARY KEY,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL,
	requirements     TEXT NOT NULL DEFAULT '',
	salary_min       INTEGER,
	salary_max       INTEGER,
	location         TEXT NOT NULL,
	job_type         TEXT NOT NULL DEFAULT 'Full-time',
	experience_level TEXT NOT NULL DEFAULT 'Entry',
	category         TEXT NOT NULL DEFAULT 'Programming/Development',
	company_name     TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'active',
	posted_date      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS jobs_status_posted_idx ON jobs (status, posted_date DESC);`

// EnsureSchema creates the jobs table and its listing index.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, jobsSchema); err != nil {
		return fmt.Errorf("ensure jobs schema: %w", err)
	}
	return nil
}
