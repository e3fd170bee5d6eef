// Package database stores scraper snapshots in PostgreSQL.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-cityboard-automation/internal/models"
	"go-cityboard-automation/internal/snapshot"
)

const schema = `
CREATE TABLE IF NOT EXISTS scraper_snapshots (
	identity   TEXT PRIMARY KEY,
	records    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// querier is the slice of pgxpool.Pool the repository needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is a snapshot.Store backed by one row per identity. The upsert
// replaces the whole snapshot in a single statement.
type Repository struct {
	db   querier
	pool *pgxpool.Pool
	log  *slog.Logger
}

var _ snapshot.Store = (*Repository)(nil)

func ConnectDB(ctx context.Context, connString string, log *slog.Logger) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// PgBouncer in transaction mode cannot hold prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	repo := newRepository(pool, log)
	repo.pool = pool
	return repo, nil
}

func newRepository(db querier, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log.With("component", "snapshot", "backend", "postgres")}
}

func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// EnsureSchema creates the snapshot table if it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create scraper_snapshots: %w", err)
	}
	return nil
}

func (r *Repository) Load(ctx context.Context, id models.Identity) ([]models.Record, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT records FROM scraper_snapshots WHERE identity = $1`, id.Key()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		r.log.Info("📭 no previous snapshot found", "snapshot", id.Key())
		return []models.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}

	return snapshot.Decode(r.log, id, raw), nil
}

func (r *Repository) Save(ctx context.Context, id models.Identity, records []models.Record) error {
	data, err := snapshot.Encode(records)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scraper_snapshots (identity, records, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (identity)
		DO UPDATE SET records = EXCLUDED.records, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, id.Key(), string(data)); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", id, err)
	}
	r.log.Info("💾 saved snapshot", "snapshot", id.Key(), "records", len(records))
	return nil
}
