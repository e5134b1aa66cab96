// Package postgres provides a PostgreSQL implementation of the persistence
// gateway and catalog reader ports on top of pgxpool.
package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

const defaultMaxConns = 4

// Adapter implements ports.Store for PostgreSQL.
type Adapter struct {
	pool   *pgxpool.Pool
	tables domain.Destinations
	logger *slog.Logger
}

// NewAdapter connects to dsn and creates the destination tables when
// missing.
func NewAdapter(ctx context.Context, dsn string, tables domain.Destinations, logger *slog.Logger) (*Adapter, error) {
	tables = tables.WithDefaults()
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("postgres adapter: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres adapter: failed to parse dsn: %w", err)
	}
	if cfg.MaxConns < defaultMaxConns {
		cfg.MaxConns = defaultMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres adapter: failed to connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres adapter: failed to ping: %w", err)
	}

	adapter := &Adapter{pool: pool, tables: tables, logger: logger.With("component", "postgres")}
	if err := adapter.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres adapter: migration failed: %w", err)
	}
	return adapter, nil
}

// Close releases every pooled connection.
func (a *Adapter) Close() error {
	a.pool.Close()
	return nil
}

func (a *Adapter) migrate(ctx context.Context) error {
	for _, ddl := range []string{
		tracksDDL(a.tables.Tracks),
		videosDDL(a.tables.Videos),
		correlationsDDL(a.tables),
	} {
		if _, err := a.pool.Exec(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

func tracksDDL(name string) string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		track_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		artist TEXT NOT NULL DEFAULT '',
		artists TEXT NOT NULL DEFAULT '[]',
		album TEXT,
		release_date DATE,
		popularity INTEGER NOT NULL DEFAULT 0 CHECK (popularity BETWEEN 0 AND 100),
		duration_ms BIGINT NOT NULL DEFAULT 0 CHECK (duration_ms >= 0),
		region TEXT NOT NULL DEFAULT 'UNKNOWN',
		fetched_at TIMESTAMPTZ NOT NULL,
		load_id TEXT NOT NULL
	)`, name)
}

func videosDDL(name string) string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		video_id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		channel_id TEXT,
		channel_title TEXT,
		category TEXT,
		view_count BIGINT NOT NULL DEFAULT 0 CHECK (view_count >= 0),
		like_count BIGINT NOT NULL DEFAULT 0 CHECK (like_count >= 0),
		comment_count BIGINT NOT NULL DEFAULT 0 CHECK (comment_count >= 0),
		published_at TIMESTAMPTZ,
		region TEXT NOT NULL DEFAULT 'UNKNOWN',
		fetched_at TIMESTAMPTZ NOT NULL,
		load_id TEXT NOT NULL
	)`, name)
}

func correlationsDDL(t domain.Destinations) string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		track_id TEXT NOT NULL REFERENCES %s(track_id) ON DELETE CASCADE,
		video_id TEXT NOT NULL REFERENCES %s(video_id) ON DELETE CASCADE,
		similarity_score INTEGER NOT NULL CHECK (similarity_score BETWEEN 0 AND 100),
		reason TEXT,
		region_spotify TEXT,
		region_youtube TEXT,
		track_name TEXT,
		artist_name TEXT,
		video_title TEXT,
		run_id TEXT,
		fetched_at TIMESTAMPTZ NOT NULL
	)`, t.Correlations, t.Tracks, t.Videos)
}
