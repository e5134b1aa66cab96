// Package sqlite provides a SQLite-backed implementation of the persistence
// gateway and catalog reader ports.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// Adapter implements ports.Store for SQLite.
type Adapter struct {
	db     *sql.DB
	tables domain.Destinations
	logger *slog.Logger
}

// NewAdapter opens the database at storagePath (":memory:" works), enables
// foreign keys and creates the three destination tables when missing.
func NewAdapter(storagePath string, tables domain.Destinations, logger *slog.Logger) (*Adapter, error) {
	tables = tables.WithDefaults()
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("sqlite adapter: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := sql.Open("sqlite3", dsn(storagePath))
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to open db: %w", err)
	}
	// One connection: an in-memory database lives and dies with its
	// connection, and the pragma below is per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite adapter: failed to ping db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite adapter: failed to enable foreign keys: %w", err)
	}

	adapter := &Adapter{db: db, tables: tables, logger: logger.With("component", "sqlite")}
	if err := adapter.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite adapter: migration failed: %w", err)
	}

	return adapter, nil
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=1&_busy_timeout=5000"
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) migrate(ctx context.Context) error {
	for _, ddl := range []string{
		tracksDDL(a.tables.Tracks),
		videosDDL(a.tables.Videos),
		correlationsDDL(a.tables),
	} {
		if _, err := a.db.ExecContext(ctx, ddl); err != nil {
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
		duration_ms INTEGER NOT NULL DEFAULT 0 CHECK (duration_ms >= 0),
		region TEXT NOT NULL DEFAULT 'UNKNOWN',
		fetched_at TIMESTAMP NOT NULL,
		load_id TEXT NOT NULL
	);`, name)
}

func videosDDL(name string) string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		video_id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		channel_id TEXT,
		channel_title TEXT,
		category TEXT,
		view_count INTEGER NOT NULL DEFAULT 0 CHECK (view_count >= 0),
		like_count INTEGER NOT NULL DEFAULT 0 CHECK (like_count >= 0),
		comment_count INTEGER NOT NULL DEFAULT 0 CHECK (comment_count >= 0),
		published_at TIMESTAMP,
		region TEXT NOT NULL DEFAULT 'UNKNOWN',
		fetched_at TIMESTAMP NOT NULL,
		load_id TEXT NOT NULL
	);`, name)
}

func correlationsDDL(t domain.Destinations) string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		track_id TEXT NOT NULL,
		video_id TEXT NOT NULL,
		similarity_score INTEGER NOT NULL CHECK (similarity_score BETWEEN 0 AND 100),
		reason TEXT,
		region_spotify TEXT,
		region_youtube TEXT,
		track_name TEXT,
		artist_name TEXT,
		video_title TEXT,
		run_id TEXT,
		fetched_at TIMESTAMP NOT NULL,
		FOREIGN KEY(track_id) REFERENCES %s(track_id) ON DELETE CASCADE,
		FOREIGN KEY(video_id) REFERENCES %s(video_id) ON DELETE CASCADE
	);`, t.Correlations, t.Tracks, t.Videos)
}
