package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// Persist writes table to destination inside one transaction.
//
// Under replace, tracks and videos are upserted with a fresh load id and
// rows from earlier loads are swept, so correlations pointing at surviving
// rows stay valid; correlations are deleted and re-inserted. Under append,
// rows are inserted as-is and a repeated primary key fails the write.
// An empty table is a no-op under either policy.
func (a *Adapter) Persist(ctx context.Context, table domain.Table, destination string, policy domain.ConflictPolicy) error {
	rows := 0
	if table != nil {
		rows = table.Len()
	}

	if err := a.persist(ctx, table, destination, policy); err != nil {
		a.logger.Error("persist failed", "destination", destination, "rows", rows, "policy", string(policy), "error", err)
		return &domain.PersistError{Destination: destination, Rows: rows, Err: err}
	}
	return nil
}

func (a *Adapter) persist(ctx context.Context, table domain.Table, destination string, policy domain.ConflictPolicy) error {
	policy, err := domain.ParseConflictPolicy(string(policy))
	if err != nil {
		return err
	}
	if !domain.ValidDestination(destination) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDestination, destination)
	}
	if table == nil {
		return fmt.Errorf("%w: nil", domain.ErrUnsupportedTable)
	}
	if table.Len() == 0 {
		a.logger.Info("empty table, nothing written", "destination", destination, "kind", table.Kind(), "policy", string(policy))
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch t := table.(type) {
	case domain.TrackTable:
		err = a.writeTracks(ctx, tx, t, destination, policy)
	case domain.VideoTable:
		err = a.writeVideos(ctx, tx, t, destination, policy)
	case domain.CorrelationTable:
		err = a.writeCorrelations(ctx, tx, t, destination, policy)
	default:
		err = fmt.Errorf("%w: %T", domain.ErrUnsupportedTable, table)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	a.logger.Info("persisted", "destination", destination, "rows", table.Len(), "policy", string(policy))
	return nil
}

func (a *Adapter) writeTracks(ctx context.Context, tx *sql.Tx, rows domain.TrackTable, dest string, policy domain.ConflictPolicy) error {
	if _, err := tx.ExecContext(ctx, tracksDDL(dest)); err != nil {
		return fmt.Errorf("failed to ensure %s: %w", dest, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			track_id, name, artist, artists, album, release_date,
			popularity, duration_ms, region, fetched_at, load_id
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, dest)
	if policy == domain.PolicyReplace {
		query += `
		ON CONFLICT(track_id) DO UPDATE SET
			name=excluded.name,
			artist=excluded.artist,
			artists=excluded.artists,
			album=excluded.album,
			release_date=excluded.release_date,
			popularity=excluded.popularity,
			duration_ms=excluded.duration_ms,
			region=excluded.region,
			fetched_at=excluded.fetched_at,
			load_id=excluded.load_id`
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	loadID := uuid.NewString()
	for _, t := range rows {
		if _, err := stmt.ExecContext(ctx,
			t.ID,
			t.Name,
			t.Artist,
			t.Artists,
			nullString(t.Album),
			nullTime(t.ReleaseDate),
			t.Popularity,
			t.DurationMs,
			t.Region,
			t.FetchedAt.UTC(),
			loadID,
		); err != nil {
			return fmt.Errorf("failed to save track %s: %w", t.ID, err)
		}
	}

	if policy == domain.PolicyReplace {
		return sweep(ctx, tx, dest, loadID)
	}
	return nil
}

func (a *Adapter) writeVideos(ctx context.Context, tx *sql.Tx, rows domain.VideoTable, dest string, policy domain.ConflictPolicy) error {
	if _, err := tx.ExecContext(ctx, videosDDL(dest)); err != nil {
		return fmt.Errorf("failed to ensure %s: %w", dest, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			video_id, title, channel_id, channel_title, category,
			view_count, like_count, comment_count, published_at,
			region, fetched_at, load_id
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, dest)
	if policy == domain.PolicyReplace {
		query += `
		ON CONFLICT(video_id) DO UPDATE SET
			title=excluded.title,
			channel_id=excluded.channel_id,
			channel_title=excluded.channel_title,
			category=excluded.category,
			view_count=excluded.view_count,
			like_count=excluded.like_count,
			comment_count=excluded.comment_count,
			published_at=excluded.published_at,
			region=excluded.region,
			fetched_at=excluded.fetched_at,
			load_id=excluded.load_id`
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	loadID := uuid.NewString()
	for _, v := range rows {
		if _, err := stmt.ExecContext(ctx,
			v.ID,
			v.Title,
			nullString(v.ChannelID),
			nullString(v.ChannelTitle),
			nullString(v.Category),
			v.ViewCount,
			v.LikeCount,
			v.CommentCount,
			nullTime(v.PublishedAt),
			v.Region,
			v.FetchedAt.UTC(),
			loadID,
		); err != nil {
			return fmt.Errorf("failed to save video %s: %w", v.ID, err)
		}
	}

	if policy == domain.PolicyReplace {
		return sweep(ctx, tx, dest, loadID)
	}
	return nil
}

func (a *Adapter) writeCorrelations(ctx context.Context, tx *sql.Tx, rows domain.CorrelationTable, dest string, policy domain.ConflictPolicy) error {
	ddlTables := a.tables
	ddlTables.Correlations = dest
	if _, err := tx.ExecContext(ctx, correlationsDDL(ddlTables)); err != nil {
		return fmt.Errorf("failed to ensure %s: %w", dest, err)
	}

	if policy == domain.PolicyReplace {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", dest)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", dest, err)
		}
		// Restart ids so a repeated replace yields identical rows.
		if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", dest); err != nil {
			return fmt.Errorf("failed to reset %s ids: %w", dest, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			track_id, video_id, similarity_score, reason,
			region_spotify, region_youtube, track_name, artist_name,
			video_title, run_id, fetched_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, dest))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rows {
		if _, err := stmt.ExecContext(ctx,
			c.TrackID,
			c.VideoID,
			c.SimilarityScore,
			c.Reason,
			c.RegionSpotify,
			c.RegionYouTube,
			c.TrackName,
			c.ArtistName,
			c.VideoTitle,
			nullString(c.RunID),
			c.FetchedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to save correlation %s -> %s: %w", c.TrackID, c.VideoID, err)
		}
	}
	return nil
}

// sweep removes rows written by earlier loads.
func sweep(ctx context.Context, tx *sql.Tx, dest string, loadID string) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE load_id <> ?", dest), loadID); err != nil {
		return fmt.Errorf("failed to sweep stale rows from %s: %w", dest, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
