package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// Persist writes table to destination inside one transaction, with the same
// replace and append semantics as the SQLite gateway: replace upserts
// tracks and videos then sweeps earlier loads, and rewrites correlations;
// append inserts as-is. Empty tables are a no-op.
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

	tx, err := a.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

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

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	a.logger.Info("persisted", "destination", destination, "rows", table.Len(), "policy", string(policy))
	return nil
}

func (a *Adapter) writeTracks(ctx context.Context, tx pgx.Tx, rows domain.TrackTable, dest string, policy domain.ConflictPolicy) error {
	if _, err := tx.Exec(ctx, tracksDDL(dest)); err != nil {
		return fmt.Errorf("failed to ensure %s: %w", dest, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			track_id, name, artist, artists, album, release_date,
			popularity, duration_ms, region, fetched_at, load_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, dest)
	if policy == domain.PolicyReplace {
		query += `
		ON CONFLICT (track_id) DO UPDATE SET
			name = EXCLUDED.name,
			artist = EXCLUDED.artist,
			artists = EXCLUDED.artists,
			album = EXCLUDED.album,
			release_date = EXCLUDED.release_date,
			popularity = EXCLUDED.popularity,
			duration_ms = EXCLUDED.duration_ms,
			region = EXCLUDED.region,
			fetched_at = EXCLUDED.fetched_at,
			load_id = EXCLUDED.load_id`
	}

	loadID := uuid.NewString()
	b := &pgx.Batch{}
	for _, t := range rows {
		b.Queue(query,
			t.ID, t.Name, t.Artist, t.Artists, nullable(t.Album), t.ReleaseDate,
			t.Popularity, t.DurationMs, t.Region, t.FetchedAt.UTC(), loadID,
		)
	}
	if err := sendBatch(ctx, tx, b); err != nil {
		return fmt.Errorf("failed to save tracks: %w", err)
	}

	if policy == domain.PolicyReplace {
		return sweep(ctx, tx, dest, loadID)
	}
	return nil
}

func (a *Adapter) writeVideos(ctx context.Context, tx pgx.Tx, rows domain.VideoTable, dest string, policy domain.ConflictPolicy) error {
	if _, err := tx.Exec(ctx, videosDDL(dest)); err != nil {
		return fmt.Errorf("failed to ensure %s: %w", dest, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			video_id, title, channel_id, channel_title, category,
			view_count, like_count, comment_count, published_at,
			region, fetched_at, load_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, dest)
	if policy == domain.PolicyReplace {
		query += `
		ON CONFLICT (video_id) DO UPDATE SET
			title = EXCLUDED.title,
			channel_id = EXCLUDED.channel_id,
			channel_title = EXCLUDED.channel_title,
			category = EXCLUDED.category,
			view_count = EXCLUDED.view_count,
			like_count = EXCLUDED.like_count,
			comment_count = EXCLUDED.comment_count,
			published_at = EXCLUDED.published_at,
			region = EXCLUDED.region,
			fetched_at = EXCLUDED.fetched_at,
			load_id = EXCLUDED.load_id`
	}

	loadID := uuid.NewString()
	b := &pgx.Batch{}
	for _, v := range rows {
		b.Queue(query,
			v.ID, v.Title, nullable(v.ChannelID), nullable(v.ChannelTitle), nullable(v.Category),
			v.ViewCount, v.LikeCount, v.CommentCount, v.PublishedAt,
			v.Region, v.FetchedAt.UTC(), loadID,
		)
	}
	if err := sendBatch(ctx, tx, b); err != nil {
		return fmt.Errorf("failed to save videos: %w", err)
	}

	if policy == domain.PolicyReplace {
		return sweep(ctx, tx, dest, loadID)
	}
	return nil
}

var correlationColumns = []string{
	"track_id", "video_id", "similarity_score", "reason",
	"region_spotify", "region_youtube", "track_name", "artist_name",
	"video_title", "run_id", "fetched_at",
}

func (a *Adapter) writeCorrelations(ctx context.Context, tx pgx.Tx, rows domain.CorrelationTable, dest string, policy domain.ConflictPolicy) error {
	ddlTables := a.tables
	ddlTables.Correlations = dest
	if _, err := tx.Exec(ctx, correlationsDDL(ddlTables)); err != nil {
		return fmt.Errorf("failed to ensure %s: %w", dest, err)
	}

	if policy == domain.PolicyReplace {
		// TRUNCATE restarts the id sequence so a repeated replace yields
		// identical rows.
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE %s RESTART IDENTITY", dest)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", dest, err)
		}
	}

	// Unquoted DDL folds the table name to lower case; COPY quotes it.
	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{strings.ToLower(dest)},
		correlationColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			c := rows[i]
			return []any{
				c.TrackID, c.VideoID, c.SimilarityScore, c.Reason,
				c.RegionSpotify, c.RegionYouTube, c.TrackName, c.ArtistName,
				c.VideoTitle, nullable(c.RunID), c.FetchedAt.UTC(),
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy correlations: %w", err)
	}
	if int(copied) != len(rows) {
		return fmt.Errorf("copied %d of %d correlations", copied, len(rows))
	}
	return nil
}

func sendBatch(ctx context.Context, tx pgx.Tx, b *pgx.Batch) error {
	br := tx.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}

// sweep removes rows written by earlier loads.
func sweep(ctx context.Context, tx pgx.Tx, dest string, loadID string) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE load_id <> $1", dest), loadID); err != nil {
		return fmt.Errorf("failed to sweep stale rows from %s: %w", dest, err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
