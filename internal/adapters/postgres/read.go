package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// ListTracks returns every row of a track destination ordered by id.
func (a *Adapter) ListTracks(ctx context.Context, destination string) ([]domain.Track, error) {
	if !domain.ValidDestination(destination) {
		return nil, fmt.Errorf("postgres adapter: %w: %q", domain.ErrInvalidDestination, destination)
	}
	rows, err := a.pool.Query(ctx, fmt.Sprintf(`
		SELECT track_id, name, artist, artists, album, release_date,
			popularity, duration_ms, region, fetched_at
		FROM %s
		ORDER BY track_id`, destination))
	if err != nil {
		return nil, fmt.Errorf("postgres adapter: failed to load tracks: %w", err)
	}

	tracks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Track, error) {
		var t domain.Track
		var album *string
		err := row.Scan(
			&t.ID, &t.Name, &t.Artist, &t.Artists, &album, &t.ReleaseDate,
			&t.Popularity, &t.DurationMs, &t.Region, &t.FetchedAt,
		)
		t.Album = deref(album)
		t.ReleaseDate = utcPtr(t.ReleaseDate)
		t.FetchedAt = t.FetchedAt.UTC()
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres adapter: failed to scan tracks: %w", err)
	}
	return tracks, nil
}

// ListVideos returns every row of a video destination ordered by id.
func (a *Adapter) ListVideos(ctx context.Context, destination string) ([]domain.Video, error) {
	if !domain.ValidDestination(destination) {
		return nil, fmt.Errorf("postgres adapter: %w: %q", domain.ErrInvalidDestination, destination)
	}
	rows, err := a.pool.Query(ctx, fmt.Sprintf(`
		SELECT video_id, title, channel_id, channel_title, category,
			view_count, like_count, comment_count, published_at,
			region, fetched_at
		FROM %s
		ORDER BY video_id`, destination))
	if err != nil {
		return nil, fmt.Errorf("postgres adapter: failed to load videos: %w", err)
	}

	videos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Video, error) {
		var v domain.Video
		var channelID, channelTitle, category *string
		err := row.Scan(
			&v.ID, &v.Title, &channelID, &channelTitle, &category,
			&v.ViewCount, &v.LikeCount, &v.CommentCount, &v.PublishedAt,
			&v.Region, &v.FetchedAt,
		)
		v.ChannelID = deref(channelID)
		v.ChannelTitle = deref(channelTitle)
		v.Category = deref(category)
		v.PublishedAt = utcPtr(v.PublishedAt)
		v.FetchedAt = v.FetchedAt.UTC()
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres adapter: failed to scan videos: %w", err)
	}
	return videos, nil
}

// ListCorrelations returns correlation rows in insertion order.
func (a *Adapter) ListCorrelations(ctx context.Context, destination string) ([]domain.Correlation, error) {
	if !domain.ValidDestination(destination) {
		return nil, fmt.Errorf("postgres adapter: %w: %q", domain.ErrInvalidDestination, destination)
	}
	rows, err := a.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, track_id, video_id, similarity_score,
			COALESCE(reason, ''), COALESCE(region_spotify, ''), COALESCE(region_youtube, ''),
			COALESCE(track_name, ''), COALESCE(artist_name, ''), COALESCE(video_title, ''),
			COALESCE(run_id, ''), fetched_at
		FROM %s
		ORDER BY id`, destination))
	if err != nil {
		return nil, fmt.Errorf("postgres adapter: failed to load correlations: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Correlation, error) {
		var c domain.Correlation
		err := row.Scan(
			&c.ID, &c.TrackID, &c.VideoID, &c.SimilarityScore,
			&c.Reason, &c.RegionSpotify, &c.RegionYouTube,
			&c.TrackName, &c.ArtistName, &c.VideoTitle,
			&c.RunID, &c.FetchedAt,
		)
		c.FetchedAt = c.FetchedAt.UTC()
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres adapter: failed to scan correlations: %w", err)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
