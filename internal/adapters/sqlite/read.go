package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// ListTracks returns every row of a track destination ordered by id.
func (a *Adapter) ListTracks(ctx context.Context, destination string) ([]domain.Track, error) {
	if !domain.ValidDestination(destination) {
		return nil, fmt.Errorf("sqlite adapter: %w: %q", domain.ErrInvalidDestination, destination)
	}
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT track_id, name, artist, artists, album, release_date,
			popularity, duration_ms, region, fetched_at
		FROM %s
		ORDER BY track_id`, destination))
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to load tracks: %w", err)
	}
	defer rows.Close()

	tracks := []domain.Track{}
	for rows.Next() {
		var t domain.Track
		var album sql.NullString
		var released sql.NullTime
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Artist,
			&t.Artists,
			&album,
			&released,
			&t.Popularity,
			&t.DurationMs,
			&t.Region,
			&t.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite adapter: failed to scan track: %w", err)
		}
		t.Album = album.String
		t.ReleaseDate = timePtr(released)
		t.FetchedAt = t.FetchedAt.UTC()
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to iterate tracks: %w", err)
	}
	return tracks, nil
}

// ListVideos returns every row of a video destination ordered by id.
func (a *Adapter) ListVideos(ctx context.Context, destination string) ([]domain.Video, error) {
	if !domain.ValidDestination(destination) {
		return nil, fmt.Errorf("sqlite adapter: %w: %q", domain.ErrInvalidDestination, destination)
	}
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT video_id, title, channel_id, channel_title, category,
			view_count, like_count, comment_count, published_at,
			region, fetched_at
		FROM %s
		ORDER BY video_id`, destination))
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to load videos: %w", err)
	}
	defer rows.Close()

	videos := []domain.Video{}
	for rows.Next() {
		var v domain.Video
		var channelID, channelTitle, category sql.NullString
		var published sql.NullTime
		if err := rows.Scan(
			&v.ID,
			&v.Title,
			&channelID,
			&channelTitle,
			&category,
			&v.ViewCount,
			&v.LikeCount,
			&v.CommentCount,
			&published,
			&v.Region,
			&v.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite adapter: failed to scan video: %w", err)
		}
		v.ChannelID = channelID.String
		v.ChannelTitle = channelTitle.String
		v.Category = category.String
		v.PublishedAt = timePtr(published)
		v.FetchedAt = v.FetchedAt.UTC()
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to iterate videos: %w", err)
	}
	return videos, nil
}

// ListCorrelations returns correlation rows in insertion order.
func (a *Adapter) ListCorrelations(ctx context.Context, destination string) ([]domain.Correlation, error) {
	if !domain.ValidDestination(destination) {
		return nil, fmt.Errorf("sqlite adapter: %w: %q", domain.ErrInvalidDestination, destination)
	}
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, track_id, video_id, similarity_score, reason,
			region_spotify, region_youtube, track_name, artist_name,
			video_title, run_id, fetched_at
		FROM %s
		ORDER BY id`, destination))
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to load correlations: %w", err)
	}
	defer rows.Close()

	out := []domain.Correlation{}
	for rows.Next() {
		var c domain.Correlation
		var reason, regionSpotify, regionYouTube, trackName, artistName, videoTitle, runID sql.NullString
		if err := rows.Scan(
			&c.ID,
			&c.TrackID,
			&c.VideoID,
			&c.SimilarityScore,
			&reason,
			&regionSpotify,
			&regionYouTube,
			&trackName,
			&artistName,
			&videoTitle,
			&runID,
			&c.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite adapter: failed to scan correlation: %w", err)
		}
		c.Reason = reason.String
		c.RegionSpotify = regionSpotify.String
		c.RegionYouTube = regionYouTube.String
		c.TrackName = trackName.String
		c.ArtistName = artistName.String
		c.VideoTitle = videoTitle.String
		c.RunID = runID.String
		c.FetchedAt = c.FetchedAt.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite adapter: failed to iterate correlations: %w", err)
	}
	return out, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	u := t.Time.UTC()
	return &u
}
