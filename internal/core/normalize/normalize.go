// Package normalize coerces raw extracted records into the canonical Track
// and Video shapes.
//
// Malformed fields degrade to null or zero and leave a Diagnostic behind;
// a row is only dropped when it has no identifier or repeats one already
// seen in the same batch.
package normalize

import (
	"fmt"
	"time"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// Diagnostic records one field that could not be used as delivered.
// Record is the zero-based position of the raw record in its batch.
type Diagnostic struct {
	Record int
	Field  string
	Raw    string
	Reason string
}

func (d Diagnostic) String() string {
	if d.Field == "" {
		return fmt.Sprintf("record %d: %s", d.Record, d.Reason)
	}
	return fmt.Sprintf("record %d: %s=%q: %s", d.Record, d.Field, d.Raw, d.Reason)
}

// Result is a normalized batch. Only the slice matching Kind is populated.
type Result struct {
	Kind        domain.SourceKind
	Tracks      []domain.Track
	Videos      []domain.Video
	Dropped     int
	Diagnostics []Diagnostic
}

// Len returns the number of normalized rows.
func (r Result) Len() int {
	if r.Kind == domain.SourceVideos {
		return len(r.Videos)
	}
	return len(r.Tracks)
}

// Normalizer turns raw records into domain rows. Now stamps fetched_at and
// defaults to time.Now.
type Normalizer struct {
	Now func() time.Time
}

// New returns a Normalizer on the wall clock.
func New() *Normalizer {
	return &Normalizer{Now: time.Now}
}

func (n *Normalizer) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now().UTC()
	}
	return n.Now().UTC()
}

// Normalize dispatches on kind. The only error is an unknown kind; field
// problems are reported in Result.Diagnostics.
func (n *Normalizer) Normalize(records []domain.RawRecord, kind domain.SourceKind) (Result, error) {
	switch kind {
	case domain.SourceTracks:
		return n.Tracks(records), nil
	case domain.SourceVideos:
		return n.Videos(records), nil
	}
	return Result{}, fmt.Errorf("normalize: %w: %q", domain.ErrUnknownSource, kind)
}

// Tracks normalizes track records. Every row in the batch shares one
// fetched_at timestamp.
func (n *Normalizer) Tracks(records []domain.RawRecord) Result {
	res := Result{Kind: domain.SourceTracks, Tracks: make([]domain.Track, 0, len(records))}
	fetchedAt := n.now()
	seen := make(map[string]struct{}, len(records))

	for i, raw := range records {
		f := fields{index: i, rec: raw, diags: &res.Diagnostics}

		id := f.text("track_id", "id")
		if !f.keep(id, seen, "track_id") {
			res.Dropped++
			continue
		}

		artists := f.artists("artists", "artist_name", "artist")
		t := domain.Track{
			ID:          id,
			Name:        f.text("name", "track_name"),
			Artists:     encodeArtists(artists),
			Album:       f.text("album", "album_name"),
			ReleaseDate: f.date("release_date", "release_year"),
			Popularity:  int(f.bounded(0, 100, "popularity")),
			DurationMs:  f.durationMs(),
			Region:      f.region("region", "market"),
			FetchedAt:   fetchedAt,
		}
		if len(artists) > 0 {
			t.Artist = artists[0]
		}
		res.Tracks = append(res.Tracks, t)
	}
	return res
}

// Videos normalizes video records. A missing region becomes
// domain.UnknownRegion.
func (n *Normalizer) Videos(records []domain.RawRecord) Result {
	res := Result{Kind: domain.SourceVideos, Videos: make([]domain.Video, 0, len(records))}
	fetchedAt := n.now()
	seen := make(map[string]struct{}, len(records))

	for i, raw := range records {
		f := fields{index: i, rec: raw, diags: &res.Diagnostics}

		id := f.text("video_id", "id")
		if !f.keep(id, seen, "video_id") {
			res.Dropped++
			continue
		}

		res.Videos = append(res.Videos, domain.Video{
			ID:           id,
			Title:        f.text("title"),
			ChannelID:    f.text("channel_id"),
			ChannelTitle: f.text("channel_title"),
			Category:     CategoryName(f.text("category", "category_id")),
			ViewCount:    f.count("view_count"),
			LikeCount:    f.count("like_count"),
			CommentCount: f.count("comment_count"),
			PublishedAt:  f.date("published_at"),
			Region:       f.region("region"),
			FetchedAt:    fetchedAt,
		})
	}
	return res
}

// Tracks normalizes with a wall-clock Normalizer.
func Tracks(records []domain.RawRecord) Result {
	return New().Tracks(records)
}

// Videos normalizes with a wall-clock Normalizer.
func Videos(records []domain.RawRecord) Result {
	return New().Videos(records)
}
