// Package dashboard answers read-only questions about the persisted
// catalogs: filtered listings and per-region aggregates.
package dashboard

import (
	"slices"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// Range is an inclusive bound. A nil end is open.
type Range struct {
	Min *int64
	Max *int64
}

// Between returns a closed range.
func Between(lo, hi int64) Range {
	return Range{Min: &lo, Max: &hi}
}

// Bounded reports whether either end is set.
func (r Range) Bounded() bool {
	return r.Min != nil || r.Max != nil
}

func (r Range) Contains(v int64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// TrackFilter selects tracks. Empty lists and unbounded ranges match
// everything. A bounded Years range excludes tracks with no release date.
type TrackFilter struct {
	Regions    []string
	Artists    []string
	Years      Range
	Popularity Range
}

// VideoFilter selects videos. Empty lists and unbounded ranges match
// everything.
type VideoFilter struct {
	Regions    []string
	Categories []string
	Channels   []string
	Views      Range
}

func (f TrackFilter) Match(t domain.Track) bool {
	if !oneOf(f.Regions, t.Region) || !oneOf(f.Artists, t.Artist) {
		return false
	}
	if f.Years.Bounded() {
		if t.ReleaseDate == nil || !f.Years.Contains(int64(t.ReleaseDate.Year())) {
			return false
		}
	}
	return f.Popularity.Contains(int64(t.Popularity))
}

func (f VideoFilter) Match(v domain.Video) bool {
	return oneOf(f.Regions, v.Region) &&
		oneOf(f.Categories, v.Category) &&
		oneOf(f.Channels, v.ChannelTitle) &&
		f.Views.Contains(v.ViewCount)
}

// FilterTracks returns the matching tracks in input order.
func FilterTracks(tracks []domain.Track, f TrackFilter) []domain.Track {
	out := make([]domain.Track, 0, len(tracks))
	for _, t := range tracks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// FilterVideos returns the matching videos in input order.
func FilterVideos(videos []domain.Video, f VideoFilter) []domain.Video {
	out := make([]domain.Video, 0, len(videos))
	for _, v := range videos {
		if f.Match(v) {
			out = append(out, v)
		}
	}
	return out
}

func oneOf(set []string, v string) bool {
	return len(set) == 0 || slices.Contains(set, v)
}
