package domain

import (
	"fmt"
	"strings"
)

// ConflictPolicy governs how a write interacts with a destination's prior
// contents.
type ConflictPolicy string

const (
	// PolicyReplace leaves the destination holding exactly the written rows.
	PolicyReplace ConflictPolicy = "replace"
	// PolicyAppend inserts rows without deduplication. Re-running a pipeline
	// under append accumulates duplicate correlations.
	PolicyAppend ConflictPolicy = "append"
)

// ParseConflictPolicy accepts "replace" or "append". There is no implicit
// default: an empty string is an error.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyReplace, PolicyAppend:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

// Table is a typed batch of rows headed for one destination.
type Table interface {
	Len() int
	Kind() string
}

type (
	TrackTable       []Track
	VideoTable       []Video
	CorrelationTable []Correlation
)

func (t TrackTable) Len() int       { return len(t) }
func (t VideoTable) Len() int       { return len(t) }
func (t CorrelationTable) Len() int { return len(t) }

func (TrackTable) Kind() string       { return "tracks" }
func (VideoTable) Kind() string       { return "videos" }
func (CorrelationTable) Kind() string { return "correlations" }

// ValidDestination reports whether name is usable as an unquoted SQL table
// identifier.
func ValidDestination(name string) bool {
	if name == "" || len(name) > 63 {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Destinations names the three tables a run writes.
type Destinations struct {
	Tracks       string
	Videos       string
	Correlations string
}

// DefaultDestinations returns the stock table names.
func DefaultDestinations() Destinations {
	return Destinations{
		Tracks:       "spotify_tracks",
		Videos:       "youtube_videos",
		Correlations: "correlations",
	}
}

// WithDefaults fills blank names from DefaultDestinations.
func (d Destinations) WithDefaults() Destinations {
	def := DefaultDestinations()
	if d.Tracks == "" {
		d.Tracks = def.Tracks
	}
	if d.Videos == "" {
		d.Videos = def.Videos
	}
	if d.Correlations == "" {
		d.Correlations = def.Correlations
	}
	return d
}

// Validate checks every name with ValidDestination and rejects reuse of one
// name for two tables.
func (d Destinations) Validate() error {
	names := map[string]string{}
	for _, pair := range [][2]string{{"tracks", d.Tracks}, {"videos", d.Videos}, {"correlations", d.Correlations}} {
		if !ValidDestination(pair[1]) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidDestination, pair[0], pair[1])
		}
		if other, dup := names[strings.ToLower(pair[1])]; dup {
			return fmt.Errorf("%w: %s and %s both use %q", ErrInvalidDestination, other, pair[0], pair[1])
		}
		names[strings.ToLower(pair[1])] = pair[0]
	}
	return nil
}
