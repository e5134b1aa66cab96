package domain

import "time"

// UnknownRegion is stored when a record carries no market or region code.
const UnknownRegion = "UNKNOWN"

// Track represents a musical track in the domain layer.
type Track struct {
	ID          string
	Name        string
	Artist      string     // primary artist
	Artists     string     // JSON array of every performer, in credit order
	Album       string     // optional
	ReleaseDate *time.Time // nil when the source date was missing or unparseable
	Popularity  int        // 0-100
	DurationMs  int64
	Region      string
	FetchedAt   time.Time
}

// Identity is the string a track is matched by: its name followed by the
// primary artist.
func (t Track) Identity() string {
	switch {
	case t.Name == "":
		return t.Artist
	case t.Artist == "":
		return t.Name
	default:
		return t.Name + " " + t.Artist
	}
}
