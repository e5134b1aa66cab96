package domain

import "fmt"

// RawRecord is one extracted row as the source produced it. Values are
// whatever the source decoded: strings from CSV files, numbers, lists and
// nested values from JSON APIs.
type RawRecord map[string]any

// Lookup returns the first non-nil value stored under any of keys.
func (r RawRecord) Lookup(keys ...string) (any, string, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, k, true
		}
	}
	return nil, "", false
}

// SourceKind names the catalog a batch of raw records came from.
type SourceKind string

const (
	SourceTracks SourceKind = "tracks"
	SourceVideos SourceKind = "videos"
)

// ParseSourceKind validates a textual source kind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(s) {
	case SourceTracks, SourceVideos:
		return SourceKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}
