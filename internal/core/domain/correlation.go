package domain

import "time"

// Correlation asserts a probable match between one Track and one Video.
// ID is assigned by the store; rows built by the engine carry zero.
type Correlation struct {
	ID              int64
	TrackID         string
	VideoID         string
	SimilarityScore int
	Reason          string
	RegionSpotify   string
	RegionYouTube   string
	TrackName       string
	ArtistName      string
	VideoTitle      string
	RunID           string
	FetchedAt       time.Time
}
