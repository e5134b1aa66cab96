package domain

import "time"

// Video is a normalized video-catalog entry.
type Video struct {
	ID           string
	Title        string
	ChannelID    string
	ChannelTitle string
	Category     string // readable name when the raw category id is known
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	PublishedAt  *time.Time
	Region       string
	FetchedAt    time.Time
}
