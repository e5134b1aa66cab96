package youtube

// videoListResponse is one page of GET /videos?chart=mostPopular.
type videoListResponse struct {
	Items         []videoItem `json:"items"`
	NextPageToken string      `json:"nextPageToken"`
}

type videoItem struct {
	ID         string          `json:"id"`
	Snippet    videoSnippet    `json:"snippet"`
	Statistics videoStatistics `json:"statistics"`
}

type videoSnippet struct {
	Title        string `json:"title"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	CategoryID   string `json:"categoryId"`
	PublishedAt  string `json:"publishedAt"`
}

// videoStatistics counts arrive as decimal strings and are absent when the
// owner hides them.
type videoStatistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}
