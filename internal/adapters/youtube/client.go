// Package youtube extracts the most-popular video chart per region from
// the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/toinnnnn/avaliacao-bigdata/internal/adapters/httpx"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/ports"
)

const (
	DefaultBaseURL    = "https://www.googleapis.com/youtube/v3"
	DefaultMaxResults = 50
	// The API caps a page at 50 items.
	maxPageSize = 50
)

// Config selects the regions charted and the number of videos per region.
type Config struct {
	APIKey     string
	BaseURL    string
	Regions    []string
	MaxResults int
	HTTP       httpx.Options
}

// Client reads video charts.
type Client struct {
	http       *httpx.Client
	baseURL    string
	apiKey     string
	regions    []string
	maxResults int
	logger     *slog.Logger
}

var _ ports.RecordSource = (*Client)(nil)

// NewClient builds a chart client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	logger := cfg.HTTP.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		http:       httpx.New(cfg.HTTP),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		regions:    cfg.Regions,
		maxResults: maxResults,
		logger:     logger.With("component", "youtube"),
	}
}

// Fetch returns up to MaxResults chart entries for each region, in the
// configured region order. A failing region is logged and skipped; the
// records of the other regions come back together with the joined
// failures. Cancellation stops the fetch.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	var records []domain.RawRecord
	var errs []error
	for _, region := range c.regions {
		items, err := c.chart(ctx, region)
		if err != nil {
			errs = append(errs, fmt.Errorf("youtube adapter: region %s: %w", region, err))
			if ctx.Err() != nil {
				break
			}
			c.logger.Warn("chart failed, region skipped", "region", region, "error", err)
			continue
		}
		for _, item := range items {
			records = append(records, itemToRecord(item, region))
		}
		c.logger.Info("chart fetched", "region", region, "count", len(items))
	}
	return records, errors.Join(errs...)
}

func (c *Client) chart(ctx context.Context, region string) ([]videoItem, error) {
	var items []videoItem
	pageToken := ""
	for len(items) < c.maxResults {
		q := url.Values{}
		q.Set("part", "snippet,statistics")
		q.Set("chart", "mostPopular")
		q.Set("regionCode", region)
		q.Set("maxResults", strconv.Itoa(min(c.maxResults-len(items), maxPageSize)))
		if c.apiKey != "" {
			q.Set("key", c.apiKey)
		}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page videoListResponse
		if err := c.http.GetJSON(ctx, c.baseURL+"/videos?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		if page.NextPageToken == "" || len(page.Items) == 0 {
			break
		}
		pageToken = page.NextPageToken
	}
	if len(items) > c.maxResults {
		items = items[:c.maxResults]
	}
	return items, nil
}

// itemToRecord keeps statistics as delivered; the normalizer parses them
// and defaults hidden counts to zero.
func itemToRecord(item videoItem, region string) domain.RawRecord {
	return domain.RawRecord{
		"video_id":      item.ID,
		"title":         item.Snippet.Title,
		"channel_id":    item.Snippet.ChannelID,
		"channel_title": item.Snippet.ChannelTitle,
		"category_id":   item.Snippet.CategoryID,
		"published_at":  item.Snippet.PublishedAt,
		"view_count":    item.Statistics.ViewCount,
		"like_count":    item.Statistics.LikeCount,
		"comment_count": item.Statistics.CommentCount,
		"region":        region,
	}
}
