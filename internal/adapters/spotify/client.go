// Package spotify extracts playlist tracks from the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/toinnnnn/avaliacao-bigdata/internal/adapters/httpx"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/ports"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	pageSize = 100
	maxPages = 200
)

// Config selects the credentials and the playlist read for each region.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	// Playlists maps a market code to the playlist charting it.
	Playlists map[string]string
	HTTP      httpx.Options
}

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	http      *httpx.Client
	baseURL   string
	playlists map[string]string
	logger    *slog.Logger
}

// compile-time interface assertion
var _ ports.RecordSource = (*Client)(nil)

// NewClient builds a client. With credentials set, requests carry a bearer
// token from the client-credentials flow; without them requests go out
// unauthenticated, which suits proxies and tests.
func NewClient(ctx context.Context, cfg Config) *Client {
	opts := cfg.HTTP
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		tokenURL := cfg.TokenURL
		if tokenURL == "" {
			tokenURL = DefaultTokenURL
		}
		if opts.HTTPClient != nil {
			// The token transport wraps the caller's client.
			ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
		}
		opts.HTTPClient = cc.Client(ctx)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		http:      httpx.New(opts),
		baseURL:   strings.TrimRight(baseURL, "/"),
		playlists: cfg.Playlists,
		logger:    logger.With("component", "spotify"),
	}
}

// Fetch reads every configured playlist, regions in sorted order, and
// returns one raw record per track entry tagged with its region. A failing
// playlist is logged and skipped; the records of the other regions come
// back together with the joined failures. Cancellation stops the fetch.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	regions := make([]string, 0, len(c.playlists))
	for region := range c.playlists {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	var records []domain.RawRecord
	var errs []error
	for _, region := range regions {
		tracks, err := c.playlistTracks(ctx, c.playlists[region])
		if err != nil {
			errs = append(errs, fmt.Errorf("spotify adapter: region %s: %w", region, err))
			if ctx.Err() != nil {
				break
			}
			c.logger.Warn("playlist failed, region skipped", "region", region, "error", err)
			continue
		}
		for _, st := range tracks {
			records = append(records, trackToRecord(st, region))
		}
		c.logger.Info("playlist fetched", "region", region, "count", len(tracks))
	}
	return records, errors.Join(errs...)
}

// playlistTracks follows the paging links of one playlist. Null, local and
// id-less entries are skipped.
func (c *Client) playlistTracks(ctx context.Context, playlistID string) ([]spotifyTrack, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("empty playlist id")
	}

	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", c.baseURL, url.PathEscape(playlistID), pageSize)
	var tracks []spotifyTrack
	for page := 0; next != ""; page++ {
		if page == maxPages {
			return nil, fmt.Errorf("playlist %s: more than %d pages", playlistID, maxPages)
		}

		var body playlistTracksPage
		if err := c.http.GetJSON(ctx, next, &body); err != nil {
			return nil, fmt.Errorf("playlist %s: %w", playlistID, err)
		}
		for _, item := range body.Items {
			if item.Track == nil || item.Track.IsLocal || item.Track.ID == "" {
				continue
			}
			tracks = append(tracks, *item.Track)
		}

		next = ""
		if body.Next != nil {
			next = *body.Next
		}
	}
	return tracks, nil
}
