package dashboard

import (
	"context"
	"fmt"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/ports"
)

// Catalog reads the persisted tables and applies filters at display time.
// It never writes.
type Catalog struct {
	reader ports.CatalogReader
	tables domain.Destinations
}

func NewCatalog(reader ports.CatalogReader, tables domain.Destinations) *Catalog {
	return &Catalog{reader: reader, tables: tables.WithDefaults()}
}

func (c *Catalog) Tracks(ctx context.Context, f TrackFilter) ([]domain.Track, error) {
	tracks, err := c.reader.ListTracks(ctx, c.tables.Tracks)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list tracks: %w", err)
	}
	return FilterTracks(tracks, f), nil
}

func (c *Catalog) Videos(ctx context.Context, f VideoFilter) ([]domain.Video, error) {
	videos, err := c.reader.ListVideos(ctx, c.tables.Videos)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list videos: %w", err)
	}
	return FilterVideos(videos, f), nil
}

// Correlations returns the correlations whose track passes tf and whose
// video passes vf.
func (c *Catalog) Correlations(ctx context.Context, tf TrackFilter, vf VideoFilter) ([]Match, error) {
	_, _, matches, err := c.load(ctx, tf, vf)
	return matches, err
}

// Summary aggregates the filtered catalogs.
func (c *Catalog) Summary(ctx context.Context, tf TrackFilter, vf VideoFilter) (Summary, error) {
	tracks, videos, matches, err := c.load(ctx, tf, vf)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(tracks, videos, matches), nil
}

func (c *Catalog) load(ctx context.Context, tf TrackFilter, vf VideoFilter) ([]domain.Track, []domain.Video, []Match, error) {
	tracks, err := c.Tracks(ctx, tf)
	if err != nil {
		return nil, nil, nil, err
	}
	videos, err := c.Videos(ctx, vf)
	if err != nil {
		return nil, nil, nil, err
	}
	correlations, err := c.reader.ListCorrelations(ctx, c.tables.Correlations)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dashboard: list correlations: %w", err)
	}
	return tracks, videos, JoinMatches(correlations, tracks, videos), nil
}
