package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// newIntegrationAdapter connects to CROSSFADE_TEST_POSTGRES_DSN with table
// names unique to the test and drops them afterwards.
func newIntegrationAdapter(t *testing.T) (*Adapter, domain.Destinations) {
	t.Helper()
	dsn := os.Getenv("CROSSFADE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CROSSFADE_TEST_POSTGRES_DSN not set")
	}

	suffix := strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	tables := domain.Destinations{
		Tracks:       "it_tracks_" + suffix,
		Videos:       "it_videos_" + suffix,
		Correlations: "it_correlations_" + suffix,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, err := NewAdapter(ctx, dsn, tables, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		drop := fmt.Sprintf("DROP TABLE IF EXISTS %s, %s, %s", tables.Correlations, tables.Videos, tables.Tracks)
		_, _ = a.pool.Exec(context.Background(), drop)
		a.Close()
	})
	return a, tables
}

func TestIntegration_PersistAndRead(t *testing.T) {
	a, tables := newIntegrationAdapter(t)
	ctx := context.Background()
	now := time.Date(2025, 5, 2, 18, 30, 0, 0, time.UTC)
	released := time.Date(2019, 11, 29, 0, 0, 0, 0, time.UTC)

	tracks := domain.TrackTable{
		{ID: "t1", Name: "Blinding Lights", Artist: "The Weeknd", Artists: `["The Weeknd"]`, ReleaseDate: &released, Popularity: 92, Region: "BR", FetchedAt: now},
		{ID: "t2", Name: "Flowers", Artist: "Miley Cyrus", Artists: `["Miley Cyrus"]`, Region: "US", FetchedAt: now},
	}
	videos := domain.VideoTable{
		{ID: "v1", Title: "The Weeknd - Blinding Lights", Category: "Music", ViewCount: 10, Region: "US", FetchedAt: now},
	}
	correlations := domain.CorrelationTable{
		{TrackID: "t1", VideoID: "v1", SimilarityScore: 100, Reason: "token_set:100", RunID: "r1", FetchedAt: now},
	}

	require.NoError(t, a.Persist(ctx, tracks, tables.Tracks, domain.PolicyReplace))
	require.NoError(t, a.Persist(ctx, videos, tables.Videos, domain.PolicyReplace))
	require.NoError(t, a.Persist(ctx, correlations, tables.Correlations, domain.PolicyReplace))

	firstTracks, err := a.ListTracks(ctx, tables.Tracks)
	require.NoError(t, err)
	firstCorrelations, err := a.ListCorrelations(ctx, tables.Correlations)
	require.NoError(t, err)

	// Second identical run leaves identical state, ids included.
	require.NoError(t, a.Persist(ctx, tracks, tables.Tracks, domain.PolicyReplace))
	require.NoError(t, a.Persist(ctx, videos, tables.Videos, domain.PolicyReplace))
	require.NoError(t, a.Persist(ctx, correlations, tables.Correlations, domain.PolicyReplace))

	gotTracks, err := a.ListTracks(ctx, tables.Tracks)
	require.NoError(t, err)
	require.Equal(t, firstTracks, gotTracks)
	require.Len(t, gotTracks, 2)
	require.NotNil(t, gotTracks[0].ReleaseDate)
	require.True(t, gotTracks[0].ReleaseDate.Equal(released))

	gotCorrelations, err := a.ListCorrelations(ctx, tables.Correlations)
	require.NoError(t, err)
	require.Len(t, gotCorrelations, 1)
	require.Equal(t, "r1", gotCorrelations[0].RunID)
	require.Equal(t, firstCorrelations, gotCorrelations)
	require.Equal(t, int64(1), gotCorrelations[0].ID)

	// Empty replace keeps the row.
	require.NoError(t, a.Persist(ctx, domain.CorrelationTable{}, tables.Correlations, domain.PolicyReplace))
	gotCorrelations, err = a.ListCorrelations(ctx, tables.Correlations)
	require.NoError(t, err)
	require.Len(t, gotCorrelations, 1)

	// Append on tracks trips the primary key.
	err = a.Persist(ctx, tracks, tables.Tracks, domain.PolicyAppend)
	var perr *domain.PersistError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, 2, perr.Rows)
}
