package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toinnnnn/avaliacao-bigdata/internal/adapters/sqlite"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/dashboard"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := sqlite.NewAdapter(":memory:", domain.DefaultDestinations(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Date(2025, 5, 2, 18, 30, 0, 0, time.UTC)
	released := time.Date(2019, 11, 29, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()
	tables := domain.DefaultDestinations()

	require.NoError(t, store.Persist(ctx, domain.TrackTable{
		{ID: "t1", Name: "Blinding Lights", Artist: "The Weeknd", Artists: `["The Weeknd"]`, ReleaseDate: &released, Popularity: 92, Region: "BR", FetchedAt: now},
		{ID: "t2", Name: "Flowers", Artist: "Miley Cyrus", Artists: `["Miley Cyrus"]`, Popularity: 60, Region: "US", FetchedAt: now},
	}, tables.Tracks, domain.PolicyReplace))
	require.NoError(t, store.Persist(ctx, domain.VideoTable{
		{ID: "v1", Title: "The Weeknd - Blinding Lights", ChannelTitle: "TheWeekndVEVO", Category: "Music", ViewCount: 5000, Region: "BR", FetchedAt: now},
		{ID: "v2", Title: "Miley Cyrus - Flowers", ChannelTitle: "MileyCyrusVEVO", Category: "Music", ViewCount: 1000, Region: "US", FetchedAt: now},
	}, tables.Videos, domain.PolicyReplace))
	require.NoError(t, store.Persist(ctx, domain.CorrelationTable{
		{TrackID: "t1", VideoID: "v1", SimilarityScore: 100, Reason: "token_set:100", RegionSpotify: "BR", RegionYouTube: "BR", FetchedAt: now},
		{TrackID: "t2", VideoID: "v2", SimilarityScore: 88, Reason: "token_set:88", RegionSpotify: "US", RegionYouTube: "US", FetchedAt: now},
	}, tables.Correlations, domain.PolicyReplace))

	return NewHandler(dashboard.NewCatalog(store, tables), nil)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	rec := get(t, newTestHandler(t), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestListTracks(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{name: "all", target: "/tracks", want: []string{"t1", "t2"}},
		{name: "region is case insensitive", target: "/tracks?region=br", want: []string{"t1"}},
		{name: "popularity", target: "/tracks?popularity_min=70", want: []string{"t1"}},
		{name: "years drop undated", target: "/tracks?year_from=2000", want: []string{"t1"}},
		{name: "limit", target: "/tracks?limit=1", want: []string{"t1"}},
		{name: "comma list", target: "/tracks?region=BR,US", want: []string{"t1", "t2"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, h, tc.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			body := decode[listResponse[trackResponse]](t, rec)
			ids := make([]string, 0, len(body.Items))
			for _, item := range body.Items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tc.want, ids)
			assert.Equal(t, len(tc.want), body.Count)
		})
	}
}

func TestListTracks_Shape(t *testing.T) {
	body := decode[listResponse[trackResponse]](t, get(t, newTestHandler(t), "/tracks?region=BR"))

	require.Len(t, body.Items, 1)
	item := body.Items[0]
	assert.Equal(t, []string{"The Weeknd"}, item.Artists)
	require.NotNil(t, item.ReleaseDate)
	assert.Equal(t, "2019-11-29", *item.ReleaseDate)
}

func TestListVideos(t *testing.T) {
	h := newTestHandler(t)

	body := decode[listResponse[videoResponse]](t, get(t, h, "/videos?views_min=2000"))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "v1", body.Items[0].ID)

	body = decode[listResponse[videoResponse]](t, get(t, h, "/videos?channel=MileyCyrusVEVO"))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "v2", body.Items[0].ID)
}

func TestListCorrelations(t *testing.T) {
	h := newTestHandler(t)

	body := decode[listResponse[correlationResponse]](t, get(t, h, "/correlations"))
	require.Len(t, body.Items, 2)
	assert.Equal(t, 92, body.Items[0].Popularity)
	assert.Equal(t, int64(5000), body.Items[0].ViewCount)

	body = decode[listResponse[correlationResponse]](t, get(t, h, "/correlations?min_score=90"))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "t1", body.Items[0].TrackID)

	body = decode[listResponse[correlationResponse]](t, get(t, h, "/correlations?video_region=US"))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "t2", body.Items[0].TrackID)
}

func TestSummary(t *testing.T) {
	rec := get(t, newTestHandler(t), "/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	s := decode[dashboard.Summary](t, rec)
	assert.Equal(t, 2, s.Tracks)
	assert.Equal(t, 2, s.Matches)
	assert.Equal(t, int64(6000), s.TotalViews)
	assert.InDelta(t, 76, s.MeanPopularity, 1e-9)
	assert.InDelta(t, 1, s.PopularityViews, 1e-6)
}

func TestBadRequests(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{name: "non integer", target: "/tracks?popularity_min=high", status: http.StatusBadRequest},
		{name: "inverted range", target: "/videos?views_min=10&views_max=1", status: http.StatusBadRequest},
		{name: "zero limit", target: "/tracks?limit=0", status: http.StatusBadRequest},
		{name: "bad score", target: "/correlations?min_score=x", status: http.StatusBadRequest},
		{name: "bad summary year", target: "/summary?year_to=soon", status: http.StatusBadRequest},
		{name: "unknown route", target: "/playlists", status: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, h, tc.target)
			assert.Equal(t, tc.status, rec.Code)
			assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestWritesAreRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tracks", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type brokenReader struct{}

func (brokenReader) ListTracks(context.Context, string) ([]domain.Track, error) {
	return nil, errors.New("disk on fire")
}

func (brokenReader) ListVideos(context.Context, string) ([]domain.Video, error) {
	return nil, errors.New("disk on fire")
}

func (brokenReader) ListCorrelations(context.Context, string) ([]domain.Correlation, error) {
	return nil, errors.New("disk on fire")
}

func TestReaderFailureIs500(t *testing.T) {
	h := NewHandler(dashboard.NewCatalog(brokenReader{}, domain.DefaultDestinations()), nil)

	rec := get(t, h, "/summary")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}
