package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/match"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/normalize"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/ports"
)

// --- Mocks ---

func staticSource(records []domain.RawRecord, err error) ports.RecordSource {
	return ports.RecordSourceFunc(func(context.Context) ([]domain.RawRecord, error) {
		return records, err
	})
}

type persistCall struct {
	table       domain.Table
	destination string
	policy      domain.ConflictPolicy
}

type mockGateway struct {
	calls  []persistCall
	failOn map[string]error
}

func (m *mockGateway) Persist(_ context.Context, table domain.Table, destination string, policy domain.ConflictPolicy) error {
	m.calls = append(m.calls, persistCall{table: table, destination: destination, policy: policy})
	if err := m.failOn[destination]; err != nil {
		return &domain.PersistError{Destination: destination, Rows: table.Len(), Err: err}
	}
	return nil
}

func (m *mockGateway) destinations() []string {
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.destination
	}
	return out
}

func trackRecords() []domain.RawRecord {
	return []domain.RawRecord{
		{"track_id": "t1", "name": "Blinding Lights", "artists": []string{"The Weeknd"}, "region": "BR", "release_date": "2019-11-29"},
		{"track_id": "t2", "name": "Xyzzy Obscure Track", "artists": "Nobody", "release_date": "not a date"},
		{"name": "no id"},
	}
}

func videoRecords() []domain.RawRecord {
	return []domain.RawRecord{
		{"video_id": "v1", "title": "Completely Unrelated Vlog Episode 12", "region": "US"},
		{"video_id": "v2", "title": "The Weeknd - Blinding Lights (Official Video)", "category_id": "10", "region": "US"},
	}
}

func newTestPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	if opts.NewRunID == nil {
		opts.NewRunID = func() string { return "run-1" }
	}
	if opts.Normalizer == nil {
		fixed := time.Date(2025, 5, 2, 18, 30, 0, 0, time.UTC)
		opts.Normalizer = &normalize.Normalizer{Now: func() time.Time { return fixed }}
	}
	p, err := NewPipeline(opts)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

// TestPipeline_Run verifies stage counts and the persisted tables.
func TestPipeline_Run(t *testing.T) {
	gw := &mockGateway{}
	p := newTestPipeline(t, Options{
		Tracks:  staticSource(trackRecords(), nil),
		Videos:  staticSource(videoRecords(), nil),
		Gateway: gw,
	})

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.RunID != "run-1" {
		t.Errorf("run id: got %q", report.RunID)
	}
	if report.Extracted != (Counts{Tracks: 3, Videos: 2}) {
		t.Errorf("extracted: got %+v", report.Extracted)
	}
	if report.Normalized != (Counts{Tracks: 2, Videos: 2}) {
		t.Errorf("normalized: got %+v", report.Normalized)
	}
	if report.Dropped != (Counts{Tracks: 1}) {
		t.Errorf("dropped: got %+v", report.Dropped)
	}
	if len(report.TrackDiagnostics) != 2 {
		t.Errorf("track diagnostics: got %v", report.TrackDiagnostics)
	}
	if report.Correlated != 1 {
		t.Fatalf("correlated: got %d, want 1", report.Correlated)
	}

	want := []string{"spotify_tracks", "youtube_videos", "correlations"}
	got := gw.destinations()
	if len(got) != len(want) {
		t.Fatalf("persist calls: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("persist calls: got %v, want %v", got, want)
		}
		if gw.calls[i].policy != domain.PolicyReplace {
			t.Errorf("%s policy: got %q", want[i], gw.calls[i].policy)
		}
	}

	rows := gw.calls[2].table.(domain.CorrelationTable)
	if rows[0].TrackID != "t1" || rows[0].VideoID != "v2" {
		t.Errorf("correlation: got %s -> %s", rows[0].TrackID, rows[0].VideoID)
	}
	if rows[0].RunID != "run-1" {
		t.Errorf("correlation run id: got %q", rows[0].RunID)
	}
	if rows[0].RegionSpotify != "BR" || rows[0].RegionYouTube != "US" {
		t.Errorf("regions: got %s/%s", rows[0].RegionSpotify, rows[0].RegionYouTube)
	}

	if report.Persisted["spotify_tracks"] != 2 || report.Persisted["correlations"] != 1 {
		t.Errorf("persisted: got %v", report.Persisted)
	}
}

// TestPipeline_SkipsEmptyCorrelations verifies tracks and videos are still
// written when nothing matches.
func TestPipeline_SkipsEmptyCorrelations(t *testing.T) {
	gw := &mockGateway{}
	p := newTestPipeline(t, Options{
		Tracks:  staticSource(trackRecords()[1:2], nil),
		Videos:  staticSource(videoRecords()[:1], nil),
		Gateway: gw,
	})

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Correlated != 0 {
		t.Fatalf("correlated: got %d", report.Correlated)
	}
	got := gw.destinations()
	if len(got) != 2 || got[0] != "spotify_tracks" || got[1] != "youtube_videos" {
		t.Fatalf("persist calls: got %v", got)
	}
	if _, ok := report.Persisted["correlations"]; ok {
		t.Errorf("correlations must not be reported as persisted")
	}
}

// TestPipeline_StageFailures verifies failures are collected without
// stopping later stages.
func TestPipeline_StageFailures(t *testing.T) {
	extractErr := errors.New("quota exceeded")
	diskErr := errors.New("disk full")

	tests := []struct {
		name          string
		tracksErr     error
		failOn        map[string]error
		wantCalls     []string
		wantPersisted []string
		wantIs        error
	}{
		{
			name:          "track extraction fails",
			tracksErr:     extractErr,
			wantCalls:     []string{"spotify_tracks", "youtube_videos"},
			wantPersisted: []string{"spotify_tracks", "youtube_videos"},
			wantIs:        extractErr,
		},
		{
			name:          "video write fails",
			failOn:        map[string]error{"youtube_videos": diskErr},
			wantCalls:     []string{"spotify_tracks", "youtube_videos", "correlations"},
			wantPersisted: []string{"spotify_tracks", "correlations"},
			wantIs:        diskErr,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records := trackRecords()
			if tc.tracksErr != nil {
				records = nil
			}
			gw := &mockGateway{failOn: tc.failOn}
			p := newTestPipeline(t, Options{
				Tracks:  staticSource(records, tc.tracksErr),
				Videos:  staticSource(videoRecords(), nil),
				Gateway: gw,
			})

			report, err := p.Run(context.Background())
			if !errors.Is(err, tc.wantIs) {
				t.Fatalf("expected error wrapping %v, got %v", tc.wantIs, err)
			}

			got := gw.destinations()
			if len(got) != len(tc.wantCalls) {
				t.Fatalf("persist calls: got %v, want %v", got, tc.wantCalls)
			}
			for i := range tc.wantCalls {
				if got[i] != tc.wantCalls[i] {
					t.Fatalf("persist calls: got %v, want %v", got, tc.wantCalls)
				}
			}
			if len(report.Persisted) != len(tc.wantPersisted) {
				t.Fatalf("persisted: got %v, want %v", report.Persisted, tc.wantPersisted)
			}
			for _, dest := range tc.wantPersisted {
				if _, ok := report.Persisted[dest]; !ok {
					t.Errorf("persisted: missing %s in %v", dest, report.Persisted)
				}
			}
		})
	}
}

func TestPipeline_PersistErrorIsTyped(t *testing.T) {
	gw := &mockGateway{failOn: map[string]error{"correlations": errors.New("fk")}}
	p := newTestPipeline(t, Options{
		Tracks:  staticSource(trackRecords(), nil),
		Videos:  staticSource(videoRecords(), nil),
		Gateway: gw,
	})

	_, err := p.Run(context.Background())
	var perr *domain.PersistError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *domain.PersistError, got %v", err)
	}
	if perr.Destination != "correlations" || perr.Rows != 1 {
		t.Errorf("persist error: got %+v", perr)
	}
}

func TestPipeline_CustomDestinationsAndPolicies(t *testing.T) {
	gw := &mockGateway{}
	p := newTestPipeline(t, Options{
		Tracks:       staticSource(trackRecords(), nil),
		Videos:       staticSource(videoRecords(), nil),
		Gateway:      gw,
		Engine:       &match.Engine{Threshold: 85, Score: match.Score, Workers: 4},
		Destinations: domain.Destinations{Correlations: "matches"},
		Policies:     Policies{Correlations: "Append"},
	})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := gw.calls[len(gw.calls)-1]
	if last.destination != "matches" || last.policy != domain.PolicyAppend {
		t.Errorf("correlations call: got %s/%s", last.destination, last.policy)
	}
	if gw.calls[0].policy != domain.PolicyReplace {
		t.Errorf("tracks policy: got %s", gw.calls[0].policy)
	}
}

func TestPipeline_CancelledBeforeCorrelate(t *testing.T) {
	gw := &mockGateway{}
	p := newTestPipeline(t, Options{
		Tracks:  staticSource(trackRecords(), nil),
		Videos:  staticSource(videoRecords(), nil),
		Gateway: gw,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(gw.calls) != 0 {
		t.Errorf("nothing should be persisted, got %v", gw.destinations())
	}
}

func TestNewPipeline_Validation(t *testing.T) {
	src := staticSource(nil, nil)
	gw := &mockGateway{}

	tests := []struct {
		name   string
		opts   Options
		wantIs error
	}{
		{name: "missing sources", opts: Options{Gateway: gw}},
		{name: "missing gateway", opts: Options{Tracks: src, Videos: src}},
		{name: "bad policy", opts: Options{Tracks: src, Videos: src, Gateway: gw, Policies: Policies{Videos: "merge"}}, wantIs: domain.ErrInvalidPolicy},
		{name: "bad destination", opts: Options{Tracks: src, Videos: src, Gateway: gw, Destinations: domain.Destinations{Tracks: "drop table"}}, wantIs: domain.ErrInvalidDestination},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPipeline(tc.opts)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.wantIs != nil && !errors.Is(err, tc.wantIs) {
				t.Fatalf("expected %v, got %v", tc.wantIs, err)
			}
		})
	}
}
