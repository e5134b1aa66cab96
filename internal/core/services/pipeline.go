// Package services sequences the catalog pipeline over the core ports.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/match"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/normalize"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/ports"
)

// Policies picks the conflict policy of each destination.
type Policies struct {
	Tracks       domain.ConflictPolicy
	Videos       domain.ConflictPolicy
	Correlations domain.ConflictPolicy
}

// DefaultPolicies replaces every destination.
func DefaultPolicies() Policies {
	return Policies{
		Tracks:       domain.PolicyReplace,
		Videos:       domain.PolicyReplace,
		Correlations: domain.PolicyReplace,
	}
}

// Options wires a Pipeline. Tracks, Videos and Gateway are required; the
// rest fall back to defaults.
type Options struct {
	Tracks       ports.RecordSource
	Videos       ports.RecordSource
	Gateway      ports.Gateway
	Engine       *match.Engine
	Normalizer   *normalize.Normalizer
	Destinations domain.Destinations
	Policies     Policies
	Logger       *slog.Logger
	// NewRunID names each run. Defaults to a random UUID.
	NewRunID func() string
}

// Pipeline runs extract, normalize, correlate and persist as one batch.
type Pipeline struct {
	tracks     ports.RecordSource
	videos     ports.RecordSource
	gateway    ports.Gateway
	engine     *match.Engine
	normalizer *normalize.Normalizer
	tables     domain.Destinations
	policies   Policies
	logger     *slog.Logger
	newRunID   func() string
}

// NewPipeline validates opts and constructs a Pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Tracks == nil || opts.Videos == nil {
		return nil, errors.New("service: both record sources are required")
	}
	if opts.Gateway == nil {
		return nil, errors.New("service: gateway is required")
	}

	tables := opts.Destinations.WithDefaults()
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	policies, err := opts.Policies.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	p := &Pipeline{
		tracks:     opts.Tracks,
		videos:     opts.Videos,
		gateway:    opts.Gateway,
		engine:     opts.Engine,
		normalizer: opts.Normalizer,
		tables:     tables,
		policies:   policies,
		logger:     opts.Logger,
		newRunID:   opts.NewRunID,
	}
	if p.engine == nil {
		p.engine = match.NewEngine(match.DefaultThreshold)
	}
	if p.normalizer == nil {
		p.normalizer = normalize.New()
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p.newRunID == nil {
		p.newRunID = uuid.NewString
	}
	return p, nil
}

// withDefaults fills blank policies with replace and validates the rest.
func (p Policies) withDefaults() (Policies, error) {
	out := DefaultPolicies()
	for _, f := range []struct {
		raw domain.ConflictPolicy
		dst *domain.ConflictPolicy
	}{
		{p.Tracks, &out.Tracks},
		{p.Videos, &out.Videos},
		{p.Correlations, &out.Correlations},
	} {
		if f.raw == "" {
			continue
		}
		policy, err := domain.ParseConflictPolicy(string(f.raw))
		if err != nil {
			return Policies{}, err
		}
		*f.dst = policy
	}
	return out, nil
}

// Counts holds one figure per catalog.
type Counts struct {
	Tracks int
	Videos int
}

// Report describes one run stage by stage. Persisted is keyed by
// destination name and holds only successful writes.
type Report struct {
	RunID            string
	StartedAt        time.Time
	Duration         time.Duration
	Extracted        Counts
	Normalized       Counts
	Dropped          Counts
	Correlated       int
	Persisted        map[string]int
	TrackDiagnostics []normalize.Diagnostic
	VideoDiagnostics []normalize.Diagnostic
}

// Run executes the pipeline once. Extraction and persistence failures are
// logged and collected, the remaining stages still run, and the collected
// failures come back joined. The report is valid even when err is not nil.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{
		RunID:     p.newRunID(),
		StartedAt: start.UTC(),
		Persisted: map[string]int{},
	}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("pipeline started")

	var errs []error
	fail := func(stage string, err error) {
		logger.Error("stage failed", "stage", stage, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", stage, err))
	}

	rawTracks, err := p.tracks.Fetch(ctx)
	if err != nil {
		fail("extract tracks", err)
	}
	rawVideos, err := p.videos.Fetch(ctx)
	if err != nil {
		fail("extract videos", err)
	}
	report.Extracted = Counts{Tracks: len(rawTracks), Videos: len(rawVideos)}
	logger.Info("extracted", "stage", "extract", "tracks", len(rawTracks), "videos", len(rawVideos))

	tracks := p.normalizer.Tracks(rawTracks)
	videos := p.normalizer.Videos(rawVideos)
	report.Normalized = Counts{Tracks: tracks.Len(), Videos: videos.Len()}
	report.Dropped = Counts{Tracks: tracks.Dropped, Videos: videos.Dropped}
	report.TrackDiagnostics = tracks.Diagnostics
	report.VideoDiagnostics = videos.Diagnostics
	for _, d := range tracks.Diagnostics {
		logger.Debug("track field degraded", "diagnostic", d.String())
	}
	for _, d := range videos.Diagnostics {
		logger.Debug("video field degraded", "diagnostic", d.String())
	}
	logger.Info("normalized", "stage", "normalize",
		"tracks", tracks.Len(), "videos", videos.Len(),
		"dropped", tracks.Dropped+videos.Dropped,
		"diagnostics", len(tracks.Diagnostics)+len(videos.Diagnostics))

	correlations, err := p.engine.CorrelateContext(ctx, tracks.Tracks, videos.Videos)
	if err != nil {
		fail("correlate", err)
		report.Duration = time.Since(start)
		return report, errors.Join(errs...)
	}
	for i := range correlations {
		correlations[i].RunID = report.RunID
	}
	report.Correlated = len(correlations)
	logger.Info("correlated", "stage", "correlate", "count", len(correlations), "threshold", p.engine.Threshold)

	p.persist(ctx, logger, &report, fail, domain.TrackTable(tracks.Tracks), p.tables.Tracks, p.policies.Tracks)
	p.persist(ctx, logger, &report, fail, domain.VideoTable(videos.Videos), p.tables.Videos, p.policies.Videos)
	if len(correlations) == 0 {
		logger.Info("no correlations, destination left untouched", "destination", p.tables.Correlations)
	} else {
		p.persist(ctx, logger, &report, fail, domain.CorrelationTable(correlations), p.tables.Correlations, p.policies.Correlations)
	}

	report.Duration = time.Since(start)
	logger.Info("pipeline finished", "duration", report.Duration, "failures", len(errs))
	return report, errors.Join(errs...)
}

func (p *Pipeline) persist(ctx context.Context, logger *slog.Logger, report *Report, fail func(string, error), table domain.Table, dest string, policy domain.ConflictPolicy) {
	if err := p.gateway.Persist(ctx, table, dest, policy); err != nil {
		fail("persist "+dest, err)
		return
	}
	report.Persisted[dest] = table.Len()
	logger.Info("persisted", "stage", "persist", "destination", dest, "rows", table.Len(), "policy", string(policy))
}
