package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/toinnnnn/avaliacao-bigdata/internal/adapters/csvsource"
	"github.com/toinnnnn/avaliacao-bigdata/internal/adapters/httpx"
	"github.com/toinnnnn/avaliacao-bigdata/internal/adapters/spotify"
	"github.com/toinnnnn/avaliacao-bigdata/internal/adapters/youtube"
	"github.com/toinnnnn/avaliacao-bigdata/internal/config"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/match"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/ports"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var tracksCSV string
	var videosCSV string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, correlate and persist one batch",
		Long: "Run the pipeline once. Tracks come from Spotify unless --tracks-csv is set;\n" +
			"videos come from YouTube unless --videos-csv is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another crossfade run holds %s", cfg.LockPath())
			}
			defer lock.Unlock()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tracks, err := trackSource(runCtx, cfg, tracksCSV, logger)
			if err != nil {
				return err
			}
			videos, err := videoSource(cfg, videosCSV, logger)
			if err != nil {
				return err
			}

			store, err := ctx.openStore(runCtx, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			tp, vp, cp := cfg.Policies()
			pipeline, err := services.NewPipeline(services.Options{
				Tracks:  tracks,
				Videos:  videos,
				Gateway: store,
				Engine: &match.Engine{
					Threshold: cfg.Matching.Threshold,
					Score:     match.Scorer{Stem: cfg.Matching.StemTokens}.Score,
					Workers:   cfg.Matching.Workers,
				},
				Destinations: cfg.Tables(),
				Policies:     services.Policies{Tracks: tp, Videos: vp, Correlations: cp},
				Logger:       logger,
			})
			if err != nil {
				return err
			}

			report, runErr := pipeline.Run(runCtx)
			printReport(cmd.OutOrStdout(), report)
			if runErr != nil {
				return fmt.Errorf("run %s finished with errors: %w", report.RunID, runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tracksCSV, "tracks-csv", "", "Read track records from a CSV file instead of Spotify")
	cmd.Flags().StringVar(&videosCSV, "videos-csv", "", "Read video records from a CSV file instead of YouTube")
	return cmd
}

func httpOptions(cfg *config.Config, logger *slog.Logger) httpx.Options {
	return httpx.Options{
		HTTPClient:  &http.Client{},
		MaxRetries:  cfg.HTTP.MaxRetries,
		BaseBackoff: time.Duration(cfg.HTTP.BackoffMS) * time.Millisecond,
		Timeout:     time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		Logger:      logger,
	}
}

func trackSource(ctx context.Context, cfg *config.Config, csvPath string, logger *slog.Logger) (ports.RecordSource, error) {
	if strings.TrimSpace(csvPath) != "" {
		return csvsource.New(csvPath), nil
	}
	if !cfg.Spotify.Enabled() {
		return nil, errors.New("spotify is not configured: set client_id, client_secret and playlists (or pass --tracks-csv)")
	}
	return spotify.NewClient(ctx, spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		TokenURL:     cfg.Spotify.TokenURL,
		BaseURL:      cfg.Spotify.BaseURL,
		Playlists:    cfg.Spotify.Playlists,
		HTTP:         httpOptions(cfg, logger),
	}), nil
}

func videoSource(cfg *config.Config, csvPath string, logger *slog.Logger) (ports.RecordSource, error) {
	if strings.TrimSpace(csvPath) != "" {
		return csvsource.New(csvPath), nil
	}
	if !cfg.YouTube.Enabled() {
		return nil, errors.New("youtube is not configured: set api_key and regions (or pass --videos-csv)")
	}
	return youtube.NewClient(youtube.Config{
		APIKey:     cfg.YouTube.APIKey,
		BaseURL:    cfg.YouTube.BaseURL,
		Regions:    cfg.YouTube.Regions,
		MaxResults: cfg.YouTube.MaxResults,
		HTTP:       httpOptions(cfg, logger),
	}), nil
}

func printReport(out io.Writer, r services.Report) {
	fmt.Fprintf(out, "Run %s (%s)\n", r.RunID, r.Duration.Round(time.Millisecond))

	rows := [][]string{
		{"tracks", strconv.Itoa(r.Extracted.Tracks), strconv.Itoa(r.Normalized.Tracks), strconv.Itoa(r.Dropped.Tracks), strconv.Itoa(len(r.TrackDiagnostics))},
		{"videos", strconv.Itoa(r.Extracted.Videos), strconv.Itoa(r.Normalized.Videos), strconv.Itoa(r.Dropped.Videos), strconv.Itoa(len(r.VideoDiagnostics))},
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Catalog", "Extracted", "Normalized", "Dropped", "Diagnostics"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))

	fmt.Fprintf(out, "Correlated: %d\n", r.Correlated)

	dests := make([]string, 0, len(r.Persisted))
	for dest := range r.Persisted {
		dests = append(dests, dest)
	}
	sort.Strings(dests)
	persisted := make([][]string, 0, len(dests))
	for _, dest := range dests {
		persisted = append(persisted, []string{dest, strconv.Itoa(r.Persisted[dest])})
	}
	if len(persisted) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Destination", "Rows"}, persisted, []columnAlignment{alignLeft, alignRight}))
	}
}
