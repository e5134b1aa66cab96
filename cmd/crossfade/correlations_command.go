package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/dashboard"
)

func newCorrelationsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var minScore int
	var regions []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "correlations",
		Short: "List persisted correlations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}
			store, err := ctx.openStore(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer store.Close()

			for i := range regions {
				regions[i] = strings.ToUpper(strings.TrimSpace(regions[i]))
			}
			catalog := dashboard.NewCatalog(store, cfg.Tables())
			matches, err := catalog.Correlations(cmd.Context(), dashboard.TrackFilter{Regions: regions}, dashboard.VideoFilter{})
			if err != nil {
				return err
			}

			kept := matches[:0]
			for _, m := range matches {
				if m.SimilarityScore >= minScore {
					kept = append(kept, m)
				}
			}
			if limit > 0 && len(kept) > limit {
				kept = kept[:limit]
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(kept)
			}
			if len(kept) == 0 {
				fmt.Fprintln(out, "No correlations found")
				return nil
			}

			rows := make([][]string, 0, len(kept))
			for _, m := range kept {
				rows = append(rows, []string{
					strconv.Itoa(m.SimilarityScore),
					m.TrackName,
					m.ArtistName,
					m.VideoTitle,
					m.RegionSpotify + "/" + m.RegionYouTube,
					strconv.FormatInt(m.ViewCount, 10),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Score", "Track", "Artist", "Video", "Regions", "Views"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum rows to show (0 for all)")
	cmd.Flags().IntVar(&minScore, "min-score", 0, "Hide correlations scoring below this")
	cmd.Flags().StringSliceVar(&regions, "region", nil, "Only tracks from these markets")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
