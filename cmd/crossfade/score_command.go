package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/match"
)

func newScoreCommand() *cobra.Command {
	var stem bool
	var threshold int

	cmd := &cobra.Command{
		Use:         "score <identity> <title>",
		Short:       "Print the token-set similarity of two strings",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			score := match.Scorer{Stem: stem}.Score(args[0], args[1])
			verdict := "no match"
			if score >= threshold {
				verdict = "match"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s (threshold %d)\n", score, verdict, threshold)
			return nil
		},
	}

	cmd.Flags().BoolVar(&stem, "stem", false, "Compare English word stems")
	cmd.Flags().IntVar(&threshold, "threshold", match.DefaultThreshold, "Acceptance threshold")
	return cmd
}
