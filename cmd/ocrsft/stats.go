package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/ocrsft/ocrsft/encoding"
	"github.com/ZanzyTHEbar/ocrsft/ocrsft/stats"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Encode both splits and print token length statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			split, err := a.split()
			if err != nil {
				return err
			}
			tok, err := a.tokenizer()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			maxLength := a.cfg.Encoder.MaxLength
			for _, part := range splitParts(split) {
				ds := encoding.NewOCRDataset(part.pairs, tok, encoding.WithMaxLength(maxLength))
				samples, err := encoding.EncodeAll(cmd.Context(), ds, a.cfg.Encoder.Workers)
				if err != nil {
					return fmt.Errorf("%s: %w", part.name, err)
				}
				s := stats.Summarize(samples, maxLength)
				fmt.Fprintf(out, "%s: n=%d mean=%.1f std=%.1f p50=%.0f p90=%.0f p99=%.0f max=%.0f supervised_mean=%.1f at_capacity=%d fully_masked=%d\n",
					part.name, s.Count, s.Mean, s.StdDev, s.P50, s.P90, s.P99, s.Max, s.SupervisedMean, s.AtCapacity, s.FullyMasked)
			}
			return nil
		},
	}
}
