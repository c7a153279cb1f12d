package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/ocrsft/ocrsft/encoding"
	"github.com/ZanzyTHEbar/ocrsft/ocrsft/export"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Encode both splits and write them to a libsql database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = a.cfg.Export.DSN
			}
			split, err := a.split()
			if err != nil {
				return err
			}
			tok, err := a.tokenizer()
			if err != nil {
				return err
			}

			store, err := export.Open(dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			run, err := store.CreateRun(ctx, a.cfg)
			if err != nil {
				return err
			}

			maxLength := a.cfg.Encoder.MaxLength
			for _, part := range splitParts(split) {
				ds := encoding.NewOCRDataset(part.pairs, tok, encoding.WithMaxLength(maxLength))
				samples, err := encoding.EncodeAll(ctx, ds, a.cfg.Encoder.Workers)
				if err != nil {
					return fmt.Errorf("%s: %w", part.name, err)
				}
				keys := make([]int64, len(part.pairs))
				for i, p := range part.pairs {
					keys[i] = p.Key
				}
				if err := store.WriteSplit(ctx, run.ID, part.name, keys, samples); err != nil {
					return err
				}
				a.log.Info().Str("run", run.ID.String()).Str("split", part.name).Int("samples", len(samples)).Msg("exported split")
			}

			fmt.Fprintln(cmd.OutOrStdout(), run.ID.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "libsql DSN (default: export.dsn from config)")
	return cmd
}
