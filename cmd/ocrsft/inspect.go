package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/ocrsft/ocrsft/encoding"

	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Encode one training sample and print its decoded input and labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			split, err := a.split()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded %d training samples and %d test samples\n", len(split.Train), len(split.Test))

			tok, err := a.tokenizer()
			if err != nil {
				return err
			}
			ds := encoding.NewOCRDataset(split.Train, tok, encoding.WithMaxLength(a.cfg.Encoder.MaxLength))

			sample, err := ds.Get(index)
			if err != nil {
				return err
			}
			pair, _ := ds.Pair(index)
			a.log.Debug().Int("index", index).Int64("key", pair.Key).Int("prompt_len", sample.PromptLen).Msg("encoded sample")

			fmt.Fprintln(out, "Sample keys: [input_ids attention_mask labels]")
			fmt.Fprintln(out, "\n--- Sample Input Text ---")
			fmt.Fprintln(out, tok.Decode(sample.InputIDs, false))
			fmt.Fprintln(out, "\n--- Sample Labels Text ---")
			fmt.Fprintln(out, tok.Decode(sample.MaskedLabels(tok.PadID()), false))

			marker, err := tok.EncodePlain(encoding.AssistantMarker)
			if err != nil {
				return err
			}
			if len(marker) == 0 {
				return fmt.Errorf("tokenizer produced no ids for %s", encoding.AssistantMarker)
			}
			masked, found := sample.AssistantMasked(marker[0])
			if !found {
				fmt.Fprintf(out, "\n%s not present in the encoded input (truncated?)\n", encoding.AssistantMarker)
				return nil
			}
			fmt.Fprintf(out, "\nTokens before and including %s masked? %t\n", encoding.AssistantMarker, masked)
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 3, "training sample index to inspect")
	return cmd
}
