package main

import (
	"os"

	internal "github.com/ZanzyTHEbar/ocrsft/ocrsft"
	"github.com/ZanzyTHEbar/ocrsft/ocrsft/config"
	"github.com/ZanzyTHEbar/ocrsft/ocrsft/dataset"
	"github.com/ZanzyTHEbar/ocrsft/ocrsft/tokenizer"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	dataDir    string
	cfg        *config.Config
	log        zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: internal.GetLogger()}

	root := &cobra.Command{
		Use:          internal.DefaultAppName,
		Short:        "Build OCR-correction fine-tuning samples from clean/noisy JSON mappings",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			if a.dataDir != "" {
				cfg.Data.Dir = a.dataDir
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./config.yaml or ~/.config/ocrsft/config.yaml)")
	root.PersistentFlags().StringVar(&a.dataDir, "data", "", "directory containing clean.json and noisy.json")

	root.AddCommand(newInspectCmd(a), newStatsCmd(a), newExportCmd(a))
	return root
}

func (a *app) tokenizer() (tokenizer.Tokenizer, error) {
	tc := a.cfg.Tokenizer
	return tokenizer.New(tokenizer.Config{
		Kind:      tc.Kind,
		Path:      tc.Path,
		Encoding:  tc.Encoding,
		MaxLength: a.cfg.Encoder.MaxLength,
		PadID:     tc.PadID,
		PadToken:  tc.PadToken,
		BosID:     tc.BosID,
	})
}

func (a *app) split() (*dataset.Split, error) {
	pairs, err := dataset.LoadPairs(a.cfg.Data.Dir)
	if err != nil {
		return nil, err
	}
	split, err := dataset.TrainTestSplit(pairs, a.cfg.Data.TestSize, a.cfg.Data.Seed)
	if err != nil {
		return nil, err
	}
	if err := split.Validate(); err != nil {
		return nil, err
	}
	a.log.Info().
		Str("dir", a.cfg.Data.Dir).
		Int("train", len(split.Train)).
		Int("test", len(split.Test)).
		Msg("loaded dataset")
	return split, nil
}

type splitPart struct {
	name  string
	pairs []dataset.Pair
}

func splitParts(split *dataset.Split) []splitPart {
	return []splitPart{{"train", split.Train}, {"test", split.Test}}
}
