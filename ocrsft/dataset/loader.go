// Package dataset loads aligned noisy/clean OCR mappings and partitions them
// into train and test sets.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const (
	CleanFile = "clean.json"
	NoisyFile = "noisy.json"
)

// Pair is one prompt/target example: the noisy OCR text and its clean counterpart.
type Pair struct {
	Key    int64
	Prompt string
	Target string
}

type options struct {
	testSize float64
	seed     uint64
}

// Option configures RetrieveDatasets.
type Option func(*options)

// WithTestSize sets the fraction of pairs placed in the test split.
func WithTestSize(size float64) Option {
	return func(o *options) { o.testSize = size }
}

// WithSeed sets the shuffle seed.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// RetrieveDatasets loads the pairs under dir and splits them. Defaults to a
// 10% test split with seed 42.
func RetrieveDatasets(dir string, opts ...Option) (train, test []Pair, err error) {
	o := options{testSize: 0.1, seed: 42}
	for _, opt := range opts {
		opt(&o)
	}

	pairs, err := LoadPairs(dir)
	if err != nil {
		return nil, nil, err
	}

	split, err := TrainTestSplit(pairs, o.testSize, o.seed)
	if err != nil {
		return nil, nil, err
	}
	return split.Train, split.Test, nil
}

// LoadPairs reads clean.json and noisy.json from dir and aligns them by the
// numeric value of the clean keys, in ascending order.
func LoadPairs(dir string) ([]Pair, error) {
	clean, err := readMapping(filepath.Join(dir, CleanFile))
	if err != nil {
		return nil, err
	}
	noisy, err := readMapping(filepath.Join(dir, NoisyFile))
	if err != nil {
		return nil, err
	}

	keys := make([]int64, 0, len(clean))
	for k := range clean {
		n, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, k)
		}
		keys = append(keys, n)
	}
	slices.Sort(keys)

	pairs := make([]Pair, 0, len(keys))
	for _, n := range keys {
		k := strconv.FormatInt(n, 10)
		prompt, ok := noisy[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s not in %s", ErrKeyMismatch, k, NoisyFile)
		}
		target, ok := clean[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s not in %s", ErrKeyMismatch, k, CleanFile)
		}
		pairs = append(pairs, Pair{Key: n, Prompt: prompt, Target: target})
	}
	return pairs, nil
}

func readMapping(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputAccess, err)
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputAccess, err)
	}
	return m, nil
}
