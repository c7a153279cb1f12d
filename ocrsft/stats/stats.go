// Package stats summarises token usage across encoded samples.
package stats

import (
	"slices"

	"github.com/ZanzyTHEbar/ocrsft/ocrsft/encoding"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the attended length distribution of a split.
type Summary struct {
	Count int

	Mean   float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	Max    float64

	SupervisedMean float64

	// AtCapacity counts samples with no padding, which includes every
	// sample the tokenizer truncated.
	AtCapacity int
	// FullyMasked counts samples with no supervised label at all.
	FullyMasked int
}

// Summarize computes a Summary. maxLength is the fixed sample length.
func Summarize(samples []*encoding.Sample, maxLength int) Summary {
	s := Summary{Count: len(samples)}
	if len(samples) == 0 {
		return s
	}

	lengths := make([]float64, len(samples))
	supervised := make([]float64, len(samples))
	for i, smp := range samples {
		n := smp.Real()
		lengths[i] = float64(n)
		supervised[i] = float64(smp.Supervised())
		if n >= maxLength {
			s.AtCapacity++
		}
		if supervised[i] == 0 {
			s.FullyMasked++
		}
	}

	s.Mean, s.StdDev = stat.MeanStdDev(lengths, nil)
	if len(lengths) < 2 {
		s.StdDev = 0
	}
	s.SupervisedMean = stat.Mean(supervised, nil)

	slices.Sort(lengths)
	s.P50 = stat.Quantile(0.5, stat.Empirical, lengths, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, lengths, nil)
	s.P99 = stat.Quantile(0.99, stat.Empirical, lengths, nil)
	s.Max = floats.Max(lengths)
	return s
}
