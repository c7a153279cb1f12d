package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"

	roaring "github.com/RoaringBitmap/roaring"
)

// Split is a seeded train/test partition of a pair list. TrainIndex and
// TestIndex hold positions in the list that was split.
type Split struct {
	Train      []Pair
	Test       []Pair
	TrainIndex *roaring.Bitmap
	TestIndex  *roaring.Bitmap
	total      int
}

// TrainTestSplit shuffles pairs with a PRNG seeded by seed and takes the first
// ceil(testSize*n) shuffled pairs as the test set. The rest, in shuffled
// order, form the train set.
func TrainTestSplit(pairs []Pair, testSize float64, seed uint64) (*Split, error) {
	if math.IsNaN(testSize) || testSize < 0 || testSize >= 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTestSize, testSize)
	}

	n := len(pairs)
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if n > 0 && nTrain == 0 {
		return nil, fmt.Errorf("%w: n=%d test_size=%v", ErrEmptyTrainSplit, n, testSize)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)

	s := &Split{
		Train:      make([]Pair, 0, nTrain),
		Test:       make([]Pair, 0, nTest),
		TrainIndex: roaring.New(),
		TestIndex:  roaring.New(),
		total:      n,
	}
	for i, idx := range perm {
		if i < nTest {
			s.Test = append(s.Test, pairs[idx])
			s.TestIndex.Add(uint32(idx))
		} else {
			s.Train = append(s.Train, pairs[idx])
			s.TrainIndex.Add(uint32(idx))
		}
	}
	return s, nil
}

// Validate checks that the two index sets are disjoint and together cover
// every input position.
func (s *Split) Validate() error {
	if s.TrainIndex == nil || s.TestIndex == nil {
		return fmt.Errorf("split has no index sets")
	}
	if roaring.And(s.TrainIndex, s.TestIndex).GetCardinality() != 0 {
		return fmt.Errorf("train and test splits overlap")
	}
	union := roaring.Or(s.TrainIndex, s.TestIndex)
	if union.GetCardinality() != uint64(s.total) {
		return fmt.Errorf("split covers %d of %d pairs", union.GetCardinality(), s.total)
	}
	if s.total > 0 && union.Maximum() != uint32(s.total-1) {
		return fmt.Errorf("split index out of range: %d", union.Maximum())
	}
	return nil
}
