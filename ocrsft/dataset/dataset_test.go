package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMappings(t *testing.T, clean, noisy string) string {
	t.Helper()
	dir := t.TempDir()
	if clean != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, CleanFile), []byte(clean), 0o644))
	}
	if noisy != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, NoisyFile), []byte(noisy), 0o644))
	}
	return dir
}

func numberedMappings(t *testing.T, n int) string {
	t.Helper()
	clean := "{"
	noisy := "{"
	for i := 0; i < n; i++ {
		if i > 0 {
			clean += ","
			noisy += ","
		}
		clean += fmt.Sprintf("%q:%q", fmt.Sprint(i), fmt.Sprintf("clean %d", i))
		noisy += fmt.Sprintf("%q:%q", fmt.Sprint(i), fmt.Sprintf("noisy %d", i))
	}
	return writeMappings(t, clean+"}", noisy+"}")
}

func TestLoadPairsSortsByNumericKey(t *testing.T) {
	dir := writeMappings(t,
		`{"10": "ten", "2": "two", "1": "one"}`,
		`{"1": "0ne", "2": "tw0", "10": "t3n"}`)

	pairs, err := LoadPairs(dir)
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	assert.Equal(t, Pair{Key: 1, Prompt: "0ne", Target: "one"}, pairs[0])
	assert.Equal(t, Pair{Key: 2, Prompt: "tw0", Target: "two"}, pairs[1])
	assert.Equal(t, Pair{Key: 10, Prompt: "t3n", Target: "ten"}, pairs[2])
}

func TestLoadPairsInputAccessFailures(t *testing.T) {
	tests := []struct {
		name  string
		clean string
		noisy string
	}{
		{"missing clean", "", `{"0": "a"}`},
		{"missing noisy", `{"0": "a"}`, ""},
		{"malformed clean", `{"0": `, `{"0": "a"}`},
		{"malformed noisy", `{"0": "a"}`, `not json`},
		{"non-string values", `{"0": 1}`, `{"0": "a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeMappings(t, tt.clean, tt.noisy)
			_, err := LoadPairs(dir)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInputAccess)
		})
	}
}

func TestLoadPairsKeepsUnderlyingCause(t *testing.T) {
	_, err := LoadPairs(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputAccess)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadPairsKeyMismatch(t *testing.T) {
	dir := writeMappings(t,
		`{"0": "Hello", "5": "world"}`,
		`{"0": "Helo"}`)

	_, err := LoadPairs(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyMismatch)
	assert.Contains(t, err.Error(), "5")
}

func TestLoadPairsIgnoresExtraNoisyKeys(t *testing.T) {
	dir := writeMappings(t,
		`{"0": "Hello"}`,
		`{"0": "Helo", "1": "extra"}`)

	pairs, err := LoadPairs(dir)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

func TestLoadPairsCanonicalisesKeys(t *testing.T) {
	// "07" is looked up as "7" in both mappings
	dir := writeMappings(t,
		`{"07": "seven", "7": "seven"}`,
		`{"7": "sevn"}`)

	pairs, err := LoadPairs(dir)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	for _, p := range pairs {
		assert.Equal(t, int64(7), p.Key)
		assert.Equal(t, "sevn", p.Prompt)
	}
}

func TestLoadPairsInvalidKey(t *testing.T) {
	dir := writeMappings(t, `{"abc": "x"}`, `{"abc": "y"}`)

	_, err := LoadPairs(dir)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestTrainTestSplitSizesAndDisjointness(t *testing.T) {
	for _, n := range []int{1, 2, 9, 10, 11, 100, 257} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			pairs, err := LoadPairs(numberedMappings(t, n))
			require.NoError(t, err)

			testSize := 0.1
			if n == 1 {
				testSize = 0
			}
			split, err := TrainTestSplit(pairs, testSize, 42)
			require.NoError(t, err)
			require.NoError(t, split.Validate())

			assert.Equal(t, n, len(split.Train)+len(split.Test))

			seen := make(map[int64]bool, n)
			for _, p := range append(append([]Pair{}, split.Train...), split.Test...) {
				assert.False(t, seen[p.Key], "pair %d appears twice", p.Key)
				seen[p.Key] = true
			}
			assert.Len(t, seen, n)
		})
	}
}

func TestTrainTestSplitTestCountRoundsUp(t *testing.T) {
	pairs, err := LoadPairs(numberedMappings(t, 11))
	require.NoError(t, err)

	split, err := TrainTestSplit(pairs, 0.1, 42)
	require.NoError(t, err)
	assert.Len(t, split.Test, 2)
	assert.Len(t, split.Train, 9)
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	pairs, err := LoadPairs(numberedMappings(t, 50))
	require.NoError(t, err)

	a, err := TrainTestSplit(pairs, 0.2, 42)
	require.NoError(t, err)
	b, err := TrainTestSplit(pairs, 0.2, 42)
	require.NoError(t, err)

	assert.Equal(t, a.Train, b.Train)
	assert.Equal(t, a.Test, b.Test)
	assert.True(t, a.TestIndex.Equals(b.TestIndex))

	c, err := TrainTestSplit(pairs, 0.2, 7)
	require.NoError(t, err)
	assert.NotEqual(t, a.Train, c.Train)
}

func TestTrainTestSplitInvalidSizes(t *testing.T) {
	pairs := []Pair{{Key: 0}, {Key: 1}}

	for _, size := range []float64{-0.1, 1, 1.5} {
		_, err := TrainTestSplit(pairs, size, 42)
		assert.ErrorIs(t, err, ErrInvalidTestSize, "size %v", size)
	}

	_, err := TrainTestSplit(pairs[:1], 0.1, 42)
	assert.ErrorIs(t, err, ErrEmptyTrainSplit)
}

func TestTrainTestSplitEmptyInput(t *testing.T) {
	split, err := TrainTestSplit(nil, 0.1, 42)
	require.NoError(t, err)
	assert.Empty(t, split.Train)
	assert.Empty(t, split.Test)
	assert.NoError(t, split.Validate())
}

func TestSplitValidateZeroValue(t *testing.T) {
	var split Split
	assert.NotPanics(t, func() {
		assert.Error(t, split.Validate())
	})
}

func TestRetrieveDatasetsSinglePairLandsInTrain(t *testing.T) {
	dir := writeMappings(t, `{"0": "Hello world"}`, `{"0": "Helo wrld"}`)

	train, test, err := RetrieveDatasets(dir, WithTestSize(0))
	require.NoError(t, err)
	require.Len(t, train, 1)
	assert.Empty(t, test)
	assert.Equal(t, "Helo wrld", train[0].Prompt)
	assert.Equal(t, "Hello world", train[0].Target)
}

func TestRetrieveDatasetsDefaults(t *testing.T) {
	dir := numberedMappings(t, 20)

	train, test, err := RetrieveDatasets(dir)
	require.NoError(t, err)
	assert.Len(t, train, 18)
	assert.Len(t, test, 2)

	train2, test2, err := RetrieveDatasets(dir, WithSeed(42), WithTestSize(0.1))
	require.NoError(t, err)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)
}
