package compound

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// scriptedCalculator returns pre-set scores keyed by candidate popcount-free
// identity: it maps the candidate's first on-bit to a score.  Used to exercise
// ranking edge cases (NaN, exact ties) that real metrics cannot produce on
// demand.
type scriptedCalculator struct {
	scores map[int]float64
}

func (c *scriptedCalculator) Metric() SimilarityMetric { return MetricTanimoto }

func (c *scriptedCalculator) Score(_, b *Fingerprint) (float64, error) {
	for i := 0; i < b.Length; i++ {
		if b.GetBit(i) {
			return c.scores[i], nil
		}
	}
	return 0, nil
}

// scriptedStore builds a store whose i-th entry has exactly bit i set.
func scriptedStore(t *testing.T, n int) *Store {
	t.Helper()
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = Entry{
			Compound:    Compound{Name: string(rune('a' + i)), SMILES: "C"},
			Fingerprint: bitFP(t, 64, i),
		}
	}
	return &Store{fpType: ctypes.FPMorgan, entries: entries}
}

func TestSearch_RanksDescending(t *testing.T) {
	store := scriptedStore(t, 4)
	calc := &scriptedCalculator{scores: map[int]float64{0: 0.2, 1: 0.9, 2: 0.5, 3: 0.7}}

	hits, err := Search(store, bitFP(t, 64, 0), calc, 0, NoExclusion)
	require.NoError(t, err)
	require.Len(t, hits, 4)
	assert.Equal(t, []int{1, 3, 2, 0}, []int{hits[0].Index, hits[1].Index, hits[2].Index, hits[3].Index})
}

func TestSearch_TiesBreakTowardLowerIndex(t *testing.T) {
	store := scriptedStore(t, 5)
	calc := &scriptedCalculator{scores: map[int]float64{0: 0.5, 1: 0.8, 2: 0.8, 3: 0.8, 4: 0.1}}

	hits, err := Search(store, bitFP(t, 64, 0), calc, 0, NoExclusion)
	require.NoError(t, err)
	require.Len(t, hits, 5)
	assert.Equal(t, 1, hits[0].Index)
	assert.Equal(t, 2, hits[1].Index)
	assert.Equal(t, 3, hits[2].Index)
}

func TestSearch_CutoffFilters(t *testing.T) {
	store := scriptedStore(t, 4)
	calc := &scriptedCalculator{scores: map[int]float64{0: 0.2, 1: 0.9, 2: 0.5, 3: 0.7}}
	query := bitFP(t, 64, 0)

	hits, err := Search(store, query, calc, 0.6, NoExclusion)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Index)
	assert.Equal(t, 3, hits[1].Index)

	// A score exactly at the cutoff is admitted.
	hits, err = Search(store, query, calc, 0.5, NoExclusion)
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	// Raising the cutoff never adds hits.
	prev := store.Len() + 1
	for _, cutoff := range []float64{0, 0.25, 0.5, 0.75, 1} {
		hits, err := Search(store, query, calc, cutoff, NoExclusion)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(hits), prev)
		prev = len(hits)
	}
}

func TestSearch_EmptyWhenNothingClearsCutoff(t *testing.T) {
	store := scriptedStore(t, 3)
	calc := &scriptedCalculator{scores: map[int]float64{0: 0.1, 1: 0.2, 2: 0.3}}

	hits, err := Search(store, bitFP(t, 64, 0), calc, 0.9, NoExclusion)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_ExcludeIndexRemovedBeforeRanking(t *testing.T) {
	store := scriptedStore(t, 3)
	calc := &scriptedCalculator{scores: map[int]float64{0: 0.9, 1: 0.8, 2: 0.7}}

	hits, err := Search(store, bitFP(t, 64, 0), calc, 0, 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Index, "excluded top candidate must not appear")
	assert.Equal(t, 2, hits[1].Index)
}

func TestSearch_NaNScoresDiscarded(t *testing.T) {
	store := scriptedStore(t, 3)
	calc := &scriptedCalculator{scores: map[int]float64{0: math.NaN(), 1: 0.4, 2: math.NaN()}}

	hits, err := Search(store, bitFP(t, 64, 0), calc, 0, NoExclusion)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Index)

	// A NaN never satisfies even a zero cutoff.
	hits, err = Search(store, bitFP(t, 64, 0), &scriptedCalculator{scores: map[int]float64{0: math.NaN(), 1: math.NaN(), 2: math.NaN()}}, 0, NoExclusion)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_InvalidCutoff(t *testing.T) {
	store := scriptedStore(t, 1)
	calc := &scriptedCalculator{scores: map[int]float64{0: 1}}
	for _, cutoff := range []float64{-0.1, 1.1} {
		_, err := Search(store, bitFP(t, 64, 0), calc, cutoff, NoExclusion)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeCutoffInvalid))
	}
}

func TestSearch_NilArguments(t *testing.T) {
	store := scriptedStore(t, 1)
	calc := &scriptedCalculator{scores: map[int]float64{}}

	_, err := Search(nil, bitFP(t, 64, 0), calc, 0, NoExclusion)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = Search(store, nil, calc, 0, NoExclusion)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	_, err = Search(store, bitFP(t, 64, 0), nil, 0, NoExclusion)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestNearestNeighbor(t *testing.T) {
	store := scriptedStore(t, 3)
	calc := &scriptedCalculator{scores: map[int]float64{0: 0.3, 1: 0.9, 2: 0.6}}

	hit, err := NearestNeighbor(store, bitFP(t, 64, 0), calc, 0, NoExclusion)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, 1, hit.Index)
	assert.InDelta(t, 0.9, hit.Score, 1e-12)

	hit, err = NearestNeighbor(store, bitFP(t, 64, 0), calc, 0.95, NoExclusion)
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestSearch_RealFingerprints_SelfIsTop(t *testing.T) {
	provider := testProvider(t)
	inputs := []Input{
		{Name: "ibuprofen", SMILES: "CC(C)CC1=CC=C(C=C1)C(C)C(=O)O"},
		{Name: "ethanol", SMILES: "CCO"},
		{Name: "benzene", SMILES: "c1ccccc1"},
	}
	store, _, err := BuildStore(context.Background(), provider, inputs, BuildOptions{})
	require.NoError(t, err)

	calc, err := NewCalculator(MetricTanimoto)
	require.NoError(t, err)

	query, err := provider.Compute("CC(C)CC1=CC=C(C=C1)C(C)C(=O)O")
	require.NoError(t, err)

	hits, err := Search(store, query, calc, 0, NoExclusion)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, 0, hits[0].Index)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-12)

	// Excluding the identical compound promotes a different neighbor.
	hits, err = Search(store, query, calc, 0, 0)
	require.NoError(t, err)
	for _, h := range hits {
		assert.NotEqual(t, 0, h.Index)
	}
}
