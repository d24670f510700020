package compound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// bitFP builds a small fingerprint with exactly the given bits set.
func bitFP(t *testing.T, length int, setBits ...int) *Fingerprint {
	t.Helper()
	fp := NewFingerprint(ctypes.FPMorgan, make([]byte, (length+7)/8), length)
	for _, b := range setBits {
		fp.SetBit(b)
	}
	return fp
}

func TestParseSimilarityMetric(t *testing.T) {
	m, err := ParseSimilarityMetric("tanimoto")
	require.NoError(t, err)
	assert.Equal(t, MetricTanimoto, m)

	_, err = ParseSimilarityMetric("euclidean")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSimilarityMetricInvalid))
}

func TestNewCalculator(t *testing.T) {
	for _, m := range []SimilarityMetric{MetricTanimoto, MetricDice, MetricCosine} {
		c, err := NewCalculator(m)
		require.NoError(t, err)
		assert.Equal(t, m, c.Metric())
	}
	_, err := NewCalculator(SimilarityMetric("manhattan"))
	assert.Error(t, err)
}

func TestTanimoto_Score(t *testing.T) {
	calc := &tanimotoCalculator{}

	tests := []struct {
		name string
		a, b *Fingerprint
		want float64
	}{
		{name: "identical", a: bitFP(t, 16, 1, 3, 5), b: bitFP(t, 16, 1, 3, 5), want: 1.0},
		{name: "disjoint", a: bitFP(t, 16, 1, 2), b: bitFP(t, 16, 3, 4), want: 0.0},
		{name: "partial overlap", a: bitFP(t, 16, 1, 2, 3), b: bitFP(t, 16, 2, 3, 4), want: 0.5}, // 2/4
		{name: "both empty", a: bitFP(t, 16), b: bitFP(t, 16), want: 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Score(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestTanimoto_Symmetric(t *testing.T) {
	calc := &tanimotoCalculator{}
	a := bitFP(t, 32, 1, 5, 9, 12)
	b := bitFP(t, 32, 5, 9, 30)

	ab, err := calc.Score(a, b)
	require.NoError(t, err)
	ba, err := calc.Score(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestDice_Score(t *testing.T) {
	calc := &diceCalculator{}

	// |A∩B|=2, |A|=3, |B|=3 → 2*2/6
	got, err := calc.Score(bitFP(t, 16, 1, 2, 3), bitFP(t, 16, 2, 3, 4))
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, got, 1e-12)

	// Empty vectors score 0, not NaN.
	got, err = calc.Score(bitFP(t, 16), bitFP(t, 16))
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestCosine_Score(t *testing.T) {
	calc := &cosineCalculator{}

	// |A∩B|=2, |A|=4, |B|=1 → 2/sqrt(4) with B={2}: intersection 1 → 1/2
	got, err := calc.Score(bitFP(t, 16, 1, 2, 3, 4), bitFP(t, 16, 2))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)

	got, err = calc.Score(bitFP(t, 16), bitFP(t, 16, 1))
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestCalculators_RejectMismatchedDimensions(t *testing.T) {
	for _, m := range []SimilarityMetric{MetricTanimoto, MetricDice, MetricCosine} {
		calc, err := NewCalculator(m)
		require.NoError(t, err)
		_, err = calc.Score(bitFP(t, 16, 1), bitFP(t, 32, 1))
		require.Error(t, err, "metric %s", m)
		assert.True(t, errors.IsCode(err, errors.CodeValidation))
	}
}

func TestCalculators_RejectNil(t *testing.T) {
	calc := &tanimotoCalculator{}
	_, err := calc.Score(nil, bitFP(t, 16, 1))
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestScores_WithinUnitInterval(t *testing.T) {
	p, err := NewProvider(ctypes.FPMorgan, ProviderOptions{Bits: 256})
	require.NoError(t, err)

	smiles := []string{"CCO", "CCN", "c1ccccc1", "CC(=O)OC1=CC=CC=C1C(=O)O", "N#N"}
	fps := make([]*Fingerprint, len(smiles))
	for i, s := range smiles {
		fps[i], err = p.Compute(s)
		require.NoError(t, err)
	}

	for _, m := range []SimilarityMetric{MetricTanimoto, MetricDice, MetricCosine} {
		calc, err := NewCalculator(m)
		require.NoError(t, err)
		for i := range fps {
			for j := range fps {
				score, err := calc.Score(fps[i], fps[j])
				require.NoError(t, err)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 1.0)
				if i == j {
					assert.InDelta(t, 1.0, score, 1e-12, "self-similarity, metric %s", m)
				}
			}
		}
	}
}
