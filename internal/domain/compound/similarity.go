package compound

import (
	"math"
	"math/bits"

	"github.com/turtacn/DiazoScreen/pkg/errors"
)

// SimilarityMetric identifies the pairwise similarity algorithm.
type SimilarityMetric string

const (
	MetricTanimoto SimilarityMetric = "tanimoto"
	MetricDice     SimilarityMetric = "dice"
	MetricCosine   SimilarityMetric = "cosine"
)

// IsValid reports whether the metric is supported.
func (m SimilarityMetric) IsValid() bool {
	switch m {
	case MetricTanimoto, MetricDice, MetricCosine:
		return true
	}
	return false
}

func (m SimilarityMetric) String() string { return string(m) }

// ParseSimilarityMetric converts a user-supplied string into a SimilarityMetric.
func ParseSimilarityMetric(s string) (SimilarityMetric, error) {
	m := SimilarityMetric(s)
	if !m.IsValid() {
		return "", errors.Newf(errors.CodeSimilarityMetricInvalid, "unsupported similarity metric %q", s)
	}
	return m, nil
}

// Calculator computes a symmetric similarity score in [0, 1] between two bit
// fingerprints of identical type and width.
type Calculator interface {
	Score(a, b *Fingerprint) (float64, error)
	Metric() SimilarityMetric
}

// NewCalculator is the factory for similarity calculators.
func NewCalculator(metric SimilarityMetric) (Calculator, error) {
	switch metric {
	case MetricTanimoto:
		return &tanimotoCalculator{}, nil
	case MetricDice:
		return &diceCalculator{}, nil
	case MetricCosine:
		return &cosineCalculator{}, nil
	default:
		return nil, errors.Newf(errors.CodeSimilarityMetricInvalid, "unsupported similarity metric %q", string(metric))
	}
}

// checkComparable rejects fingerprint pairs that cannot be meaningfully scored.
func checkComparable(a, b *Fingerprint) error {
	if a == nil || b == nil {
		return errors.New(errors.CodeInvalidParam, "fingerprints must be non-nil")
	}
	if a.Type != b.Type || a.Length != b.Length {
		return errors.New(errors.CodeValidation, "fingerprints must have same type and dimension")
	}
	return nil
}

// countOverlap returns the popcounts of the AND and OR of two bit vectors.
func countOverlap(a, b *Fingerprint) (intersection, union int) {
	for i := range a.Bits {
		intersection += bits.OnesCount8(a.Bits[i] & b.Bits[i])
		union += bits.OnesCount8(a.Bits[i] | b.Bits[i])
	}
	return intersection, union
}

// ─────────────────────────────────────────────────────────────────────────────
// Tanimoto (Jaccard)
// ─────────────────────────────────────────────────────────────────────────────

type tanimotoCalculator struct{}

func (c *tanimotoCalculator) Metric() SimilarityMetric { return MetricTanimoto }

// Score computes |A∩B| / |A∪B|.  Two all-zero vectors score 0: with no
// structural evidence on either side there is no basis for similarity.
func (c *tanimotoCalculator) Score(a, b *Fingerprint) (float64, error) {
	if err := checkComparable(a, b); err != nil {
		return 0, err
	}
	intersection, union := countOverlap(a, b)
	if union == 0 {
		return 0, nil
	}
	return float64(intersection) / float64(union), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Dice
// ─────────────────────────────────────────────────────────────────────────────

type diceCalculator struct{}

func (c *diceCalculator) Metric() SimilarityMetric { return MetricDice }

// Score computes 2·|A∩B| / (|A| + |B|).
func (c *diceCalculator) Score(a, b *Fingerprint) (float64, error) {
	if err := checkComparable(a, b); err != nil {
		return 0, err
	}
	intersection, _ := countOverlap(a, b)
	denom := a.OnBits + b.OnBits
	if denom == 0 {
		return 0, nil
	}
	return 2 * float64(intersection) / float64(denom), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Cosine
// ─────────────────────────────────────────────────────────────────────────────

type cosineCalculator struct{}

func (c *cosineCalculator) Metric() SimilarityMetric { return MetricCosine }

// Score computes |A∩B| / sqrt(|A|·|B|) — the cosine of binary vectors.
func (c *cosineCalculator) Score(a, b *Fingerprint) (float64, error) {
	if err := checkComparable(a, b); err != nil {
		return 0, err
	}
	intersection, _ := countOverlap(a, b)
	if a.OnBits == 0 || b.OnBits == 0 {
		return 0, nil
	}
	return float64(intersection) / math.Sqrt(float64(a.OnBits)*float64(b.OnBits)), nil
}
