// Package compound defines the compound-domain data transfer objects and result
// structures shared across every layer of the DiazoScreen platform.  No domain
// logic lives here — only plain data types that are safe to import from any
// layer without creating circular dependencies.
package compound

import (
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// FingerprintType — molecular fingerprint algorithm identifier
// ─────────────────────────────────────────────────────────────────────────────

// FingerprintType identifies which fingerprint algorithm was used to generate
// a particular bit-vector for a compound.
type FingerprintType string

const (
	// FPMorgan is the circular Morgan / ECFP fingerprint (default radius 2 → ECFP4).
	FPMorgan FingerprintType = "morgan"

	// FPMACCS is the 166-bit MACCS structural keys fingerprint.
	FPMACCS FingerprintType = "maccs"

	// FPTopological is the Daylight-style topological path fingerprint.
	FPTopological FingerprintType = "topological"
)

// IsValid reports whether t is one of the supported fingerprint types.
func (t FingerprintType) IsValid() bool {
	switch t {
	case FPMorgan, FPMACCS, FPTopological:
		return true
	}
	return false
}

// ParseFingerprintType converts a user-supplied string (CLI flag, config value,
// HTTP request field) into a FingerprintType, accepting any letter case.
func ParseFingerprintType(s string) (FingerprintType, error) {
	t := FingerprintType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unsupported fingerprint type %q", s)
	}
	return t, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Label — binary diazotroph-origin class
// ─────────────────────────────────────────────────────────────────────────────

// Label is the binary class of a compound: LabelPositive when the compound is
// produced by at least one nitrogen-fixing organism, LabelNegative otherwise.
type Label int

const (
	LabelNegative Label = 0
	LabelPositive Label = 1
)

// IsValid reports whether l is one of the two defined classes.
func (l Label) IsValid() bool {
	return l == LabelNegative || l == LabelPositive
}

// String implements fmt.Stringer.
func (l Label) String() string {
	switch l {
	case LabelPositive:
		return "positive"
	case LabelNegative:
		return "negative"
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// ParseLabel converts the canonical 0/1 encoding into a Label.
func ParseLabel(v int) (Label, error) {
	l := Label(v)
	if !l.IsValid() {
		return 0, fmt.Errorf("label must be 0 or 1, got %d", v)
	}
	return l, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Prediction — per-compound classifier output
// ─────────────────────────────────────────────────────────────────────────────

// Prediction is the classifier output for a single compound.  Predictions are
// returned in the same order as the input compounds; positional stability is a
// contract callers may rely on when joining predictions back to input rows.
//
// The neighbor, similarity, probability, and predicted-label fields are pointer
// types: all four are nil when no reference neighbor scored at or above the
// similarity cutoff.  A nil probability is distinct from a probability of 0.5 —
// the former means "no evidence", the latter means "evidence exactly at the
// decision boundary".
type Prediction struct {
	// Name is the compound identifier as supplied in the input set.
	Name string `json:"name"`

	// SMILES is the structure string the fingerprint was computed from.
	SMILES string `json:"smiles"`

	// Known is the compound's true label when one was supplied (cross-validation
	// mode); nil for unlabeled query compounds.
	Known *Label `json:"known,omitempty"`

	// NeighborName identifies the most similar reference compound, nil when no
	// neighbor met the cutoff.
	NeighborName *string `json:"neighbor_name,omitempty"`

	// NeighborLabel is the label of the nearest neighbor.
	NeighborLabel *Label `json:"neighbor_label,omitempty"`

	// Similarity is the Tanimoto (or configured metric) score against the
	// nearest neighbor, in [0, 1].
	Similarity *float64 `json:"similarity,omitempty"`

	// Probability is the estimated probability that the compound belongs to the
	// positive class, in [0, 1].
	Probability *float64 `json:"probability,omitempty"`

	// Predicted is the hard class assignment derived from Probability at the
	// 0.5 decision threshold.
	Predicted *Label `json:"predicted,omitempty"`
}

// HasPrediction reports whether the classifier produced a usable prediction
// for this compound.
func (p Prediction) HasPrediction() bool {
	return p.Probability != nil && p.Predicted != nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Evaluation — confusion matrix, ROC, and gains structures
// ─────────────────────────────────────────────────────────────────────────────

// ConfusionMatrix counts prediction outcomes over compounds that received both
// a known label and a prediction.  Compounds with a missing prediction are
// excluded from every cell.
type ConfusionMatrix struct {
	TruePositives  int `json:"true_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

// Total returns the number of evaluated predictions.
func (m ConfusionMatrix) Total() int {
	return m.TruePositives + m.TrueNegatives + m.FalsePositives + m.FalseNegatives
}

// ROCPoint is a single operating point on the receiver-operating-characteristic
// curve, produced by thresholding probabilities at Threshold.
type ROCPoint struct {
	Threshold float64 `json:"threshold"`

	// TruePositiveRate is sensitivity: TP / (TP + FN).
	TruePositiveRate float64 `json:"true_positive_rate"`

	// FalsePositiveRate is 1 − specificity: FP / (FP + TN).
	FalsePositiveRate float64 `json:"false_positive_rate"`
}

// GainsRow describes one probability-ranked group in a gains / lift table.
// Groups are numbered from 1 (highest probabilities) to the group count.
type GainsRow struct {
	Group int `json:"group"`

	// Size is the number of evaluated compounds in this group.
	Size int `json:"size"`

	// Positives is the number of truly positive compounds in this group.
	Positives int `json:"positives"`

	// CumulativePositives is the running positive count through this group.
	CumulativePositives int `json:"cumulative_positives"`

	// CaptureRate is CumulativePositives divided by the total positive count.
	CaptureRate float64 `json:"capture_rate"`

	// Lift is the group's positive rate divided by the base positive rate.
	Lift float64 `json:"lift"`
}

// EvaluationReport is the complete quality assessment of a classification run,
// computed over the subset of predictions whose compounds carry a known label.
type EvaluationReport struct {
	// Evaluated is the number of predictions included in the assessment.
	Evaluated int `json:"evaluated"`

	// Missing is the number of labeled compounds excluded because the
	// classifier produced no prediction for them.
	Missing int `json:"missing"`

	Confusion ConfusionMatrix `json:"confusion"`

	Accuracy    float64 `json:"accuracy"`
	Sensitivity float64 `json:"sensitivity"`
	Specificity float64 `json:"specificity"`
	Precision   float64 `json:"precision"`
	F1          float64 `json:"f1"`

	// AUC is the trapezoidal area under the ROC curve; 0.5 when the
	// probabilities carry no ranking signal.
	AUC float64 `json:"auc"`

	ROC   []ROCPoint `json:"roc"`
	Gains []GainsRow `json:"gains"`
}

// ─────────────────────────────────────────────────────────────────────────────
// GroupSummary — per-strain aggregation output
// ─────────────────────────────────────────────────────────────────────────────

// GroupSummary aggregates the predicted probabilities of all compounds that
// belong to a single group (typically a producing strain).  A compound that is
// a member of several groups contributes to each of them.  Compounds without a
// prediction contribute to no statistic and do not count toward Count.
type GroupSummary struct {
	// Key identifies the group (strain name).
	Key string `json:"key"`

	// Count is the number of member compounds with a usable probability.
	Count int `json:"count"`

	MinProbability    float64 `json:"min_probability"`
	MaxProbability    float64 `json:"max_probability"`
	MeanProbability   float64 `json:"mean_probability"`
	MedianProbability float64 `json:"median_probability"`
}

// ─────────────────────────────────────────────────────────────────────────────
// BuildReport — fingerprint store construction outcome
// ─────────────────────────────────────────────────────────────────────────────

// BuildFailure records one compound that was dropped while constructing a
// fingerprint store, together with the reason it could not be fingerprinted.
type BuildFailure struct {
	Name   string `json:"name"`
	SMILES string `json:"smiles"`
	Reason string `json:"reason"`
}

// BuildReport summarises the outcome of constructing a fingerprint store from
// an input compound set.  Built plus len(Failures) equals the input size.
type BuildReport struct {
	// Built is the number of compounds successfully fingerprinted and stored.
	Built int `json:"built"`

	// Failures lists dropped compounds in input order.
	Failures []BuildFailure `json:"failures,omitempty"`
}

// HasFailures reports whether any compound was dropped during the build.
func (r BuildReport) HasFailures() bool {
	return len(r.Failures) > 0
}
