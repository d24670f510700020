package classifier

import (
	"sort"

	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// EvaluateOptions tunes report computation.
type EvaluateOptions struct {
	// GainsGroups is the number of probability-ranked groups in the gains
	// table; 0 selects the conventional 10 (deciles).
	GainsGroups int
}

// labeledOutcome is one evaluated prediction: its probability, hard class,
// and true label.
type labeledOutcome struct {
	probability float64
	predicted   ctypes.Label
	known       ctypes.Label
}

// Evaluate computes the quality report for a classification run.  Only
// predictions whose compounds carry a known label participate; labeled
// compounds without a usable prediction are counted as Missing and excluded
// from every statistic rather than being scored as wrong.
func Evaluate(predictions []ctypes.Prediction, opts EvaluateOptions) (*ctypes.EvaluationReport, error) {
	groups := opts.GainsGroups
	if groups == 0 {
		groups = 10
	}
	if groups < 1 {
		return nil, errors.Newf(errors.CodeInvalidParam, "gains group count must be ≥ 1, got %d", groups)
	}

	outcomes := make([]labeledOutcome, 0, len(predictions))
	missing := 0
	for _, p := range predictions {
		if p.Known == nil {
			continue
		}
		if !p.HasPrediction() {
			missing++
			continue
		}
		outcomes = append(outcomes, labeledOutcome{
			probability: *p.Probability,
			predicted:   *p.Predicted,
			known:       *p.Known,
		})
	}
	if len(outcomes) == 0 {
		return nil, errors.New(errors.CodeEvaluationFailed, "no labeled prediction available to evaluate")
	}

	report := &ctypes.EvaluationReport{
		Evaluated: len(outcomes),
		Missing:   missing,
		Confusion: confusion(outcomes),
	}
	fillRates(report)
	report.ROC, report.AUC = rocCurve(outcomes)
	report.Gains = gainsTable(outcomes, groups)
	return report, nil
}

// confusion tallies hard-class outcomes.
func confusion(outcomes []labeledOutcome) ctypes.ConfusionMatrix {
	var m ctypes.ConfusionMatrix
	for _, o := range outcomes {
		switch {
		case o.known == ctypes.LabelPositive && o.predicted == ctypes.LabelPositive:
			m.TruePositives++
		case o.known == ctypes.LabelNegative && o.predicted == ctypes.LabelNegative:
			m.TrueNegatives++
		case o.known == ctypes.LabelNegative && o.predicted == ctypes.LabelPositive:
			m.FalsePositives++
		default:
			m.FalseNegatives++
		}
	}
	return m
}

// ratio guards the divide-by-zero cases: an undefined rate reports as 0.
func ratio(num, denom int) float64 {
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

func fillRates(r *ctypes.EvaluationReport) {
	m := r.Confusion
	r.Accuracy = ratio(m.TruePositives+m.TrueNegatives, m.Total())
	r.Sensitivity = ratio(m.TruePositives, m.TruePositives+m.FalseNegatives)
	r.Specificity = ratio(m.TrueNegatives, m.TrueNegatives+m.FalsePositives)
	r.Precision = ratio(m.TruePositives, m.TruePositives+m.FalsePositives)
	if r.Precision+r.Sensitivity > 0 {
		r.F1 = 2 * r.Precision * r.Sensitivity / (r.Precision + r.Sensitivity)
	}
}

// rocCurve sweeps the decision threshold down through the distinct
// probability values, emitting one operating point per distinct value.  Tied
// probabilities move across the threshold together, which keeps the curve
// honest when the classifier produces many identical scores.  The area is
// accumulated by the trapezoidal rule from the implicit (0,0) origin; a run
// whose probabilities carry no ranking signal therefore scores exactly 0.5.
//
// When only one class is present no curve exists; the AUC falls back to the
// no-signal value 0.5 with an empty point list.
func rocCurve(outcomes []labeledOutcome) ([]ctypes.ROCPoint, float64) {
	totalPos, totalNeg := 0, 0
	for _, o := range outcomes {
		if o.known == ctypes.LabelPositive {
			totalPos++
		} else {
			totalNeg++
		}
	}
	if totalPos == 0 || totalNeg == 0 {
		return nil, 0.5
	}

	sorted := make([]labeledOutcome, len(outcomes))
	copy(sorted, outcomes)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].probability > sorted[b].probability
	})

	points := make([]ctypes.ROCPoint, 0, len(sorted))
	auc := 0.0
	tp, fp := 0, 0
	prevTPR, prevFPR := 0.0, 0.0

	for i := 0; i < len(sorted); {
		threshold := sorted[i].probability
		// Consume the whole tie group at this threshold.
		for i < len(sorted) && sorted[i].probability == threshold {
			if sorted[i].known == ctypes.LabelPositive {
				tp++
			} else {
				fp++
			}
			i++
		}
		tpr := float64(tp) / float64(totalPos)
		fpr := float64(fp) / float64(totalNeg)
		points = append(points, ctypes.ROCPoint{
			Threshold:         threshold,
			TruePositiveRate:  tpr,
			FalsePositiveRate: fpr,
		})
		auc += (fpr - prevFPR) * (tpr + prevTPR) / 2
		prevTPR, prevFPR = tpr, fpr
	}
	return points, auc
}

// gainsTable splits the probability-ranked outcomes into groups as equal in
// size as the division allows (earlier groups absorb the remainder) and
// reports per-group positive capture and lift against the base positive rate.
func gainsTable(outcomes []labeledOutcome, groups int) []ctypes.GainsRow {
	sorted := make([]labeledOutcome, len(outcomes))
	copy(sorted, outcomes)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].probability > sorted[b].probability
	})

	if groups > len(sorted) {
		groups = len(sorted)
	}

	total := len(sorted)
	totalPos := 0
	for _, o := range sorted {
		if o.known == ctypes.LabelPositive {
			totalPos++
		}
	}
	baseRate := ratio(totalPos, total)

	rows := make([]ctypes.GainsRow, 0, groups)
	base := total / groups
	remainder := total % groups
	start := 0
	cumPos := 0
	for g := 0; g < groups; g++ {
		size := base
		if g < remainder {
			size++
		}
		pos := 0
		for _, o := range sorted[start : start+size] {
			if o.known == ctypes.LabelPositive {
				pos++
			}
		}
		start += size
		cumPos += pos

		row := ctypes.GainsRow{
			Group:               g + 1,
			Size:                size,
			Positives:           pos,
			CumulativePositives: cumPos,
			CaptureRate:         ratio(cumPos, totalPos),
		}
		if baseRate > 0 {
			row.Lift = ratio(pos, size) / baseRate
		}
		rows = append(rows, row)
	}
	return rows
}
