package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/DiazoScreen/internal/application/classifier"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/dataset"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// evaluateOptions holds the evaluate subcommand flags.
type evaluateOptions struct {
	labeledPath     string
	cutoff          float64
	metric          string
	fingerprintType string
	gainsGroups     int
}

// EvaluateResult is the printable outcome of a leave-one-out evaluation.
type EvaluateResult struct {
	Compounds int                      `json:"compounds"`
	Dropped   int                      `json:"dropped"`
	Report    *ctypes.EvaluationReport `json:"report"`
}

// NewEvaluateCmd creates the evaluate subcommand: leave-one-out
// cross-validation over the labeled reference set plus the quality report.
func NewEvaluateCmd() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Cross-validate the classifier on the labeled reference set",
		Long: "Runs leave-one-out cross-validation over the labeled reference compounds\n" +
			"and reports the confusion matrix, accuracy, AUC, and gains table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.labeledPath, "labeled", "", "labeled reference CSV (name,smiles,label)")
	f.Float64Var(&opts.cutoff, "cutoff", 0, "minimum similarity for a neighbor, in [0,1]")
	f.StringVar(&opts.metric, "metric", "", "similarity metric (tanimoto, dice, cosine)")
	f.StringVar(&opts.fingerprintType, "fingerprint", "", "fingerprint type (morgan, maccs, topological)")
	f.IntVar(&opts.gainsGroups, "gains-groups", 0, "gains table group count (default 10)")
	cmd.MarkFlagRequired("labeled")

	return cmd
}

func runEvaluate(cmd *cobra.Command, opts *evaluateOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	applyClassifierOverrides(cmd, cliCtx, opts.cutoff, opts.metric, opts.fingerprintType)

	set, err := dataset.LoadLabeledSet(opts.labeledPath)
	if err != nil {
		return err
	}

	svc, err := newClassifierService(cliCtx)
	if err != nil {
		return err
	}

	result, err := svc.CrossValidate(cmd.Context(), set)
	if err != nil {
		return err
	}

	report, err := classifier.Evaluate(result.Predictions, classifier.EvaluateOptions{
		GainsGroups: opts.gainsGroups,
	})
	if err != nil {
		return err
	}

	return PrintResult(cmd, &EvaluateResult{
		Compounds: set.Len(),
		Dropped:   len(result.Build.Failures),
		Report:    report,
	})
}

// applyClassifierOverrides folds explicit command-line flags into the loaded
// configuration; flags the user did not set leave the config untouched.
func applyClassifierOverrides(cmd *cobra.Command, cliCtx *CLIContext, cutoff float64, metric, fpType string) {
	if cmd.Flags().Changed("cutoff") {
		cliCtx.Config.Classifier.Cutoff = cutoff
	}
	if metric != "" {
		cliCtx.Config.Classifier.SimilarityMetric = metric
	}
	if fpType != "" {
		cliCtx.Config.Classifier.FingerprintType = fpType
	}
}

// String renders the text output.
func (r *EvaluateResult) String() string {
	var sb strings.Builder
	m := r.Report.Confusion
	fmt.Fprintf(&sb, "Evaluated %d of %d compounds (%d missing, %d dropped)\n",
		r.Report.Evaluated, r.Compounds, r.Report.Missing, r.Dropped)
	fmt.Fprintf(&sb, "Confusion: TP=%d TN=%d FP=%d FN=%d\n",
		m.TruePositives, m.TrueNegatives, m.FalsePositives, m.FalseNegatives)
	fmt.Fprintf(&sb, "Accuracy=%.4f Sensitivity=%.4f Specificity=%.4f Precision=%.4f F1=%.4f AUC=%.4f",
		r.Report.Accuracy, r.Report.Sensitivity, r.Report.Specificity,
		r.Report.Precision, r.Report.F1, r.Report.AUC)
	return sb.String()
}

// TableHeaders implements the table output.
func (r *EvaluateResult) TableHeaders() []string { return []string{"metric", "value"} }

// TableRows implements the table output.
func (r *EvaluateResult) TableRows() [][]string {
	m := r.Report.Confusion
	return [][]string{
		{"compounds", strconv.Itoa(r.Compounds)},
		{"evaluated", strconv.Itoa(r.Report.Evaluated)},
		{"missing", strconv.Itoa(r.Report.Missing)},
		{"dropped", strconv.Itoa(r.Dropped)},
		{"true_positives", strconv.Itoa(m.TruePositives)},
		{"true_negatives", strconv.Itoa(m.TrueNegatives)},
		{"false_positives", strconv.Itoa(m.FalsePositives)},
		{"false_negatives", strconv.Itoa(m.FalseNegatives)},
		{"accuracy", formatFloat(r.Report.Accuracy)},
		{"sensitivity", formatFloat(r.Report.Sensitivity)},
		{"specificity", formatFloat(r.Report.Specificity)},
		{"precision", formatFloat(r.Report.Precision)},
		{"f1", formatFloat(r.Report.F1)},
		{"auc", formatFloat(r.Report.AUC)},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
