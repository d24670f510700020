package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/DiazoScreen/internal/application/classifier"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/dataset"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// predictOptions holds the predict subcommand flags.
type predictOptions struct {
	labeledPath     string
	queriesPath     string
	membershipPath  string
	cutoff          float64
	metric          string
	fingerprintType string
	sortKey         string
}

// PredictResult is the printable outcome of extension-mode classification.
type PredictResult struct {
	Predictions []ctypes.Prediction   `json:"predictions"`
	Missing     int                   `json:"missing"`
	Dropped     int                   `json:"dropped"`
	Strains     []ctypes.GroupSummary `json:"strains,omitempty"`
}

// NewPredictCmd creates the predict subcommand: classify unlabeled query
// compounds against the labeled reference set, optionally aggregating the
// probabilities per producing strain.
func NewPredictCmd() *cobra.Command {
	opts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify unlabeled compounds against the labeled reference set",
		Long: "Classifies each query compound by its most similar labeled reference\n" +
			"neighbor.  With a compound→strain membership table, probabilities are\n" +
			"also rolled up per strain.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.labeledPath, "labeled", "", "labeled reference CSV (name,smiles,label)")
	f.StringVar(&opts.queriesPath, "queries", "", "unlabeled query CSV (name,smiles)")
	f.StringVar(&opts.membershipPath, "membership", "", "compound→strain membership CSV (compound,strain)")
	f.Float64Var(&opts.cutoff, "cutoff", 0, "minimum similarity for a neighbor, in [0,1]")
	f.StringVar(&opts.metric, "metric", "", "similarity metric (tanimoto, dice, cosine)")
	f.StringVar(&opts.fingerprintType, "fingerprint", "", "fingerprint type (morgan, maccs, topological)")
	f.StringVar(&opts.sortKey, "sort", "max", "strain sort statistic (max, min, mean, median, count)")
	cmd.MarkFlagRequired("labeled")
	cmd.MarkFlagRequired("queries")

	return cmd
}

func runPredict(cmd *cobra.Command, opts *predictOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	applyClassifierOverrides(cmd, cliCtx, opts.cutoff, opts.metric, opts.fingerprintType)

	reference, err := dataset.LoadLabeledSet(opts.labeledPath)
	if err != nil {
		return err
	}
	queries, err := dataset.LoadQueries(opts.queriesPath)
	if err != nil {
		return err
	}

	svc, err := newClassifierService(cliCtx)
	if err != nil {
		return err
	}

	result, err := svc.Classify(cmd.Context(), reference, queries)
	if err != nil {
		return err
	}

	out := &PredictResult{
		Predictions: result.Predictions,
		Missing:     result.MissingCount(),
		Dropped:     len(result.Build.Failures),
	}

	if opts.membershipPath != "" {
		membership, err := dataset.LoadMembership(opts.membershipPath)
		if err != nil {
			return err
		}
		summaries, err := classifier.Aggregate(result.Predictions, membership)
		if err != nil {
			return err
		}
		key, err := parseSortKey(opts.sortKey)
		if err != nil {
			return err
		}
		classifier.SortSummaries(summaries, key, true)
		out.Strains = summaries
	}

	return PrintResult(cmd, out)
}

func parseSortKey(s string) (classifier.SortKey, error) {
	switch classifier.SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case classifier.SortByMax:
		return classifier.SortByMax, nil
	case classifier.SortByMin:
		return classifier.SortByMin, nil
	case classifier.SortByMean:
		return classifier.SortByMean, nil
	case classifier.SortByMedian:
		return classifier.SortByMedian, nil
	case classifier.SortByCount:
		return classifier.SortByCount, nil
	default:
		return "", errors.Newf(errors.CodeInvalidParam, "unknown sort key %q", s)
	}
}

// String renders the text output: one line per query, then strain summaries.
func (r *PredictResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Classified %d compounds (%d missing, %d dropped)\n",
		len(r.Predictions), r.Missing, r.Dropped)
	for _, p := range r.Predictions {
		if !p.HasPrediction() {
			fmt.Fprintf(&sb, "  %s: no prediction\n", p.Name)
			continue
		}
		fmt.Fprintf(&sb, "  %s: class=%d p=%.4f neighbor=%s sim=%.4f\n",
			p.Name, int(*p.Predicted), *p.Probability, *p.NeighborName, *p.Similarity)
	}
	for _, s := range r.Strains {
		fmt.Fprintf(&sb, "strain %s: n=%d max=%.4f mean=%.4f median=%.4f\n",
			s.Key, s.Count, s.MaxProbability, s.MeanProbability, s.MedianProbability)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// TableHeaders implements the table output.
func (r *PredictResult) TableHeaders() []string {
	return []string{"compound", "class", "probability", "neighbor", "similarity"}
}

// TableRows implements the table output.
func (r *PredictResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Predictions))
	for _, p := range r.Predictions {
		if !p.HasPrediction() {
			rows = append(rows, []string{p.Name, "-", "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			p.Name,
			strconv.Itoa(int(*p.Predicted)),
			formatFloat(*p.Probability),
			*p.NeighborName,
			formatFloat(*p.Similarity),
		})
	}
	return rows
}
