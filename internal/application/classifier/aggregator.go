package classifier

import (
	"sort"

	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// MembershipRow links one compound to one producing strain.  The relation is
// many-to-many: a compound produced by several strains appears in several
// rows, and each of those strains receives the compound's probability.
type MembershipRow struct {
	Compound string `json:"compound"`
	Strain   string `json:"strain"`
}

// SortKey selects the statistic group summaries are ordered by.
type SortKey string

const (
	SortByMax    SortKey = "max"
	SortByMin    SortKey = "min"
	SortByMean   SortKey = "mean"
	SortByMedian SortKey = "median"
	SortByCount  SortKey = "count"
)

// Aggregate rolls per-compound probabilities up to strain level.  A compound
// that is a member of several strains contributes to each of them; compounds
// without a usable prediction contribute nothing and do not count toward a
// group's size.  Duplicate membership rows are collapsed so a compound is
// counted at most once per strain.
//
// Summaries are returned ordered by descending maximum probability, ties
// broken by strain name; re-order with SortSummaries when a different
// statistic matters.
func Aggregate(predictions []ctypes.Prediction, membership []MembershipRow) ([]ctypes.GroupSummary, error) {
	probByCompound := make(map[string]float64, len(predictions))
	for _, p := range predictions {
		if p.HasPrediction() {
			probByCompound[p.Name] = *p.Probability
		}
	}

	type group struct {
		seen  map[string]struct{}
		probs []float64
	}
	groupsByStrain := make(map[string]*group)
	for _, row := range membership {
		if row.Compound == "" || row.Strain == "" {
			return nil, errors.New(errors.CodeAggregationFailed, "membership rows need both compound and strain names")
		}
		prob, ok := probByCompound[row.Compound]
		if !ok {
			continue
		}
		g := groupsByStrain[row.Strain]
		if g == nil {
			g = &group{seen: make(map[string]struct{})}
			groupsByStrain[row.Strain] = g
		}
		if _, dup := g.seen[row.Compound]; dup {
			continue
		}
		g.seen[row.Compound] = struct{}{}
		g.probs = append(g.probs, prob)
	}

	summaries := make([]ctypes.GroupSummary, 0, len(groupsByStrain))
	for strain, g := range groupsByStrain {
		summaries = append(summaries, summarize(strain, g.probs))
	}
	SortSummaries(summaries, SortByMax, true)
	return summaries, nil
}

// summarize computes the probability statistics for one strain.
func summarize(strain string, probs []float64) ctypes.GroupSummary {
	s := ctypes.GroupSummary{Key: strain, Count: len(probs)}

	sorted := make([]float64, len(probs))
	copy(sorted, probs)
	sort.Float64s(sorted)

	s.MinProbability = sorted[0]
	s.MaxProbability = sorted[len(sorted)-1]

	sum := 0.0
	for _, p := range sorted {
		sum += p
	}
	s.MeanProbability = sum / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		s.MedianProbability = sorted[mid]
	} else {
		s.MedianProbability = (sorted[mid-1] + sorted[mid]) / 2
	}
	return s
}

// SortSummaries orders summaries in place by the chosen statistic; desc
// selects descending order.  Ties always break by ascending strain name so
// output stays deterministic.
func SortSummaries(summaries []ctypes.GroupSummary, key SortKey, desc bool) {
	value := func(s ctypes.GroupSummary) float64 {
		switch key {
		case SortByMin:
			return s.MinProbability
		case SortByMean:
			return s.MeanProbability
		case SortByMedian:
			return s.MedianProbability
		case SortByCount:
			return float64(s.Count)
		default:
			return s.MaxProbability
		}
	}
	sort.SliceStable(summaries, func(a, b int) bool {
		va, vb := value(summaries[a]), value(summaries[b])
		if va != vb {
			if desc {
				return va > vb
			}
			return va < vb
		}
		return summaries[a].Key < summaries[b].Key
	})
}
