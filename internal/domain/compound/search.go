package compound

import (
	"math"
	"sort"

	"github.com/turtacn/DiazoScreen/pkg/errors"
)

// Hit is one search result: the store index of a matching compound and its
// similarity score against the query.
type Hit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// NoExclusion disables self-exclusion in Search.
const NoExclusion = -1

// Search scans every store entry against the query fingerprint and returns
// the hits whose score clears the cutoff, ranked by descending score.  Ties
// break toward the lower store index, so results are fully deterministic for
// a given store.
//
// excludeIndex removes one candidate from the pool before ranking (pass
// NoExclusion to keep all candidates); this is how leave-one-out callers keep
// a compound from matching itself.  Candidates whose score is NaN are
// discarded rather than coerced, so an undefined comparison can never
// masquerade as a real neighbor.  An empty slice — not an error — means
// nothing cleared the cutoff.
func Search(store *Store, query *Fingerprint, calc Calculator, cutoff float64, excludeIndex int) ([]Hit, error) {
	if store == nil || query == nil {
		return nil, errors.New(errors.CodeInvalidParam, "store and query fingerprint are required")
	}
	if calc == nil {
		return nil, errors.New(errors.CodeInvalidParam, "similarity calculator is required")
	}
	if cutoff < 0 || cutoff > 1 {
		return nil, errors.Newf(errors.CodeCutoffInvalid, "similarity cutoff %.4f is out of range [0, 1]", cutoff)
	}

	hits := make([]Hit, 0, store.Len())
	for i := 0; i < store.Len(); i++ {
		if i == excludeIndex {
			continue
		}
		score, err := calc.Score(query, store.At(i).Fingerprint)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeSimilaritySearchFailed, "similarity computation failed").
				WithDetail("candidate " + store.At(i).Name)
		}
		if math.IsNaN(score) {
			continue
		}
		if score < cutoff {
			continue
		}
		hits = append(hits, Hit{Index: i, Score: score})
	}

	// Hits were appended in ascending index order, so a stable sort on score
	// alone preserves the ascending-index tie-break.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	return hits, nil
}

// NearestNeighbor returns the single best hit, or nil when no candidate
// clears the cutoff.
func NearestNeighbor(store *Store, query *Fingerprint, calc Calculator, cutoff float64, excludeIndex int) (*Hit, error) {
	hits, err := Search(store, query, calc, cutoff, excludeIndex)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	top := hits[0]
	return &top, nil
}
