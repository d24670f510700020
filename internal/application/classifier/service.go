// Package classifier implements the nearest-neighbor classification workflows
// of the DiazoScreen platform: leave-one-out cross-validation over a labeled
// reference set, extension of the classifier to unlabeled query compounds,
// evaluation reporting, and per-strain aggregation.
package classifier

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/DiazoScreen/internal/domain/compound"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// ─────────────────────────────────────────────────────────────────────────────
// Service construction
// ─────────────────────────────────────────────────────────────────────────────

// Deps carries the collaborators a Service needs.  Logger and Metrics are
// optional; Provider and Calculator are required.
type Deps struct {
	Provider   compound.Provider
	Calculator compound.Calculator
	Logger     logging.Logger
	Metrics    *prometheus.AppMetrics
}

// Params carries the run parameters of a Service.
type Params struct {
	// Cutoff is the minimum similarity a reference compound must reach to be
	// considered a neighbor, in [0, 1].
	Cutoff float64

	// Workers bounds the per-compound classification goroutines; 0 means
	// runtime.NumCPU().
	Workers int
}

// Service classifies compounds by the label of their most similar reference
// neighbor.  A Service is safe for concurrent use.
type Service struct {
	provider compound.Provider
	calc     compound.Calculator
	cutoff   float64
	workers  int
	logger   logging.Logger
	metrics  *prometheus.AppMetrics
}

// NewService validates deps and params and returns a ready Service.
func NewService(deps Deps, params Params) (*Service, error) {
	if deps.Provider == nil {
		return nil, errors.New(errors.CodeInvalidParam, "fingerprint provider is required")
	}
	if deps.Calculator == nil {
		return nil, errors.New(errors.CodeInvalidParam, "similarity calculator is required")
	}
	if params.Cutoff < 0 || params.Cutoff > 1 {
		return nil, errors.Newf(errors.CodeCutoffInvalid, "similarity cutoff %.4f is out of range [0, 1]", params.Cutoff)
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Service{
		provider: deps.Provider,
		calc:     deps.Calculator,
		cutoff:   params.Cutoff,
		workers:  workers,
		logger:   deps.Logger.Named("classifier"),
		metrics:  deps.Metrics,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Results
// ─────────────────────────────────────────────────────────────────────────────

// Result is the outcome of a classification run.  Predictions holds one entry
// per input compound in input order, including compounds that received no
// prediction; Build reports the compounds dropped while fingerprinting.
type Result struct {
	Predictions []ctypes.Prediction `json:"predictions"`
	Build       ctypes.BuildReport  `json:"build"`
}

// MissingCount returns the number of inputs without a usable prediction.
func (r *Result) MissingCount() int {
	n := 0
	for _, p := range r.Predictions {
		if !p.HasPrediction() {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────────
// Leave-one-out cross-validation
// ─────────────────────────────────────────────────────────────────────────────

// CrossValidate classifies every member of the labeled set against all other
// members, excluding the compound itself from its own candidate pool before
// ranking.  It returns one prediction per set member in set order.
//
// Compounds that cannot be fingerprinted are dropped from the candidate pool,
// recorded in the build report, and surface as missing predictions.  Fewer
// than two fingerprinted labeled compounds leaves nothing to validate against
// and fails with CodeInsufficientLabeledData.
func (s *Service) CrossValidate(ctx context.Context, set *compound.LabeledSet) (*Result, error) {
	if set == nil {
		return nil, errors.New(errors.CodeInvalidParam, "labeled set is required")
	}

	store, buildReport, err := compound.BuildStore(ctx, s.provider, compound.LabeledInputs(set), compound.BuildOptions{
		Workers: s.workers,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, err
	}
	s.observeBuild(store, buildReport)

	if store.Len() < 2 {
		return nil, errors.Newf(errors.CodeInsufficientLabeledData,
			"leave-one-out validation needs at least 2 fingerprinted labeled compounds, have %d", store.Len())
	}

	// Predictions are positional over the full input set; store indices only
	// cover the compounds that survived fingerprinting.
	predictions := make([]ctypes.Prediction, set.Len())
	storeIndex := indexByName(store)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := 0; i < set.Len(); i++ {
		i := i
		member := set.At(i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			known := member.Label
			pred := ctypes.Prediction{Name: member.Name, SMILES: member.SMILES, Known: &known}

			idx, ok := storeIndex[member.Name]
			if ok {
				hit, err := compound.NearestNeighbor(store, store.At(idx).Fingerprint, s.calc, s.cutoff, idx)
				if err != nil {
					return err
				}
				s.fillFromHit(&pred, store, hit)
			}
			predictions[i] = pred
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeEvaluationFailed, "cross-validation run failed")
	}

	result := &Result{Predictions: predictions, Build: buildReport}
	s.observeRun("loocv", result)
	return result, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Extension to unlabeled compounds
// ─────────────────────────────────────────────────────────────────────────────

// Classify scores unlabeled query compounds against the full labeled
// reference set, with no self-exclusion.  It returns one prediction per query
// in query order; queries that cannot be fingerprinted surface as missing
// predictions and are listed in the build report alongside dropped reference
// compounds.
func (s *Service) Classify(ctx context.Context, reference *compound.LabeledSet, queries []compound.Compound) (*Result, error) {
	if reference == nil {
		return nil, errors.New(errors.CodeInvalidParam, "labeled reference set is required")
	}

	store, buildReport, err := compound.BuildStore(ctx, s.provider, compound.LabeledInputs(reference), compound.BuildOptions{
		Workers: s.workers,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, err
	}
	s.observeBuild(store, buildReport)

	if store.Len() == 0 {
		return nil, errors.New(errors.CodeInsufficientLabeledData,
			"no reference compound survived fingerprinting; nothing to classify against")
	}

	predictions := make([]ctypes.Prediction, len(queries))
	failures := make([]*ctypes.BuildFailure, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range queries {
		i := i
		q := queries[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pred := ctypes.Prediction{Name: q.Name, SMILES: q.SMILES}

			fp, err := s.provider.Compute(q.SMILES)
			if err != nil {
				failures[i] = &ctypes.BuildFailure{Name: q.Name, SMILES: q.SMILES, Reason: err.Error()}
				s.logger.Warn("query compound could not be fingerprinted",
					logging.String("compound", q.Name),
					logging.Err(err))
				predictions[i] = pred
				return nil
			}

			hit, err := compound.NearestNeighbor(store, fp, s.calc, s.cutoff, compound.NoExclusion)
			if err != nil {
				return err
			}
			s.fillFromHit(&pred, store, hit)
			predictions[i] = pred
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeSimilaritySearchFailed, "classification run failed")
	}

	// Query failures append to the reference build report in query order.
	for _, f := range failures {
		if f != nil {
			buildReport.Failures = append(buildReport.Failures, *f)
		}
	}

	result := &Result{Predictions: predictions, Build: buildReport}
	s.observeRun("extend", result)
	return result, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Internals
// ─────────────────────────────────────────────────────────────────────────────

// fillFromHit populates the neighbor-derived fields of pred.  A nil hit
// leaves the prediction missing: nothing cleared the cutoff.
//
// The probability maps the similarity score through the neighbor's label:
// p = 0.5 + 0.5·score for a positive neighbor, p = 0.5 − 0.5·score for a
// negative one, so 0.5 always means "no structural evidence either way".
func (s *Service) fillFromHit(pred *ctypes.Prediction, store *compound.Store, hit *compound.Hit) {
	if hit == nil {
		return
	}
	entry := store.At(hit.Index)
	name := entry.Name
	neighborLabel := *entry.Label
	score := hit.Score

	var prob float64
	if neighborLabel == ctypes.LabelPositive {
		prob = 0.5 + 0.5*score
	} else {
		prob = 0.5 - 0.5*score
	}
	predicted := neighborLabel

	pred.NeighborName = &name
	pred.NeighborLabel = &neighborLabel
	pred.Similarity = &score
	pred.Probability = &prob
	pred.Predicted = &predicted

	if s.metrics != nil {
		s.metrics.SimilarityScores.WithLabelValues(string(s.calc.Metric())).Observe(score)
	}
}

// indexByName maps compound names to their store index.
func indexByName(store *compound.Store) map[string]int {
	m := make(map[string]int, store.Len())
	for i := 0; i < store.Len(); i++ {
		m[store.At(i).Name] = i
	}
	return m
}

func (s *Service) observeBuild(store *compound.Store, report ctypes.BuildReport) {
	if s.metrics == nil {
		return
	}
	fpType := string(store.FingerprintType())
	s.metrics.FingerprintBuildsTotal.WithLabelValues(fpType, "ok").Inc()
	s.metrics.FingerprintBuildFailures.WithLabelValues(fpType).Add(float64(len(report.Failures)))
	s.metrics.StoreSize.WithLabelValues("reference").Set(float64(store.Len()))
}

func (s *Service) observeRun(mode string, result *Result) {
	missing := result.MissingCount()
	s.logger.Info("classification run complete",
		logging.String("mode", mode),
		logging.Int("predictions", len(result.Predictions)),
		logging.Int("missing", missing),
		logging.Int("dropped", len(result.Build.Failures)))
	if s.metrics == nil {
		return
	}
	s.metrics.ClassificationRunsTotal.WithLabelValues(mode, "ok").Inc()
	s.metrics.PredictionsTotal.WithLabelValues("predicted").Add(float64(len(result.Predictions) - missing))
	s.metrics.PredictionsTotal.WithLabelValues("missing").Add(float64(missing))
}
