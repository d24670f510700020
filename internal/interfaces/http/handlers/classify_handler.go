package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/DiazoScreen/internal/application/classifier"
	"github.com/turtacn/DiazoScreen/internal/config"
	"github.com/turtacn/DiazoScreen/internal/domain/compound"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// ServiceBuilder constructs a classifier service from an effective
// configuration.  The API server's builder wires in the cached fingerprint
// provider and metrics; tests supply a bare one.
type ServiceBuilder interface {
	Build(cfg config.ClassifierConfig) (*classifier.Service, error)
}

// ServiceBuilderFunc adapts a plain function to ServiceBuilder.
type ServiceBuilderFunc func(cfg config.ClassifierConfig) (*classifier.Service, error)

// Build implements ServiceBuilder.
func (f ServiceBuilderFunc) Build(cfg config.ClassifierConfig) (*classifier.Service, error) {
	return f(cfg)
}

// RunStore persists classification runs.  It is satisfied by
// *repositories.PredictionRepository; a nil store disables persistence.
type RunStore interface {
	SaveRun(ctx context.Context, run *repositories.ClassificationRun, predictions []ctypes.Prediction) error
	SaveReport(ctx context.Context, runID uuid.UUID, report *ctypes.EvaluationReport) error
	GetRun(ctx context.Context, id uuid.UUID) (*repositories.ClassificationRun, error)
	ListRuns(ctx context.Context, limit int) ([]repositories.ClassificationRun, error)
	Predictions(ctx context.Context, runID uuid.UUID) ([]ctypes.Prediction, error)
	GetReport(ctx context.Context, runID uuid.UUID) (*ctypes.EvaluationReport, error)
}

// LabeledRow is a reference compound with its class in a request body.
type LabeledRow struct {
	Name   string `json:"name" binding:"required"`
	SMILES string `json:"smiles" binding:"required"`
	Label  int    `json:"label"`
}

// CompoundRow is an unlabeled query compound in a request body.
type CompoundRow struct {
	Name   string `json:"name" binding:"required"`
	SMILES string `json:"smiles" binding:"required"`
}

// MembershipPair links a compound to a producing strain in a request body.
type MembershipPair struct {
	Compound string `json:"compound" binding:"required"`
	Strain   string `json:"strain" binding:"required"`
}

// ClassifierOverrides are per-request parameter overrides; unset fields keep
// the server's configured values.
type ClassifierOverrides struct {
	Cutoff      *float64 `json:"cutoff,omitempty"`
	Metric      string   `json:"metric,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
}

// ClassifyRequest is the body of POST /api/v1/classify.
type ClassifyRequest struct {
	Reference  []LabeledRow     `json:"reference" binding:"required"`
	Queries    []CompoundRow    `json:"queries" binding:"required"`
	Membership []MembershipPair `json:"membership,omitempty"`
	Sort       string           `json:"sort,omitempty"`
	Persist    bool             `json:"persist,omitempty"`

	ClassifierOverrides
}

// ClassifyResponse is the body of a successful classification.
type ClassifyResponse struct {
	RunID       string                `json:"run_id,omitempty"`
	Predictions []ctypes.Prediction   `json:"predictions"`
	Missing     int                   `json:"missing"`
	Dropped     []ctypes.BuildFailure `json:"dropped,omitempty"`
	Strains     []ctypes.GroupSummary `json:"strains,omitempty"`
}

// ClassifyHandler serves extension-mode classification requests.
type ClassifyHandler struct {
	builder ServiceBuilder
	base    config.ClassifierConfig
	store   RunStore
	logger  logging.Logger
}

// NewClassifyHandler constructs the handler.  store may be nil when no
// database is configured; persist requests are then rejected.
func NewClassifyHandler(builder ServiceBuilder, base config.ClassifierConfig, store RunStore, logger logging.Logger) *ClassifyHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ClassifyHandler{
		builder: builder,
		base:    base,
		store:   store,
		logger:  logger.Named("classify_handler"),
	}
}

// Classify handles POST /api/v1/classify.
func (h *ClassifyHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if req.Persist && h.store == nil {
		writeError(c, errors.New(errors.CodeServiceUnavailable, "run persistence is not configured"))
		return
	}

	cfg := applyOverrides(h.base, req.ClassifierOverrides)
	svc, err := h.builder.Build(cfg)
	if err != nil {
		writeError(c, err)
		return
	}

	reference, err := toLabeledSet(req.Reference)
	if err != nil {
		writeError(c, err)
		return
	}
	queries := toCompounds(req.Queries)

	result, err := svc.Classify(c.Request.Context(), reference, queries)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := ClassifyResponse{
		Predictions: result.Predictions,
		Missing:     result.MissingCount(),
		Dropped:     result.Build.Failures,
	}

	if len(req.Membership) > 0 {
		membership := toMembership(req.Membership)
		summaries, err := classifier.Aggregate(result.Predictions, membership)
		if err != nil {
			writeError(c, err)
			return
		}
		key := classifier.SortByMax
		if req.Sort != "" {
			key, err = parseSortKey(req.Sort)
			if err != nil {
				writeError(c, err)
				return
			}
		}
		classifier.SortSummaries(summaries, key, true)
		resp.Strains = summaries
	}

	if req.Persist {
		run := &repositories.ClassificationRun{
			Mode:             "extend",
			FingerprintType:  cfg.FingerprintType,
			SimilarityMetric: cfg.SimilarityMetric,
			Cutoff:           cfg.Cutoff,
		}
		if err := h.store.SaveRun(c.Request.Context(), run, result.Predictions); err != nil {
			// Persistence failure does not void the computed result.
			h.logger.Warn("run persistence failed", logging.Err(err))
		} else {
			resp.RunID = run.ID.String()
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ─────────────────────────────────────────────────────────────────────────────
// Request conversion helpers
// ─────────────────────────────────────────────────────────────────────────────

func applyOverrides(base config.ClassifierConfig, o ClassifierOverrides) config.ClassifierConfig {
	cfg := base
	if o.Cutoff != nil {
		cfg.Cutoff = *o.Cutoff
	}
	if o.Metric != "" {
		cfg.SimilarityMetric = o.Metric
	}
	if o.Fingerprint != "" {
		cfg.FingerprintType = o.Fingerprint
	}
	return cfg
}

func toLabeledSet(rows []LabeledRow) (*compound.LabeledSet, error) {
	labeled := make([]compound.LabeledCompound, 0, len(rows))
	for _, row := range rows {
		label, err := ctypes.ParseLabel(row.Label)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeDatasetLabelInvalid, "compound %q", row.Name)
		}
		labeled = append(labeled, compound.LabeledCompound{
			Compound: compound.Compound{Name: row.Name, SMILES: row.SMILES},
			Label:    label,
		})
	}
	return compound.NewLabeledSet(labeled)
}

func toCompounds(rows []CompoundRow) []compound.Compound {
	out := make([]compound.Compound, 0, len(rows))
	for _, row := range rows {
		out = append(out, compound.Compound{Name: row.Name, SMILES: row.SMILES})
	}
	return out
}

func toMembership(pairs []MembershipPair) []classifier.MembershipRow {
	out := make([]classifier.MembershipRow, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, classifier.MembershipRow{Compound: p.Compound, Strain: p.Strain})
	}
	return out
}

func parseSortKey(s string) (classifier.SortKey, error) {
	switch key := classifier.SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case classifier.SortByMax, classifier.SortByMin, classifier.SortByMean,
		classifier.SortByMedian, classifier.SortByCount:
		return key, nil
	default:
		return "", errors.Newf(errors.CodeInvalidParam, "unknown sort key %q", s)
	}
}
