package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/DiazoScreen/internal/application/classifier"
	"github.com/turtacn/DiazoScreen/internal/config"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// EvaluateRequest is the body of POST /api/v1/evaluate.
type EvaluateRequest struct {
	Compounds   []LabeledRow `json:"compounds" binding:"required"`
	GainsGroups int          `json:"gains_groups,omitempty"`
	Persist     bool         `json:"persist,omitempty"`

	ClassifierOverrides
}

// EvaluateResponse is the body of a successful evaluation.
type EvaluateResponse struct {
	RunID       string                   `json:"run_id,omitempty"`
	Predictions []ctypes.Prediction      `json:"predictions"`
	Dropped     []ctypes.BuildFailure    `json:"dropped,omitempty"`
	Report      *ctypes.EvaluationReport `json:"report"`
}

// EvaluateHandler serves leave-one-out cross-validation requests.
type EvaluateHandler struct {
	builder ServiceBuilder
	base    config.ClassifierConfig
	store   RunStore
	logger  logging.Logger
}

// NewEvaluateHandler constructs the handler.  store may be nil when no
// database is configured.
func NewEvaluateHandler(builder ServiceBuilder, base config.ClassifierConfig, store RunStore, logger logging.Logger) *EvaluateHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EvaluateHandler{
		builder: builder,
		base:    base,
		store:   store,
		logger:  logger.Named("evaluate_handler"),
	}
}

// Evaluate handles POST /api/v1/evaluate.
func (h *EvaluateHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
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

	set, err := toLabeledSet(req.Compounds)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := svc.CrossValidate(c.Request.Context(), set)
	if err != nil {
		writeError(c, err)
		return
	}

	gainsGroups := req.GainsGroups
	if gainsGroups == 0 {
		gainsGroups = cfg.GainsGroups
	}
	report, err := classifier.Evaluate(result.Predictions, classifier.EvaluateOptions{
		GainsGroups: gainsGroups,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := EvaluateResponse{
		Predictions: result.Predictions,
		Dropped:     result.Build.Failures,
		Report:      report,
	}

	if req.Persist {
		run := &repositories.ClassificationRun{
			Mode:             "loocv",
			FingerprintType:  cfg.FingerprintType,
			SimilarityMetric: cfg.SimilarityMetric,
			Cutoff:           cfg.Cutoff,
		}
		if err := h.store.SaveRun(c.Request.Context(), run, result.Predictions); err != nil {
			h.logger.Warn("run persistence failed", logging.Err(err))
		} else {
			resp.RunID = run.ID.String()
			if err := h.store.SaveReport(c.Request.Context(), run.ID, report); err != nil {
				h.logger.Warn("report persistence failed",
					logging.String("run_id", run.ID.String()), logging.Err(err))
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ─────────────────────────────────────────────────────────────────────────────
// Stored runs
// ─────────────────────────────────────────────────────────────────────────────

// RunsHandler serves read access to persisted classification runs.
type RunsHandler struct {
	store  RunStore
	logger logging.Logger
}

// NewRunsHandler constructs the handler.
func NewRunsHandler(store RunStore, logger logging.Logger) *RunsHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RunsHandler{store: store, logger: logger.Named("runs_handler")}
}

// RunDetail is the body of GET /api/v1/runs/:id.
type RunDetail struct {
	Run         *repositories.ClassificationRun `json:"run"`
	Predictions []ctypes.Prediction             `json:"predictions"`
	Report      *ctypes.EvaluationReport        `json:"report,omitempty"`
}

// List handles GET /api/v1/runs.
func (h *RunsHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(c, errors.Newf(errors.CodeInvalidParam, "invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := h.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Get handles GET /api/v1/runs/:id.
func (h *RunsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, errors.Wrap(err, errors.CodeInvalidParam, "invalid run id"))
		return
	}

	ctx := c.Request.Context()
	run, err := h.store.GetRun(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	predictions, err := h.store.Predictions(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	detail := RunDetail{Run: run, Predictions: predictions}
	if report, err := h.store.GetReport(ctx, id); err == nil {
		detail.Report = report
	} else if !errors.IsNotFound(err) {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
