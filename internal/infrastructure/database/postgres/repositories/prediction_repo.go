// Package repositories holds the pgx-backed persistence for classification
// runs, their per-compound predictions, and evaluation reports.
package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// ClassificationRun is the persisted header of one classifier invocation.
type ClassificationRun struct {
	ID               uuid.UUID `json:"id"`
	Mode             string    `json:"mode"` // loocv | extend
	FingerprintType  string    `json:"fingerprint_type"`
	SimilarityMetric string    `json:"similarity_metric"`
	Cutoff           float64   `json:"cutoff"`
	CreatedAt        time.Time `json:"created_at"`
}

// PredictionRepository persists runs and reads them back.
type PredictionRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPredictionRepository constructs a ready repository.
func NewPredictionRepository(pool *pgxpool.Pool, logger logging.Logger) *PredictionRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PredictionRepository{pool: pool, logger: logger.Named("prediction_repo")}
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// SaveRun persists the run header and all its predictions in one transaction.
// Predictions go through the COPY protocol; their slice position is stored so
// input order survives the round trip.
func (r *PredictionRepository) SaveRun(ctx context.Context, run *ClassificationRun, predictions []ctypes.Prediction) error {
	if run == nil {
		return errors.New(errors.CodeInvalidParam, "run is required")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO classification_runs (id, mode, fingerprint_type, similarity_metric, cutoff, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Mode, run.FingerprintType, run.SimilarityMetric, run.Cutoff, run.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "insert classification run")
	}

	if len(predictions) > 0 {
		rows := make([][]interface{}, 0, len(predictions))
		for i, p := range predictions {
			rows = append(rows, []interface{}{
				run.ID, i, p.Name, p.SMILES,
				labelToInt16(p.Known), p.NeighborName, labelToInt16(p.NeighborLabel),
				p.Similarity, p.Probability, labelToInt16(p.Predicted),
			})
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"predictions"},
			[]string{"run_id", "position", "name", "smiles", "known_label",
				"neighbor_name", "neighbor_label", "similarity", "probability", "predicted_label"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return errors.Wrap(err, errors.CodeDatabaseError, "copy predictions")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "commit run")
	}

	r.logger.Info("classification run persisted",
		logging.String("run_id", run.ID.String()),
		logging.String("mode", run.Mode),
		logging.Int("predictions", len(predictions)))
	return nil
}

// SaveReport attaches an evaluation report to a run as JSONB.
func (r *PredictionRepository) SaveReport(ctx context.Context, runID uuid.UUID, report *ctypes.EvaluationReport) error {
	if report == nil {
		return errors.New(errors.CodeInvalidParam, "report is required")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "marshal evaluation report")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO evaluation_reports (run_id, report)
		VALUES ($1, $2)
		ON CONFLICT (run_id) DO UPDATE SET report = EXCLUDED.report`,
		runID, payload,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "insert evaluation report")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetRun loads one run header.
func (r *PredictionRepository) GetRun(ctx context.Context, id uuid.UUID) (*ClassificationRun, error) {
	var run ClassificationRun
	err := r.pool.QueryRow(ctx, `
		SELECT id, mode, fingerprint_type, similarity_metric, cutoff, created_at
		FROM classification_runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.Mode, &run.FingerprintType, &run.SimilarityMetric, &run.Cutoff, &run.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.CodeNotFound, "classification run %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "query classification run")
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (r *PredictionRepository) ListRuns(ctx context.Context, limit int) ([]ClassificationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, mode, fingerprint_type, similarity_metric, cutoff, created_at
		FROM classification_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "list classification runs")
	}
	defer rows.Close()

	var runs []ClassificationRun
	for rows.Next() {
		var run ClassificationRun
		if err := rows.Scan(&run.ID, &run.Mode, &run.FingerprintType, &run.SimilarityMetric, &run.Cutoff, &run.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "scan classification run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "iterate classification runs")
	}
	return runs, nil
}

// Predictions loads a run's predictions in their original input order.
func (r *PredictionRepository) Predictions(ctx context.Context, runID uuid.UUID) ([]ctypes.Prediction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, smiles, known_label, neighbor_name, neighbor_label,
		       similarity, probability, predicted_label
		FROM predictions WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "query predictions")
	}
	defer rows.Close()

	var predictions []ctypes.Prediction
	for rows.Next() {
		var (
			p                        ctypes.Prediction
			known, neighbor, predict *int16
		)
		if err := rows.Scan(&p.Name, &p.SMILES, &known, &p.NeighborName, &neighbor,
			&p.Similarity, &p.Probability, &predict); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "scan prediction")
		}
		p.Known = int16ToLabel(known)
		p.NeighborLabel = int16ToLabel(neighbor)
		p.Predicted = int16ToLabel(predict)
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "iterate predictions")
	}
	return predictions, nil
}

// GetReport loads a run's evaluation report.
func (r *PredictionRepository) GetReport(ctx context.Context, runID uuid.UUID) (*ctypes.EvaluationReport, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT report FROM evaluation_reports WHERE run_id = $1`, runID,
	).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.CodeNotFound, "no evaluation report for run %s", runID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "query evaluation report")
	}

	var report ctypes.EvaluationReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "unmarshal evaluation report")
	}
	return &report, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Column conversion
// ─────────────────────────────────────────────────────────────────────────────

// labelToInt16 maps an optional label to a nullable SMALLINT.
func labelToInt16(l *ctypes.Label) *int16 {
	if l == nil {
		return nil
	}
	v := int16(*l)
	return &v
}

// int16ToLabel maps a nullable SMALLINT back to an optional label.
func int16ToLabel(v *int16) *ctypes.Label {
	if v == nil {
		return nil
	}
	l := ctypes.Label(*v)
	return &l
}
