package prometheus

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/logging"
)

func TestNewAppMetrics_RegistersAll(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "diazoscreen"}, logging.NewNopLogger())
	require.NoError(t, err)

	m := NewAppMetrics(c)
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.FingerprintBuildsTotal)
	assert.NotNil(t, m.ClassificationRunsTotal)
	assert.NotNil(t, m.SimilarityScores)
	assert.NotNil(t, m.EvaluationsTotal)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestNewAppMetrics_Usable(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "diazoscreen"}, logging.NewNopLogger())
	require.NoError(t, err)
	m := NewAppMetrics(c)

	m.ClassificationRunsTotal.WithLabelValues("loocv", "ok").Inc()
	m.PredictionsTotal.WithLabelValues("predicted").Add(3)
	m.SimilarityScores.WithLabelValues("tanimoto").Observe(0.87)
	m.StoreSize.WithLabelValues("reference").Set(150)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "diazoscreen_classification_runs_total")
	assert.Contains(t, body, "diazoscreen_similarity_scores")
}
