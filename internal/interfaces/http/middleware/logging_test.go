package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func observedRouter(cfg LoggingConfig) (*gin.Engine, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	logger := logging.NewLoggerFromCore(core)

	r := gin.New()
	r.Use(RequestLogging(logger, cfg))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, logs
}

func perform(r http.Handler, path string) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequestLogging_Levels(t *testing.T) {
	r, logs := observedRouter(DefaultLoggingConfig())

	perform(r, "/ok")
	perform(r, "/missing")
	perform(r, "/boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/ok", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.Equal(t, "req-123", fields["request_id"])
}

func TestRequestLogging_SkipsConfiguredPaths(t *testing.T) {
	r, logs := observedRouter(DefaultLoggingConfig())
	perform(r, "/healthz")
	assert.Zero(t, logs.Len())
}

func TestRequestLogging_SlowRequestWarns(t *testing.T) {
	cfg := DefaultLoggingConfig()
	cfg.SlowThreshold = time.Nanosecond
	r, logs := observedRouter(cfg)

	perform(r, "/ok")
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "slow")
}

func TestRequestLogging_QueryStringIncluded(t *testing.T) {
	r, logs := observedRouter(DefaultLoggingConfig())
	perform(r, "/ok?limit=5")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/ok?limit=5", entries[0].ContextMap()["path"])
}
