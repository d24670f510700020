package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/DiazoScreen/internal/interfaces/http/handlers"
	"github.com/turtacn/DiazoScreen/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware the route tree needs.
// Nil handlers leave their routes unmounted, so a process without a database
// simply has no /runs endpoints.
type RouterConfig struct {
	ClassifyHandler *handlers.ClassifyHandler
	EvaluateHandler *handlers.EvaluateHandler
	StrainHandler   *handlers.StrainHandler
	RunsHandler     *handlers.RunsHandler
	HealthHandler   *handlers.HealthHandler

	Logging *middleware.LoggingConfig
	CORS    *middleware.CORSConfig

	Mode             string // gin mode: debug | release | test
	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the complete HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	logCfg := middleware.DefaultLoggingConfig()
	if cfg.Logging != nil {
		logCfg = *cfg.Logging
	}
	r.Use(middleware.RequestLogging(logger, logCfg))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	{
		if cfg.ClassifyHandler != nil {
			api.POST("/classify", cfg.ClassifyHandler.Classify)
		}
		if cfg.EvaluateHandler != nil {
			api.POST("/evaluate", cfg.EvaluateHandler.Evaluate)
		}
		if cfg.StrainHandler != nil {
			api.POST("/strains/summary", cfg.StrainHandler.Summarize)
		}
		if cfg.RunsHandler != nil {
			api.GET("/runs", cfg.RunsHandler.List)
			api.GET("/runs/:id", cfg.RunsHandler.Get)
		}
	}

	return r
}
