// Command apiserver runs the DiazoScreen REST API: classification,
// cross-validation, strain aggregation, and persisted-run retrieval.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/DiazoScreen/internal/application/classifier"
	"github.com/turtacn/DiazoScreen/internal/config"
	"github.com/turtacn/DiazoScreen/internal/domain/compound"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/database/postgres"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/database/redis"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/DiazoScreen/internal/interfaces/http"
	"github.com/turtacn/DiazoScreen/internal/interfaces/http/handlers"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// Populated at build time via -ldflags.
var (
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (empty: environment + defaults)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	migrate := flag.Bool("migrate", false, "run database migrations before serving")
	flag.Parse()

	if err := run(*configPath, *port, *migrate); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int, migrate bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	logger, err := logging.NewLogger(logging.Options{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		Output:           cfg.Log.Output,
		EnableCaller:     cfg.Log.EnableCaller,
		EnableStacktrace: cfg.Log.EnableStacktrace,
	})
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	logging.SetDefault(logger)
	logger.Info("starting apiserver",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "diazoscreen",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics initialization failed: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	ctx := context.Background()
	checks := make(map[string]handlers.CheckFunc)

	// Postgres run store.  The pool connects lazily, so an unreachable
	// database degrades readiness instead of blocking startup.
	if migrate {
		if err := postgres.RunMigrations(postgres.DSN(cfg.Database), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		logger.Info("migrations applied")
	}
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("postgres pool: %w", err)
	}
	defer pool.Close()
	store := repositories.NewPredictionRepository(pool, logger)
	checks["postgres"] = pool.Ping

	// Redis fingerprint cache.  An unreachable Redis logs a warning and the
	// classifier computes fingerprints directly.
	var cache redis.Cache
	client, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, fingerprint caching disabled", logging.Err(err))
	} else {
		defer client.Close()
		opts := []redis.CacheOption{}
		if cfg.Redis.KeyPrefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.KeyPrefix))
		}
		if cfg.Redis.DefaultTTL > 0 {
			opts = append(opts, redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
		}
		cache = redis.NewCache(client, logger, opts...)
		checks["redis"] = client.Ping
	}

	builder := newServiceBuilder(cache, cfg.Redis.DefaultTTL, logger, metrics)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ClassifyHandler:  handlers.NewClassifyHandler(builder, cfg.Classifier, store, logger),
		EvaluateHandler:  handlers.NewEvaluateHandler(builder, cfg.Classifier, store, logger),
		StrainHandler:    handlers.NewStrainHandler(),
		RunsHandler:      handlers.NewRunsHandler(store, logger),
		HealthHandler:    handlers.NewHealthHandler(version, checks),
		Mode:             cfg.Server.Mode,
		Logger:           logger,
		MetricsCollector: collector,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("apiserver stopped")
	return nil
}

// newServiceBuilder returns the handler-facing classifier factory.  Each
// request may override fingerprint type, metric, and cutoff, so the service
// is rebuilt per call; fingerprint providers are cheap and the cache wrapper
// keeps recomputation off the hot path.
func newServiceBuilder(cache redis.Cache, cacheTTL time.Duration, logger logging.Logger, metrics *prometheus.AppMetrics) handlers.ServiceBuilder {
	return handlers.ServiceBuilderFunc(func(cfg config.ClassifierConfig) (*classifier.Service, error) {
		fpType, err := ctypes.ParseFingerprintType(cfg.FingerprintType)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeFingerprintTypeUnsupported, "invalid fingerprint type")
		}
		provider, err := compound.NewProvider(fpType, compound.ProviderOptions{
			Bits:         cfg.FingerprintBits,
			MorganRadius: cfg.MorganRadius,
		})
		if err != nil {
			return nil, err
		}
		var effective compound.Provider = provider
		if cache != nil {
			effective = redis.NewCachedProvider(provider, cache, logger, metrics, cacheTTL)
		}

		metric, err := compound.ParseSimilarityMetric(cfg.SimilarityMetric)
		if err != nil {
			return nil, err
		}
		calc, err := compound.NewCalculator(metric)
		if err != nil {
			return nil, err
		}

		return classifier.NewService(classifier.Deps{
			Provider:   effective,
			Calculator: calc,
			Logger:     logger,
			Metrics:    metrics,
		}, classifier.Params{
			Cutoff:  cfg.Cutoff,
			Workers: cfg.Workers,
		})
	})
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
