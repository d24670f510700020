package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/turtacn/DiazoScreen/internal/domain/compound"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/prometheus"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// CachedProvider decorates a fingerprint provider with a redis cache so
// repeated classifications of the same structure skip recomputation.  Cache
// failures degrade to a direct computation; they never fail the request.
type CachedProvider struct {
	inner   compound.Provider
	cache   Cache
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	ttl     time.Duration
}

// NewCachedProvider wraps inner with the cache.  A zero ttl uses the cache's
// default.
func NewCachedProvider(inner compound.Provider, cache Cache, log logging.Logger, metrics *prometheus.AppMetrics, ttl time.Duration) *CachedProvider {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CachedProvider{
		inner:   inner,
		cache:   cache,
		logger:  log.Named("fp_cache"),
		metrics: metrics,
		ttl:     ttl,
	}
}

// Type reports the wrapped provider's algorithm.
func (p *CachedProvider) Type() ctypes.FingerprintType { return p.inner.Type() }

// Compute returns a cached fingerprint when available, computing and caching
// it otherwise.
func (p *CachedProvider) Compute(smiles string) (*compound.Fingerprint, error) {
	ctx := context.Background()
	key := p.cacheKey(smiles)

	var cached compound.Fingerprint
	err := p.cache.Get(ctx, key, &cached)
	if err == nil {
		p.observe("hit")
		return &cached, nil
	}
	if err != ErrCacheMiss {
		p.logger.Warn("fingerprint cache unavailable, computing directly", logging.Err(err))
	}
	p.observe("miss")

	fp, err := p.inner.Compute(smiles)
	if err != nil {
		return nil, err
	}
	if setErr := p.cache.Set(ctx, key, fp, p.ttl); setErr != nil {
		p.logger.Warn("failed to cache fingerprint", logging.Err(setErr))
	}
	return fp, nil
}

// cacheKey hashes the SMILES so arbitrary structure text stays a safe,
// fixed-length key component.
func (p *CachedProvider) cacheKey(smiles string) string {
	sum := sha256.Sum256([]byte(smiles))
	return fmt.Sprintf("fp:%s:%s", p.inner.Type(), hex.EncodeToString(sum[:16]))
}

func (p *CachedProvider) observe(outcome string) {
	if p.metrics == nil {
		return
	}
	if outcome == "hit" {
		p.metrics.CacheHitsTotal.WithLabelValues("fingerprint").Inc()
		return
	}
	p.metrics.CacheMissesTotal.WithLabelValues("fingerprint").Inc()
}
