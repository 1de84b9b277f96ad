package recommend

import (
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/reranking"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
)

const (
	defaultLimit    = 10
	defaultMaxLimit = 50
	defaultCacheTTL = 60 * time.Second
	defaultLambda   = 0.25

	// PoolCacheKey is the cache key of the candidate project pool.
	PoolCacheKey = "projects:candidates"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCache routes project pool loads through c with the given ttl.
func WithCache(c PoolCache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

// WithSink sets where final lists are handed off for persistence.
func WithSink(sink Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithReranker sets the diversity re-ranker. Nil disables diversification.
func WithReranker(r *reranking.MMR) Option {
	return func(s *Service) {
		s.reranker = r
	}
}

// WithLimits sets the default and maximum number of recommendations.
func WithLimits(def, max int) Option {
	return func(s *Service) {
		if def > 0 && max >= def {
			s.defaultLimit = def
			s.maxLimit = max
		}
	}
}

// WithTimeout bounds the data loads of one call. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how recommendation ids are minted.
func WithIDGenerator(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}
