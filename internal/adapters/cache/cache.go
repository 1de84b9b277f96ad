// Package cache holds the process-wide project pool between requests.
//
// Every backend has get-or-load semantics: a miss calls the loader, stores
// its result for ttl and returns it. Reads may be stale by at most ttl.
// Two requests racing on a miss may both load; the last write wins.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Loader fetches the project pool on a miss.
type Loader = func(ctx context.Context) ([]model.ProjectCandidate, error)

// ProjectCache is a get-or-load cache of project pools.
type ProjectCache interface {
	// Get returns the cached pool under key or loads, stores and returns it.
	// Loader errors are returned as is and nothing is stored.
	Get(ctx context.Context, key string, load Loader, ttl time.Duration) ([]model.ProjectCandidate, error)

	// Invalidate drops key.
	Invalidate(ctx context.Context, key string) error

	// Stats returns hit and miss counters.
	Stats() Stats

	// Backend names the implementation.
	Backend() string
}

// Stats tracks cache effectiveness.
type Stats struct {
	Backend   string  `json:"backend"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Loads     int64   `json:"loads"`
	Evictions int64   `json:"evictions"`
	Keys      int     `json:"keys"`
	HitRate   float64 `json:"hitRate"`
}

// counters is shared by every backend.
type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	loads     atomic.Int64
	evictions atomic.Int64
}

func (c *counters) snapshot(backend string, keys int) Stats {
	s := Stats{
		Backend:   backend,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Loads:     c.loads.Load(),
		Evictions: c.evictions.Load(),
		Keys:      keys,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total) * 100
	}
	return s
}
