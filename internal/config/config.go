// Package config defines service configuration and its defaults.
//
// Every tunable of the matching pipeline lives here so operators can change
// scoring weights, thresholds and queue bounds without a rebuild.
package config

import (
	"fmt"
	"time"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabaseURL is a PostgreSQL DSN. Empty selects the in-memory store.
	DatabaseURL string `koanf:"database_url"`
	DBMaxConns  int    `koanf:"db_max_conns"`

	// SeedFile is a JSON file of users and projects loaded into the
	// in-memory store at startup. Ignored with a database.
	SeedFile string `koanf:"seed_file"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// CacheBackend holds the project-pool cache kind: memory, redis or none.
	CacheBackend    string `koanf:"cache_backend"`
	CacheDurationMS int    `koanf:"cache_duration_ms"`

	RecommendationThreshold int     `koanf:"recommendation_threshold"`
	MinPassingScore         int     `koanf:"min_passing_score"`
	TopicWeight             float64 `koanf:"topic_weight"`
	LanguageWeight          float64 `koanf:"language_weight"`
	DifficultyWeight        float64 `koanf:"difficulty_weight"`
	PrimaryBoost            float64 `koanf:"primary_boost"`
	DifficultyPenalty       float64 `koanf:"difficulty_penalty"`
	DiversityLambda         float64 `koanf:"diversity_lambda"`
	DiversityWindowFactor   int     `koanf:"diversity_window_factor"`
	DefaultLimit            int     `koanf:"default_limit"`
	MaxLimit                int     `koanf:"max_limit"`

	// CaseInsensitiveNames folds topic and language names before joining.
	CaseInsensitiveNames bool `koanf:"case_insensitive_names"`

	// RequestTimeoutMS bounds data fetches. Zero disables the timeout.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	MaxConcurrent    int      `koanf:"max_concurrent"`
	MaxQueueLength   int      `koanf:"max_queue_length"`
	QueueBypassPaths []string `koanf:"queue_bypass_paths"`

	PersistWorkerCount int `koanf:"persist_worker_count"`
	PersistQueueSize   int `koanf:"persist_queue_size"`
	// Unchanged-list fingerprints kept by the persistence workers; 0 disables skipping.
	PersistDedupeSize int `koanf:"persist_dedupe_size"`

	BreakerFailureThreshold int `koanf:"breaker_failure_threshold"`
	BreakerTimeoutMS        int `koanf:"breaker_timeout_ms"`

	// RateLimitPerMinute limits /api per client IP. Zero disables it.
	RateLimitPerMinute int      `koanf:"rate_limit_per_minute"`
	CORSOrigins        []string `koanf:"cors_origins"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		DBMaxConns:              10,
		CacheBackend:            CacheMemory,
		CacheDurationMS:         60_000,
		RecommendationThreshold: 60,
		MinPassingScore:         70,
		TopicWeight:             0.30,
		LanguageWeight:          0.35,
		DifficultyWeight:        0.20,
		PrimaryBoost:            1.5,
		DifficultyPenalty:       18,
		DiversityLambda:         0.25,
		DiversityWindowFactor:   2,
		DefaultLimit:            10,
		MaxLimit:                50,
		RequestTimeoutMS:        10_000,
		MaxConcurrent:           10,
		MaxQueueLength:          1000,
		QueueBypassPaths:        []string{"/health", "/healthz", "/metrics"},
		PersistWorkerCount:      2,
		PersistQueueSize:        1024,
		PersistDedupeSize:       10_000,
		BreakerFailureThreshold: 5,
		BreakerTimeoutMS:        30_000,
		CORSOrigins:             []string{"*"},
	}
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.TopicWeight < 0 || c.LanguageWeight < 0 || c.DifficultyWeight < 0:
		return invalid("weights must not be negative")
	case c.TopicWeight+c.LanguageWeight+c.DifficultyWeight > 1.0+1e-9:
		return invalid("weights sum to %.2f, must be at most 1.0",
			c.TopicWeight+c.LanguageWeight+c.DifficultyWeight)
	case c.RecommendationThreshold < 0 || c.RecommendationThreshold > 100:
		return invalid("recommendation_threshold %d outside [0,100]", c.RecommendationThreshold)
	case c.MinPassingScore < 0 || c.MinPassingScore > 100:
		return invalid("min_passing_score %d outside [0,100]", c.MinPassingScore)
	case c.DiversityLambda < 0 || c.DiversityLambda > 1:
		return invalid("diversity_lambda %.2f outside [0,1]", c.DiversityLambda)
	case c.DiversityWindowFactor < 1:
		return invalid("diversity_window_factor must be at least 1")
	case c.PrimaryBoost < 1:
		return invalid("primary_boost must be at least 1")
	case c.DifficultyPenalty < 0 || c.DifficultyPenalty > 100:
		return invalid("difficulty_penalty %.1f outside [0,100]", c.DifficultyPenalty)
	case c.DefaultLimit < 1 || c.MaxLimit < c.DefaultLimit:
		return invalid("limits must satisfy 1 <= default_limit <= max_limit")
	case c.MaxConcurrent < 1:
		return invalid("max_concurrent must be at least 1")
	case c.MaxQueueLength < 1:
		return invalid("max_queue_length must be at least 1")
	case c.PersistWorkerCount < 1 || c.PersistQueueSize < 1:
		return invalid("persistence workers and queue size must be positive")
	case c.PersistDedupeSize < 0:
		return invalid("persist_dedupe_size must not be negative")
	case c.RequestTimeoutMS < 0 || c.CacheDurationMS < 0 || c.BreakerTimeoutMS < 0:
		return invalid("durations must not be negative")
	case c.RateLimitPerMinute < 0:
		return invalid("rate_limit_per_minute must not be negative")
	case c.DatabaseURL != "" && c.DBMaxConns < 1:
		return invalid("db_max_conns must be at least 1")
	}

	switch c.CacheBackend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.RedisAddr == "" {
			return invalid("cache_backend redis requires redis_addr")
		}
	default:
		return invalid("unknown cache_backend %q", c.CacheBackend)
	}
	return nil
}

// RequestTimeout returns the data fetch timeout; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// CacheDuration returns the project-pool TTL.
func (c *Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheDurationMS) * time.Millisecond
}

// BreakerTimeout returns how long the store breaker stays open.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerTimeoutMS) * time.Millisecond
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
