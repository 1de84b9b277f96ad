// Package service wires the matching components into one runnable service
// and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/cache"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/http/api"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/mq/admission"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/mq/queue"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/mq/worker"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/repository"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/config"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/challenge"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/dedupe"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/evaluation"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/matching"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/recommend"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/reranking"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

// ErrNotStarted is returned by operations that need a started service.
var ErrNotStarted = errors.New("service not started")

// Service owns the store, cache, persistence pipeline and domain services.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Injected or built on Start.
	store  repository.Store
	cache  cache.ProjectCache
	seeded bool

	breaker     *repository.BreakerStore
	pipeline    *worker.Pipeline
	recommender *recommend.Service
	evaluator   *evaluation.Evaluator
	attempts    *challenge.Service
	admission   *admission.Manager

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration. Defaults to config.New().
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithStore uses store instead of building one from the config.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCache uses c instead of building one from the config.
func WithCache(c cache.ProjectCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Nothing is connected until Start.
func New(opts ...Option) *Service {
	s := &Service{cfg: config.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start connects the store and cache and starts the persistence workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	cfg := s.cfg
	s.logger.Info(ctx, "starting matching service...")

	if s.store == nil {
		store, err := s.openStore(ctx)
		if err != nil {
			return err
		}
		s.store = store
	}
	s.breaker = repository.NewBreakerStore(s.store,
		repository.WithFailureThreshold(cfg.BreakerFailureThreshold),
		repository.WithOpenTimeout(cfg.BreakerTimeout()),
		repository.WithBreakerLogger(s.logger.Named("breaker")),
	)

	if s.cache == nil {
		c, err := cache.New(ctx, cache.Config{
			Backend:       cfg.CacheBackend,
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
		}, s.logger.Named("cache"))
		if err != nil {
			return fmt.Errorf("project cache: %w", err)
		}
		s.cache = c
	}

	workerOpts := []worker.Option{worker.WithLogger(s.logger.Named("persist"))}
	if cfg.PersistDedupeSize > 0 {
		workerOpts = append(workerOpts,
			worker.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.PersistDedupeSize))))
	}
	s.pipeline = worker.NewPipeline(
		queue.NewInMemoryQueue(queue.WithCapacity(cfg.PersistQueueSize)),
		s.breaker,
		cfg.PersistWorkerCount,
		workerOpts...,
	)
	s.pipeline.Start(ctx)

	scorer := matching.NewScorer(
		matching.WithWeights(matching.Weights{
			Topic:      cfg.TopicWeight,
			Language:   cfg.LanguageWeight,
			Difficulty: cfg.DifficultyWeight,
		}),
		matching.WithPrimaryBoost(cfg.PrimaryBoost),
		matching.WithDifficultyPenalty(cfg.DifficultyPenalty),
		matching.WithThreshold(cfg.RecommendationThreshold),
		matching.WithCaseInsensitiveNames(cfg.CaseInsensitiveNames),
	)
	s.recommender = recommend.New(s.breaker, s.breaker, scorer,
		recommend.WithCache(s.cache, cfg.CacheDuration()),
		recommend.WithSink(s.pipeline),
		recommend.WithReranker(reranking.NewMMR(cfg.DiversityLambda, reranking.WithWindowFactor(cfg.DiversityWindowFactor))),
		recommend.WithLimits(cfg.DefaultLimit, cfg.MaxLimit),
		recommend.WithTimeout(cfg.RequestTimeout()),
		recommend.WithLogger(s.logger.Named("recommend")),
	)
	s.evaluator = evaluation.New(
		evaluation.WithMinPassingScore(cfg.MinPassingScore),
		evaluation.WithLogger(s.logger.Named("evaluation")),
	)
	s.attempts = challenge.New(s.evaluator, s.breaker, challenge.WithLogger(s.logger.Named("challenge")))
	s.admission = admission.NewManager(nil,
		admission.WithMaxConcurrent(cfg.MaxConcurrent),
		admission.WithMaxLength(cfg.MaxQueueLength),
		admission.WithBypass(cfg.QueueBypassPaths...),
		admission.WithRejectHandler(api.RejectBusy),
		admission.WithLogger(s.logger.Named("admission")),
	)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "matching service started",
		logger.String("store", s.store.Name()),
		logger.String("cache", s.cache.Backend()),
		logger.Int("persistWorkers", cfg.PersistWorkerCount),
		logger.Int("maxConcurrent", cfg.MaxConcurrent),
		logger.Int("threshold", cfg.RecommendationThreshold),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	cfg := s.cfg
	if cfg.DatabaseURL != "" {
		pg, err := repository.NewPostgresStore(ctx, repository.PostgresConfig{
			DSN:      cfg.DatabaseURL,
			MaxConns: int32(cfg.DBMaxConns), //nolint:gosec // validated positive and small
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		s.logger.Info(ctx, "using postgres store")
		return pg, nil
	}

	mem := repository.NewMemoryStore()
	if cfg.SeedFile != "" {
		f, err := os.Open(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("open seed file: %w", err)
		}
		defer f.Close()
		if err := mem.LoadSeed(f); err != nil {
			return nil, fmt.Errorf("load seed %s: %w", cfg.SeedFile, err)
		}
		s.seeded = true
		users, projects := mem.Counts()
		s.logger.Info(ctx, "seeded memory store",
			logger.String("file", cfg.SeedFile),
			logger.Int("users", users),
			logger.Int("projects", projects))
	} else {
		s.logger.Info(ctx, "using empty memory store")
	}
	return mem, nil
}

// Stop stops admitting requests, drains pending persistence and closes the
// store and cache.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping matching service...")

	var errs []error
	if err := s.admission.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.pipeline.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("persistence drain: %w", err))
	}
	if c, ok := s.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "matching service stopped")
	return errors.Join(errs...)
}

// Dependencies returns the API handler dependencies.
func (s *Service) Dependencies() (api.Dependencies, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return api.Dependencies{}, ErrNotStarted
	}
	return api.Dependencies{
		Recommender: s.recommender,
		Evaluator:   s.evaluator,
		Attempts:    s.attempts,
		Health:      s.breaker,
		Stats:       s,
	}, nil
}

// Admission returns the admission manager, or nil before Start.
func (s *Service) Admission() *admission.Manager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admission
}

// Recommender returns the orchestrator, or nil before Start.
func (s *Service) Recommender() *recommend.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recommender
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.cfg
	stats := map[string]any{
		"started": s.started,
		"config": map[string]any{
			"recommendationThreshold": cfg.RecommendationThreshold,
			"minPassingScore":         cfg.MinPassingScore,
			"topicWeight":             cfg.TopicWeight,
			"languageWeight":          cfg.LanguageWeight,
			"difficultyWeight":        cfg.DifficultyWeight,
			"primaryBoost":            cfg.PrimaryBoost,
			"difficultyPenalty":       cfg.DifficultyPenalty,
			"diversityLambda":         cfg.DiversityLambda,
			"cacheDurationMs":         cfg.CacheDurationMS,
			"maxConcurrent":           cfg.MaxConcurrent,
			"caseInsensitiveNames":    cfg.CaseInsensitiveNames,
		},
	}
	if !s.started {
		return stats
	}

	stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	stats["store"] = map[string]any{
		"backend": s.store.Name(),
		"breaker": s.breaker.State(),
		"seeded":  s.seeded,
	}
	stats["cache"] = s.cache.Stats()
	stats["persistence"] = map[string]any{
		"pending":   s.pipeline.Pending(),
		"capacity":  s.pipeline.Capacity(),
		"workers":   s.pipeline.Workers(),
		"processed": s.pipeline.Processed(),
		"failed":    s.pipeline.Failed(),
		"unchanged": s.pipeline.Skipped(),
	}
	stats["admission"] = s.admission.Snapshot()

	metrics.UpdateQueueSize(s.pipeline.Pending())
	return stats
}
