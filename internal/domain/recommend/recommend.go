// Package recommend ranks candidate projects for a user.
//
// A call loads the user profile and the recruitable project pool
// concurrently, drops projects the user already belongs to, scores the rest,
// keeps those at or above the threshold, explains them, optionally re-ranks
// them for diversity and hands the final list to a best-effort sink.
package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/explain"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/matching"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/reranking"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

// Request outcomes reported to metrics.
const (
	outcomeOK       = "ok"
	outcomeEmpty    = "empty"
	outcomeDegraded = "degraded"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// ProfileSource loads user profiles. Unknown users yield model.ErrNotFound.
type ProfileSource interface {
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
}

// ProjectSource loads projects.
type ProjectSource interface {
	GetCandidateProjects(ctx context.Context) ([]model.ProjectCandidate, error)
	GetProject(ctx context.Context, projectID string) (*model.ProjectCandidate, error)
}

// PoolCache memoizes the project pool.
type PoolCache interface {
	Get(ctx context.Context, key string, load func(context.Context) ([]model.ProjectCandidate, error), ttl time.Duration) ([]model.ProjectCandidate, error)
	Invalidate(ctx context.Context, key string) error
}

// Scorer computes and judges match scores. *matching.Scorer implements it.
type Scorer interface {
	Features(user *model.UserProfile, project *model.ProjectCandidate) matching.Features
	Aggregate(f matching.Features) int
	Recommendable(score int) bool
	Threshold() int
}

// Sink accepts a final list for persistence. Submit must not block and
// reports nothing back; failures are the sink's own business.
type Sink interface {
	Submit(ctx context.Context, userID string, recs []model.Recommendation)
}

// Service is the recommendation orchestrator. It holds no per-call state and
// is safe for concurrent use.
type Service struct {
	profiles ProfileSource
	projects ProjectSource
	scorer   Scorer
	reranker *reranking.MMR
	cache    PoolCache
	cacheTTL time.Duration
	sink     Sink

	defaultLimit int
	maxLimit     int
	timeout      time.Duration

	now   func() time.Time
	newID func() string
	log   logger.Logger
}

// New creates a Service. Without WithCache every call reads the pool from
// projects; without WithSink results are not persisted.
func New(profiles ProfileSource, projects ProjectSource, scorer Scorer, opts ...Option) *Service {
	if scorer == nil {
		scorer = matching.NewScorer()
	}
	s := &Service{
		profiles:     profiles,
		projects:     projects,
		scorer:       scorer,
		reranker:     reranking.NewMMR(defaultLambda),
		cache:        passthrough{},
		cacheTTL:     defaultCacheTTL,
		sink:         discard{},
		defaultLimit: defaultLimit,
		maxLimit:     defaultMaxLimit,
		now:          time.Now,
		newID:        uuid.NewString,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request is one recommendation call.
type Request struct {
	UserID    string
	Limit     int
	Diversify bool
}

// Limit clamps a requested count to the configured bounds. Zero or less
// selects the default.
func (s *Service) Limit(n int) int {
	switch {
	case n <= 0:
		return s.defaultLimit
	case n > s.maxLimit:
		return s.maxLimit
	default:
		return n
	}
}

type scored struct {
	project *model.ProjectCandidate
	score   int
	factors model.MatchFactors
}

// Recommend returns up to req.Limit explained recommendations, best first.
// A profile that cannot be loaded fails the call with ErrUserNotFound; a
// failed pool load returns an empty list.
func (s *Service) Recommend(ctx context.Context, req Request) ([]model.Recommendation, error) {
	start := time.Now()
	limit := s.Limit(req.Limit)

	user, pool, err := s.load(ctx, req.UserID)
	if err != nil {
		outcome := outcomeNotFound
		if !errors.Is(err, ErrUserNotFound) {
			outcome = outcomeError
		}
		metrics.RecordRecommendationRequest(outcome, 0)
		return nil, err
	}
	if pool == nil {
		metrics.RecordRecommendationRequest(outcomeDegraded, 0)
		return []model.Recommendation{}, nil
	}

	kept := s.scoreAll(ctx, user, pool)
	slices.SortStableFunc(kept, func(a, b scored) int { return cmp.Compare(b.score, a.score) })

	if req.Diversify && s.reranker != nil {
		kept = s.diversify(kept, limit)
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}

	now := s.now()
	recs := make([]model.Recommendation, 0, len(kept))
	for _, k := range kept {
		recs = append(recs, model.Recommendation{
			ID:           s.newID(),
			UserID:       user.ID,
			ProjectID:    k.project.ID,
			Score:        k.score,
			MatchFactors: k.factors,
			CreatedAt:    now,
		})
	}

	s.sink.Submit(ctx, user.ID, recs)

	outcome := outcomeOK
	if len(recs) == 0 {
		outcome = outcomeEmpty
	}
	metrics.RecordRecommendationRequest(outcome, len(recs))
	metrics.RecordRecommendationServed(float64(time.Since(start).Microseconds()) / 1000)
	s.log.Debug(ctx, "recommendations served",
		logger.String("userId", user.ID),
		logger.Int("candidates", len(pool)),
		logger.Int("returned", len(recs)),
		logger.Duration("took", time.Since(start)))
	return recs, nil
}

// load fetches the profile and the pool concurrently. A nil pool with a nil
// error means the pool was unavailable.
func (s *Service) load(ctx context.Context, userID string) (*model.UserProfile, []model.ProjectCandidate, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		user    *model.UserProfile
		pool    []model.ProjectCandidate
		poolErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.GetUserProfile(gctx, userID)
		if err != nil {
			return err
		}
		if p == nil {
			return model.ErrNotFound
		}
		user = p
		return nil
	})
	g.Go(func() error {
		pool, poolErr = s.pool(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, s.profileError(ctx, userID, err)
	}
	if poolErr != nil {
		s.log.Warn(ctx, "project pool unavailable, returning no recommendations",
			logger.String("userId", userID),
			logger.Error(fmt.Errorf("%w: %w", ErrDataUnavailable, poolErr)))
		metrics.RecordErrorByComponent("recommend", "pool_unavailable")
		return user, nil, nil
	}
	if pool == nil {
		pool = []model.ProjectCandidate{}
	}
	return user, pool, nil
}

func (s *Service) profileError(ctx context.Context, userID string, err error) error {
	if ctx.Err() != nil {
		s.log.Warn(ctx, "profile load interrupted", logger.String("userId", userID), logger.Error(err))
		return fmt.Errorf("load profile %s: %w", userID, ctx.Err())
	}
	if !errors.Is(err, model.ErrNotFound) {
		s.log.Warn(ctx, "profile load failed", logger.String("userId", userID), logger.Error(err))
		metrics.RecordErrorByComponent("recommend", "profile_load")
	}
	return fmt.Errorf("%w: %s: %w", ErrUserNotFound, userID, err)
}

func (s *Service) pool(ctx context.Context) ([]model.ProjectCandidate, error) {
	return s.cache.Get(ctx, PoolCacheKey, s.projects.GetCandidateProjects, s.cacheTTL)
}

// scoreAll keeps candidates at or above the threshold in pool order. A
// candidate that panics while scoring is skipped.
func (s *Service) scoreAll(ctx context.Context, user *model.UserProfile, pool []model.ProjectCandidate) []scored {
	kept := make([]scored, 0, len(pool))
	considered := 0
	for i := range pool {
		p := &pool[i]
		if p.Excludes(user.ID) || !p.Recruitable() {
			continue
		}
		considered++
		res, ok, err := s.scoreOne(user, p)
		if err != nil {
			metrics.RecordCandidateSkipped()
			s.log.Warn(ctx, "skipping project that failed to score",
				logger.String("userId", user.ID),
				logger.String("projectId", p.ID),
				logger.Error(err))
			continue
		}
		if ok {
			kept = append(kept, res)
		}
	}
	metrics.RecordCandidatesScored(considered)
	return kept
}

func (s *Service) scoreOne(user *model.UserProfile, p *model.ProjectCandidate) (res scored, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring project %s: %v", p.ID, r)
		}
	}()
	f := s.scorer.Features(user, p)
	score := s.scorer.Aggregate(f)
	if !s.scorer.Recommendable(score) {
		return scored{}, false, nil
	}
	return scored{project: p, score: score, factors: explain.Build(f)}, true, nil
}

func (s *Service) diversify(kept []scored, limit int) []scored {
	if len(kept) <= 1 {
		return kept
	}
	items := make([]reranking.Item, len(kept))
	byID := make(map[string]scored, len(kept))
	for i, k := range kept {
		tech := make([]string, 0, len(k.project.Languages))
		for name := range k.project.TechSet() {
			tech = append(tech, name)
		}
		items[i] = reranking.Item{ID: k.project.ID, Score: float64(k.score), Tech: tech}
		byID[k.project.ID] = k
	}
	picked := s.reranker.Rerank(items, limit)
	out := make([]scored, 0, len(picked))
	for _, it := range picked {
		out = append(out, byID[it.ID])
	}
	return out
}

// InvalidatePool drops the cached project pool.
func (s *Service) InvalidatePool(ctx context.Context) error {
	return s.cache.Invalidate(ctx, PoolCacheKey)
}

// passthrough is the cache used when none is configured.
type passthrough struct{}

func (passthrough) Get(ctx context.Context, _ string, load func(context.Context) ([]model.ProjectCandidate, error), _ time.Duration) ([]model.ProjectCandidate, error) {
	return load(ctx)
}

func (passthrough) Invalidate(context.Context, string) error { return nil }

type discard struct{}

func (discard) Submit(context.Context, string, []model.Recommendation) {}
