package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

// Default breaker configuration constants.
const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
	halfOpenRequests        = 1
)

// BreakerOption configures a BreakerStore.
type BreakerOption func(*breakerSettings)

type breakerSettings struct {
	failureThreshold uint32
	timeout          time.Duration
	log              logger.Logger
}

// WithFailureThreshold sets the consecutive failures that open the breaker.
func WithFailureThreshold(n int) BreakerOption {
	return func(s *breakerSettings) {
		if n > 0 {
			s.failureThreshold = uint32(n)
		}
	}
}

// WithOpenTimeout sets how long the breaker stays open.
func WithOpenTimeout(d time.Duration) BreakerOption {
	return func(s *breakerSettings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithBreakerLogger sets the logger.
func WithBreakerLogger(l logger.Logger) BreakerOption {
	return func(s *breakerSettings) {
		if l != nil {
			s.log = l
		}
	}
}

// BreakerStore stops calling a failing store for a while. Calls refused by
// an open breaker fail with ErrUnavailable. Not-found results and caller
// cancellations do not count as failures.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[any]
	name string
	log  logger.Logger
}

var _ Store = (*BreakerStore)(nil)

// NewBreakerStore wraps next.
func NewBreakerStore(next Store, opts ...BreakerOption) *BreakerStore {
	settings := breakerSettings{
		failureThreshold: defaultFailureThreshold,
		timeout:          defaultOpenTimeout,
		log:              logger.Nop(),
	}
	for _, opt := range opts {
		opt(&settings)
	}

	name := "store-" + next.Name()
	metrics.UpdateBreakerState(name, int(gobreaker.StateClosed))

	b := &BreakerStore{next: next, name: name, log: settings.log}
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpenRequests,
		Timeout:     settings.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.failureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.Warn(context.Background(), "store breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
			metrics.UpdateBreakerState(name, int(to))
		},
	})
	return b
}

// Name implements Store.
func (b *BreakerStore) Name() string { return b.next.Name() }

// State returns the breaker state name.
func (b *BreakerStore) State() string { return b.cb.State().String() }

// Ping implements Store. Pings bypass the breaker.
func (b *BreakerStore) Ping(ctx context.Context) error { return b.next.Ping(ctx) }

func (b *BreakerStore) execute(fn func() (any, error)) (any, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordErrorByComponent("repository", "breaker_open")
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, b.name, err)
	}
	return res, err
}

// GetUserProfile implements ProfileStore.
func (b *BreakerStore) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.GetUserProfile(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	p, ok := res.(*model.UserProfile)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for GetUserProfile")
	}
	return p, nil
}

// GetCandidateProjects implements ProjectStore.
func (b *BreakerStore) GetCandidateProjects(ctx context.Context) ([]model.ProjectCandidate, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.GetCandidateProjects(ctx)
	})
	if err != nil {
		return nil, err
	}
	projects, ok := res.([]model.ProjectCandidate)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for GetCandidateProjects")
	}
	return projects, nil
}

// GetProject implements ProjectStore.
func (b *BreakerStore) GetProject(ctx context.Context, projectID string) (*model.ProjectCandidate, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.GetProject(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}
	p, ok := res.(*model.ProjectCandidate)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for GetProject")
	}
	return p, nil
}

// UpsertRecommendations implements RecommendationStore.
func (b *BreakerStore) UpsertRecommendations(ctx context.Context, userID string, recs []model.Recommendation) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.UpsertRecommendations(ctx, userID, recs)
	})
	return err
}

// SaveAttempt implements AttemptStore.
func (b *BreakerStore) SaveAttempt(ctx context.Context, a *model.Attempt) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.SaveAttempt(ctx, a)
	})
	return err
}
