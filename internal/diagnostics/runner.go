package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Runner executes recommend checks.
type Runner struct {
	cfg    Config
	client *Client
	log    logger.Logger
}

// NewRunner creates a Runner. A nil client talks to cfg.BaseURL with the
// default transport.
func NewRunner(cfg Config, client *Client, log logger.Logger) *Runner {
	cfg.normalize()
	if client == nil {
		client = NewClient(cfg.BaseURL, nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{cfg: cfg, client: client, log: log}
}

// Run checks service health, then requests recommendations for every user
// with at most Workers requests in flight. Each user gets its own timeout;
// a failing user is recorded in the report and does not stop the others.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if len(r.cfg.Users) == 0 {
		return nil, ErrNoUsers
	}
	report := &Report{StartTime: time.Now(), Results: make([]UserResult, len(r.cfg.Users))}

	r.log.Info(ctx, "starting recommendation diagnostics",
		logger.String("baseURL", r.cfg.BaseURL),
		logger.Int("users", len(r.cfg.Users)),
		logger.Int("workers", r.cfg.Workers),
		logger.Duration("timeout", r.cfg.Timeout))

	hctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	err := r.client.Health(hctx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, userID := range r.cfg.Users {
		g.Go(func() error {
			report.Results[i] = r.checkUser(gctx, userID)
			if r.cfg.Verbose {
				res := report.Results[i]
				r.log.Info(gctx, "user checked",
					logger.String("userId", userID),
					logger.String("outcome", res.Outcome),
					logger.Int("count", res.Count),
					logger.Duration("latency", res.Latency))
			}
			return nil
		})
	}
	_ = g.Wait()

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	report.tally()
	return report, ctx.Err()
}

func (r *Runner) checkUser(ctx context.Context, userID string) UserResult {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	list, err := r.client.Recommendations(ctx, userID, r.cfg.Limit, r.cfg.Diversify)
	res := UserResult{UserID: userID, Latency: time.Since(start)}
	if err != nil {
		res.Outcome, res.Status = classify(err)
		res.Error = err.Error()
		if res.Outcome == OutcomeFailed {
			r.log.Warn(ctx, "recommendation request failed",
				logger.String("userId", userID), logger.Error(err))
		}
		return res
	}

	res.Status = http.StatusOK
	res.Count = len(list.Recommendations)
	res.Results = list.Recommendations
	if res.Count == 0 {
		res.Outcome = OutcomeEmpty
		return res
	}
	res.Outcome = OutcomeOK
	res.TopScore = list.Recommendations[0].Score
	return res
}

func classify(err error) (outcome string, status int) {
	var se *StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout, 0
	case errors.As(err, &se):
		switch se.Status {
		case http.StatusNotFound:
			return OutcomeNotFound, se.Status
		case http.StatusServiceUnavailable, http.StatusTooManyRequests:
			return OutcomeBusy, se.Status
		}
		return OutcomeFailed, se.Status
	default:
		return OutcomeFailed, 0
	}
}
