// Package challenge grades coding-challenge attempts and records them.
// Passing an attempt is what lets a user join a project.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/evaluation"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
)

// ErrInvalidAttempt is returned for an attempt missing its challenge or user.
var ErrInvalidAttempt = errors.New("invalid attempt")

// AttemptSaver persists graded attempts.
type AttemptSaver interface {
	SaveAttempt(ctx context.Context, a *model.Attempt) error
}

// Submission is one attempt at a challenge.
type Submission struct {
	ChallengeID string
	UserID      string
	Code        string
	Language    string
}

// Outcome is a graded and saved attempt.
type Outcome struct {
	Attempt    model.Attempt          `json:"attempt"`
	Evaluation model.EvaluationResult `json:"evaluation"`
	CanJoin    bool                   `json:"canJoin"`
}

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

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service grades attempts with an Evaluator and saves them.
type Service struct {
	eval     *evaluation.Evaluator
	attempts AttemptSaver
	now      func() time.Time
	log      logger.Logger
}

// New creates a Service.
func New(eval *evaluation.Evaluator, attempts AttemptSaver, opts ...Option) *Service {
	s := &Service{
		eval:     eval,
		attempts: attempts,
		now:      time.Now,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit grades sub and saves the attempt. CanJoin mirrors the pass mark.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	if strings.TrimSpace(sub.ChallengeID) == "" || strings.TrimSpace(sub.UserID) == "" {
		return nil, ErrInvalidAttempt
	}
	res, err := s.eval.Evaluate(ctx, model.CodeSubmission{Code: sub.Code, Language: sub.Language})
	if err != nil {
		return nil, err
	}

	a := model.Attempt{
		ID:          uuid.NewString(),
		ChallengeID: sub.ChallengeID,
		UserID:      sub.UserID,
		Language:    res.Details.Language,
		Code:        sub.Code,
		Score:       res.Score,
		Passed:      res.Passed,
		Feedback:    res.Feedback,
		CreatedAt:   s.now(),
	}
	if err := s.attempts.SaveAttempt(ctx, &a); err != nil {
		s.log.Error(ctx, "saving attempt failed",
			logger.String("challengeId", a.ChallengeID),
			logger.String("userId", a.UserID),
			logger.Error(err))
		return nil, fmt.Errorf("save attempt: %w", err)
	}

	s.log.Info(ctx, "challenge attempt graded",
		logger.String("attemptId", a.ID),
		logger.String("challengeId", a.ChallengeID),
		logger.String("userId", a.UserID),
		logger.Int("score", a.Score),
		logger.Bool("passed", a.Passed))
	return &Outcome{Attempt: a, Evaluation: res, CanJoin: res.Passed}, nil
}
