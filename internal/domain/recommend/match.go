package recommend

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/explain"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

// MatchResult explains how one user fits one project.
type MatchResult struct {
	UserID        string             `json:"userId"`
	ProjectID     string             `json:"projectId"`
	Title         string             `json:"title"`
	Score         int                `json:"score"`
	Threshold     int                `json:"threshold"`
	Recommendable bool               `json:"recommendable"`
	MatchFactors  model.MatchFactors `json:"matchFactors"`
}

// Match scores a single (user, project) pair. The project may be outside the
// recruitable pool and membership is not checked.
func (s *Service) Match(ctx context.Context, userID, projectID string) (*MatchResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		user    *model.UserProfile
		project *model.ProjectCandidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.GetUserProfile(gctx, userID)
		if err == nil && p == nil {
			err = model.ErrNotFound
		}
		if err != nil {
			return s.profileError(ctx, userID, err)
		}
		user = p
		return nil
	})
	g.Go(func() error {
		p, err := s.projects.GetProject(gctx, projectID)
		if err == nil && p == nil {
			err = model.ErrNotFound
		}
		switch {
		case errors.Is(err, model.ErrNotFound):
			return fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		case err != nil:
			return fmt.Errorf("load project %s: %w", projectID, err)
		}
		project = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f := s.scorer.Features(user, project)
	score := s.scorer.Aggregate(f)
	return &MatchResult{
		UserID:        user.ID,
		ProjectID:     project.ID,
		Title:         project.Title,
		Score:         score,
		Threshold:     s.scorer.Threshold(),
		Recommendable: s.scorer.Recommendable(score),
		MatchFactors:  explain.Build(f),
	}, nil
}
