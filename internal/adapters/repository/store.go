// Package repository holds the data-store collaborators of the matching
// service: an in-memory store, a PostgreSQL store and a circuit-breaker
// decorator shared by both.
package repository

import (
	"context"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

// ProfileStore reads user profiles.
type ProfileStore interface {
	// GetUserProfile returns ErrNotFound for unknown users.
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
}

// ProjectStore reads projects.
type ProjectStore interface {
	// GetCandidateProjects returns recruitable, non-private projects in a
	// stable order.
	GetCandidateProjects(ctx context.Context) ([]model.ProjectCandidate, error)

	// GetProject returns one project regardless of status, or ErrNotFound.
	GetProject(ctx context.Context, projectID string) (*model.ProjectCandidate, error)
}

// RecommendationStore persists recommendations keyed on (user, project).
type RecommendationStore interface {
	UpsertRecommendations(ctx context.Context, userID string, recs []model.Recommendation) error
}

// AttemptStore persists graded challenge attempts.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, a *model.Attempt) error
}

// Store is every collaborator the service needs.
type Store interface {
	ProfileStore
	ProjectStore
	RecommendationStore
	AttemptStore

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Name labels the backend in logs and metrics.
	Name() string
}
