package repository

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

// MemoryStore keeps every record in process. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu              sync.RWMutex
	users           map[string]model.UserProfile
	projects        map[string]model.ProjectCandidate
	projectOrder    []string
	recommendations map[string]map[string]model.Recommendation
	attempts        []model.Attempt
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:           make(map[string]model.UserProfile),
		projects:        make(map[string]model.ProjectCandidate),
		recommendations: make(map[string]map[string]model.Recommendation),
	}
}

// Name implements Store.
func (s *MemoryStore) Name() string { return "memory" }

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// PutUser inserts or replaces a profile.
func (s *MemoryStore) PutUser(p *model.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[p.ID] = *p
}

// PutProject inserts or replaces a project. Insertion order is the store order.
func (s *MemoryStore) PutProject(p *model.ProjectCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		s.projectOrder = append(s.projectOrder, p.ID)
	}
	s.projects[p.ID] = *p
}

// GetUserProfile implements ProfileStore.
func (s *MemoryStore) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return &p, nil
}

// GetCandidateProjects implements ProjectStore.
func (s *MemoryStore) GetCandidateProjects(ctx context.Context) ([]model.ProjectCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ProjectCandidate, 0, len(s.projectOrder))
	for _, id := range s.projectOrder {
		p := s.projects[id]
		if !p.Recruitable() || strings.EqualFold(p.Visibility, "private") {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetProject implements ProjectStore.
func (s *MemoryStore) GetProject(ctx context.Context, projectID string) (*model.ProjectCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return &p, nil
}

// UpsertRecommendations implements RecommendationStore.
func (s *MemoryStore) UpsertRecommendations(ctx context.Context, userID string, recs []model.Recommendation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byProject, ok := s.recommendations[userID]
	if !ok {
		byProject = make(map[string]model.Recommendation, len(recs))
		s.recommendations[userID] = byProject
	}
	for _, r := range recs {
		byProject[r.ProjectID] = r
	}
	return nil
}

// Recommendations returns the stored recommendations of userID, best first.
func (s *MemoryStore) Recommendations(userID string) []model.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Recommendation, 0, len(s.recommendations[userID]))
	for _, r := range s.recommendations[userID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}

// SaveAttempt implements AttemptStore.
func (s *MemoryStore) SaveAttempt(ctx context.Context, a *model.Attempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, *a)
	return nil
}

// Attempts returns the attempts of userID in submission order.
func (s *MemoryStore) Attempts(userID string) []model.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Attempt
	for _, a := range s.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

// Counts returns the number of users and projects held.
func (s *MemoryStore) Counts() (users, projects int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), len(s.projects)
}

// Seed is the JSON document accepted by LoadSeed.
type Seed struct {
	Users    []model.UserProfile      `json:"users"`
	Projects []model.ProjectCandidate `json:"projects"`
}

// LoadSeed reads users and projects from r. Records without an id are
// rejected; nothing is stored in that case.
func (s *MemoryStore) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	for i := range seed.Users {
		if strings.TrimSpace(seed.Users[i].ID) == "" {
			return fmt.Errorf("%w: user %d has no id", ErrInvalidSeed, i)
		}
	}
	for i := range seed.Projects {
		if strings.TrimSpace(seed.Projects[i].ID) == "" {
			return fmt.Errorf("%w: project %d has no id", ErrInvalidSeed, i)
		}
	}
	for i := range seed.Users {
		s.PutUser(&seed.Users[i])
	}
	for i := range seed.Projects {
		s.PutProject(&seed.Projects[i])
	}
	return nil
}
