package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/level"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

const backendPostgres = "postgres"

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	DSN         string
	MaxConns    int32
	MinConns    int32
	MaxLifetime time.Duration
}

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore opens a pool and pings the database.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	} else {
		poolConfig.MaxConns = 25
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Name implements Store.
func (s *PostgresStore) Name() string { return backendPostgres }

// Ping implements Store.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func observe(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordRepositoryCall(backendPostgres, op, float64(time.Since(start).Milliseconds()), err)
}

// GetUserProfile implements ProfileStore.
func (s *PostgresStore) GetUserProfile(ctx context.Context, userID string) (_ *model.UserProfile, err error) {
	defer func(start time.Time) { observe("get_user_profile", start, err) }(time.Now())

	p := &model.UserProfile{ID: userID}
	err = s.pool.QueryRow(ctx, `SELECT years_experience FROM users WHERE id = $1`, userID).Scan(&p.YearsExperience)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT t.name, ut.interest_level, ut.experience_level
		FROM user_topics ut
		JOIN topics t ON t.id = ut.topic_id
		WHERE ut.user_id = $1
		ORDER BY t.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user topics: %w", err)
	}
	for rows.Next() {
		var name string
		var interest, experience *string
		if err := rows.Scan(&name, &interest, &experience); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan user topic: %w", err)
		}
		p.Topics = append(p.Topics, model.UserTopic{
			TopicName:       name,
			InterestLevel:   levelFromDB(interest),
			ExperienceLevel: levelFromDB(experience),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user topics: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT pl.name, upl.proficiency_level, upl.years_experience
		FROM user_programming_languages upl
		JOIN programming_languages pl ON pl.id = upl.language_id
		WHERE upl.user_id = $1
		ORDER BY pl.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user languages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l model.UserLanguage
		var proficiency *string
		if err := rows.Scan(&l.LanguageName, &proficiency, &l.YearsExperience); err != nil {
			return nil, fmt.Errorf("failed to scan user language: %w", err)
		}
		l.ProficiencyLevel = levelFromDB(proficiency)
		p.Languages = append(p.Languages, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user languages: %w", err)
	}
	return p, nil
}

const projectColumns = `
	SELECT p.id, p.title, p.description, p.required_experience_level, p.owner_id,
	       p.current_members, p.maximum_members, p.status, p.visibility, p.created_at
	FROM projects p`

// GetCandidateProjects implements ProjectStore.
func (s *PostgresStore) GetCandidateProjects(ctx context.Context) (_ []model.ProjectCandidate, err error) {
	defer func(start time.Time) { observe("get_candidate_projects", start, err) }(time.Now())

	return s.loadProjects(ctx, projectColumns+`
		WHERE lower(p.status) = ANY($1) AND lower(p.visibility) <> 'private'
		ORDER BY p.created_at DESC, p.id`,
		[]string{model.StatusRecruiting, model.StatusActive})
}

// GetProject implements ProjectStore.
func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (_ *model.ProjectCandidate, err error) {
	defer func(start time.Time) { observe("get_project", start, err) }(time.Now())

	projects, err := s.loadProjects(ctx, projectColumns+` WHERE p.id = $1`, projectID)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return &projects[0], nil
}

func (s *PostgresStore) loadProjects(ctx context.Context, query string, args ...any) ([]model.ProjectCandidate, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	var projects []model.ProjectCandidate
	for rows.Next() {
		var p model.ProjectCandidate
		var required *string
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &required, &p.OwnerID,
			&p.CurrentMembers, &p.MaxMembers, &p.Status, &p.Visibility, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.RequiredExperienceLevel = levelFromDB(required)
		projects = append(projects, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	if len(projects) == 0 {
		return projects, nil
	}

	ids := make([]string, len(projects))
	index := make(map[string]int, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
		index[projects[i].ID] = i
	}
	if err := s.attachTopics(ctx, projects, index, ids); err != nil {
		return nil, err
	}
	if err := s.attachLanguages(ctx, projects, index, ids); err != nil {
		return nil, err
	}
	if err := s.attachMembers(ctx, projects, index, ids); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *PostgresStore) attachTopics(ctx context.Context, projects []model.ProjectCandidate, index map[string]int, ids []string) error {
	rows, err := s.pool.Query(ctx, `
		SELECT pt.project_id, t.name, pt.is_primary
		FROM project_topics pt
		JOIN topics t ON t.id = pt.topic_id
		WHERE pt.project_id = ANY($1)
		ORDER BY pt.project_id, pt.is_primary DESC, t.name`, ids)
	if err != nil {
		return fmt.Errorf("failed to get project topics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var projectID string
		var t model.ProjectTopic
		if err := rows.Scan(&projectID, &t.TopicName, &t.IsPrimary); err != nil {
			return fmt.Errorf("failed to scan project topic: %w", err)
		}
		if i, ok := index[projectID]; ok {
			projects[i].Topics = append(projects[i].Topics, t)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) attachLanguages(ctx context.Context, projects []model.ProjectCandidate, index map[string]int, ids []string) error {
	rows, err := s.pool.Query(ctx, `
		SELECT pl.project_id, l.name, pl.is_primary, pl.required_level
		FROM project_languages pl
		JOIN programming_languages l ON l.id = pl.language_id
		WHERE pl.project_id = ANY($1)
		ORDER BY pl.project_id, pl.is_primary DESC, l.name`, ids)
	if err != nil {
		return fmt.Errorf("failed to get project languages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var projectID string
		var l model.ProjectLanguage
		var required *string
		if err := rows.Scan(&projectID, &l.LanguageName, &l.IsPrimary, &required); err != nil {
			return fmt.Errorf("failed to scan project language: %w", err)
		}
		l.RequiredLevel = levelFromDB(required)
		if i, ok := index[projectID]; ok {
			projects[i].Languages = append(projects[i].Languages, l)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) attachMembers(ctx context.Context, projects []model.ProjectCandidate, index map[string]int, ids []string) error {
	rows, err := s.pool.Query(ctx, `
		SELECT project_id, user_id
		FROM project_members
		WHERE project_id = ANY($1) AND status = 'active'
		ORDER BY project_id, user_id`, ids)
	if err != nil {
		return fmt.Errorf("failed to get project members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var projectID, userID string
		if err := rows.Scan(&projectID, &userID); err != nil {
			return fmt.Errorf("failed to scan project member: %w", err)
		}
		if i, ok := index[projectID]; ok {
			projects[i].MemberIDs = append(projects[i].MemberIDs, userID)
		}
	}
	return rows.Err()
}

// UpsertRecommendations implements RecommendationStore in one transaction.
func (s *PostgresStore) UpsertRecommendations(ctx context.Context, userID string, recs []model.Recommendation) (err error) {
	defer func(start time.Time) { observe("upsert_recommendations", start, err) }(time.Now())

	if len(recs) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range recs {
		factors, err := encodeFactors(recs[i].MatchFactors)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO project_recommendations
				(id, user_id, project_id, recommendation_score, match_factors, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id, project_id) DO UPDATE SET
				recommendation_score = EXCLUDED.recommendation_score,
				match_factors        = EXCLUDED.match_factors,
				created_at           = EXCLUDED.created_at`,
			recs[i].ID, userID, recs[i].ProjectID, recs[i].Score, factors, recs[i].CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert recommendation %s/%s: %w", userID, recs[i].ProjectID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recommendations: %w", err)
	}
	return nil
}

// SaveAttempt implements AttemptStore.
func (s *PostgresStore) SaveAttempt(ctx context.Context, a *model.Attempt) (err error) {
	defer func(start time.Time) { observe("save_attempt", start, err) }(time.Now())

	_, err = s.pool.Exec(ctx, `
		INSERT INTO challenge_attempts
			(id, challenge_id, user_id, language, submitted_code, score, passed, feedback, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.ChallengeID, a.UserID, a.Language, a.Code, a.Score, a.Passed, a.Feedback, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	return nil
}

// levelFromDB maps a nullable level column to a Level.
func levelFromDB(raw *string) level.Level {
	if raw == nil {
		return level.None()
	}
	return level.Parse(*raw)
}

// encodeFactors renders match factors for the jsonb column.
func encodeFactors(f model.MatchFactors) ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal match factors: %w", err)
	}
	return b, nil
}
