package repository

import (
	"context"
	"fmt"
)

// schema is applied by Migrate. Level columns are free text: a level name, a
// fraction in [0,1] or a number of years.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS topics (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS programming_languages (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id               TEXT PRIMARY KEY,
		years_experience DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS user_topics (
		user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		topic_id         BIGINT NOT NULL REFERENCES topics(id),
		interest_level   TEXT,
		experience_level TEXT,
		PRIMARY KEY (user_id, topic_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_programming_languages (
		user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		language_id       BIGINT NOT NULL REFERENCES programming_languages(id),
		proficiency_level TEXT,
		years_experience  DOUBLE PRECISION,
		PRIMARY KEY (user_id, language_id)
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id                        TEXT PRIMARY KEY,
		title                     TEXT NOT NULL,
		description               TEXT NOT NULL DEFAULT '',
		required_experience_level TEXT,
		owner_id                  TEXT NOT NULL,
		current_members           INTEGER NOT NULL DEFAULT 0,
		maximum_members           INTEGER NOT NULL DEFAULT 0,
		status                    TEXT NOT NULL DEFAULT 'recruiting',
		visibility                TEXT NOT NULL DEFAULT 'public',
		created_at                TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS project_topics (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		topic_id   BIGINT NOT NULL REFERENCES topics(id),
		is_primary BOOLEAN NOT NULL DEFAULT false,
		PRIMARY KEY (project_id, topic_id)
	)`,
	`CREATE TABLE IF NOT EXISTS project_languages (
		project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		language_id    BIGINT NOT NULL REFERENCES programming_languages(id),
		is_primary     BOOLEAN NOT NULL DEFAULT false,
		required_level TEXT,
		PRIMARY KEY (project_id, language_id)
	)`,
	`CREATE TABLE IF NOT EXISTS project_members (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'active',
		PRIMARY KEY (project_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS project_recommendations (
		id                   UUID PRIMARY KEY,
		user_id              TEXT NOT NULL,
		project_id           TEXT NOT NULL,
		recommendation_score INTEGER NOT NULL,
		match_factors        JSONB NOT NULL,
		created_at           TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, project_id)
	)`,
	`CREATE TABLE IF NOT EXISTS challenge_attempts (
		id             UUID PRIMARY KEY,
		challenge_id   TEXT NOT NULL,
		user_id        TEXT NOT NULL,
		language       TEXT NOT NULL DEFAULT '',
		submitted_code TEXT NOT NULL,
		score          INTEGER NOT NULL,
		passed         BOOLEAN NOT NULL,
		feedback       TEXT NOT NULL,
		submitted_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects (status, visibility)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_user ON challenge_attempts (user_id, challenge_id)`,
}

// Migrate creates missing tables in one transaction.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
