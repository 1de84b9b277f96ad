// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/level"
)

// UserTopic is a topic a user is interested in or has worked with.
type UserTopic struct {
	TopicName       string      `json:"topicName"`
	InterestLevel   level.Level `json:"interestLevel"`
	ExperienceLevel level.Level `json:"experienceLevel"`
}

// UserLanguage is a programming language a user knows.
type UserLanguage struct {
	LanguageName     string      `json:"languageName"`
	ProficiencyLevel level.Level `json:"proficiencyLevel"`
	YearsExperience  *float64    `json:"yearsExperience,omitempty"`
}

// UserProfile is the read-only snapshot scored against projects.
type UserProfile struct {
	ID string `json:"id"`
	// YearsExperience is nil when unknown; it then buckets as intermediate.
	YearsExperience *float64       `json:"yearsExperience,omitempty"`
	Topics          []UserTopic    `json:"topics"`
	Languages       []UserLanguage `json:"languages"`
}

// ProjectTopic is a topic a project declares.
type ProjectTopic struct {
	TopicName string `json:"topicName"`
	IsPrimary bool   `json:"isPrimary"`
}

// ProjectLanguage is a language a project requires.
type ProjectLanguage struct {
	LanguageName  string      `json:"languageName"`
	IsPrimary     bool        `json:"isPrimary"`
	RequiredLevel level.Level `json:"requiredLevel"`
}

// Recruitable project statuses.
const (
	StatusRecruiting = "recruiting"
	StatusActive     = "active"
)

// ProjectCandidate is a project a user could be recommended.
type ProjectCandidate struct {
	ID                      string            `json:"id"`
	Title                   string            `json:"title"`
	Description             string            `json:"description"`
	RequiredExperienceLevel level.Level       `json:"requiredExperienceLevel"`
	OwnerID                 string            `json:"ownerId"`
	MemberIDs               []string          `json:"memberIds"`
	CurrentMembers          int               `json:"currentMembers"`
	MaxMembers              int               `json:"maxMembers"`
	Status                  string            `json:"status"`
	Visibility              string            `json:"visibility"`
	CreatedAt               time.Time         `json:"createdAt"`
	Topics                  []ProjectTopic    `json:"projectTopics"`
	Languages               []ProjectLanguage `json:"projectLanguages"`
}

// Excludes reports whether userID owns the project or is an active member.
func (p *ProjectCandidate) Excludes(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Recruitable reports whether the status accepts new members.
func (p *ProjectCandidate) Recruitable() bool {
	switch strings.ToLower(p.Status) {
	case StatusRecruiting, StatusActive:
		return true
	default:
		return false
	}
}

// TechSet returns the lower-cased set of language names of the project.
func (p *ProjectCandidate) TechSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Languages))
	for _, l := range p.Languages {
		name := strings.ToLower(strings.TrimSpace(l.LanguageName))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}
