package model

import "time"

// Gap statuses.
const (
	GapMissing = "missing"
	GapBelow   = "below"
)

// LanguageHighlight is a language the user brings to a project.
type LanguageHighlight struct {
	Language    string  `json:"language"`
	Proficiency float64 `json:"proficiency"`
	Required    float64 `json:"required"`
	IsPrimary   bool    `json:"isPrimary"`
}

// TopicHighlight is a topic the user shares with a project.
type TopicHighlight struct {
	Topic      string  `json:"topic"`
	Interest   float64 `json:"interest"`
	Experience float64 `json:"experience"`
	IsPrimary  bool    `json:"isPrimary"`
}

// Gap is a requirement the user does not fully cover.
type Gap struct {
	Kind      string `json:"kind"` // "language" or "topic"
	Name      string `json:"name"`
	Status    string `json:"status"`
	IsPrimary bool   `json:"isPrimary"`
}

// MatchFactors explains a recommendation score.
type MatchFactors struct {
	TopicScore       float64             `json:"topicScore"`
	LanguageScore    float64             `json:"languageScore"`
	DifficultyScore  float64             `json:"difficultyScore"`
	TopicCoverage    float64             `json:"topicCoverage"`
	LanguageCoverage float64             `json:"languageCoverage"`
	Strengths        []string            `json:"strengths"`
	Suggestions      []string            `json:"suggestions"`
	TopLanguages     []LanguageHighlight `json:"topLanguages"`
	TopTopics        []TopicHighlight    `json:"topTopics"`
	Gaps             []Gap               `json:"gaps"`
}

// Recommendation is a persisted (user, project) match.
type Recommendation struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	ProjectID    string       `json:"projectId"`
	Score        int          `json:"score"`
	MatchFactors MatchFactors `json:"matchFactors"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// PersistBatch is one user's recommendation list awaiting a best-effort upsert.
type PersistBatch struct {
	UserID          string
	Recommendations []Recommendation
	EnqueuedAt      time.Time
}
