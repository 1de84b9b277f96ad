package model

import "time"

// CodeSubmission is free-form code sent for grading.
type CodeSubmission struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

// EvaluationDetails itemizes how a score was reached.
type EvaluationDetails struct {
	Evaluator       string         `json:"evaluator"`
	Language        string         `json:"language,omitempty"`
	Breakdown       map[string]int `json:"breakdown,omitempty"`
	FoundFeatures   []string       `json:"foundFeatures,omitempty"`
	MissingFeatures []string       `json:"missingFeatures,omitempty"`
	Fallback        bool           `json:"fallback,omitempty"`
}

// EvaluationResult is the graded outcome of a submission.
type EvaluationResult struct {
	Score    int               `json:"score"`
	Passed   bool              `json:"passed"`
	Feedback string            `json:"feedback"`
	Details  EvaluationDetails `json:"details"`
}

// Attempt is a graded challenge submission.
type Attempt struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challengeId"`
	UserID      string    `json:"userId"`
	Language    string    `json:"language"`
	Code        string    `json:"-"`
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	Feedback    string    `json:"feedback"`
	CreatedAt   time.Time `json:"createdAt"`
}
