// Package matching scores how well a user fits a project.
//
// Three sub-scores are computed per (user, project) pair: topic coverage,
// language proficiency and difficulty alignment. Aggregate combines them
// with configured weights into a single 0-100 match score.
package matching

import (
	"math"
	"strings"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultTopicWeight      = 0.30
	defaultLanguageWeight   = 0.35
	defaultDifficultyWeight = 0.20
	defaultPrimaryBoost     = 1.5
	defaultPenalty          = 18
	defaultThreshold        = 60

	// NeutralScore is returned when a project declares no requirement of a kind.
	NeutralScore = 50

	qualityShare  = 0.85
	coverageShare = 0.15
	maxScore      = 100
)

// Weights are the aggregator weights. They must sum to at most 1.
type Weights struct {
	Topic      float64
	Language   float64
	Difficulty float64
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the aggregator weights. Negative weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w.Topic >= 0 && w.Language >= 0 && w.Difficulty >= 0 {
			s.weights = w
		}
	}
}

// WithPrimaryBoost sets the multiplier applied to primary requirements.
func WithPrimaryBoost(boost float64) Option {
	return func(s *Scorer) {
		if boost >= 1 {
			s.primaryBoost = boost
		}
	}
}

// WithDifficultyPenalty sets the per-level seniority gap penalty.
func WithDifficultyPenalty(penalty float64) Option {
	return func(s *Scorer) {
		if penalty >= 0 {
			s.penalty = penalty
		}
	}
}

// WithThreshold sets the minimum aggregate score of a recommendable project.
func WithThreshold(threshold int) Option {
	return func(s *Scorer) {
		if threshold >= 0 && threshold <= maxScore {
			s.threshold = threshold
		}
	}
}

// WithCaseInsensitiveNames folds topic and language names before joining.
func WithCaseInsensitiveNames(enabled bool) Option {
	return func(s *Scorer) {
		s.foldCase = enabled
	}
}

// Scorer is stateless once built and safe for concurrent use.
type Scorer struct {
	weights      Weights
	primaryBoost float64
	penalty      float64
	threshold    int
	foldCase     bool
}

// NewScorer creates a Scorer with defaults overridden by opts.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights: Weights{
			Topic:      defaultTopicWeight,
			Language:   defaultLanguageWeight,
			Difficulty: defaultDifficultyWeight,
		},
		primaryBoost: defaultPrimaryBoost,
		penalty:      defaultPenalty,
		threshold:    defaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the configured recommendation threshold.
func (s *Scorer) Threshold() int { return s.threshold }

// Penalty returns the configured per-level difficulty penalty.
func (s *Scorer) Penalty() float64 { return s.penalty }

// Features holds the sub-scores of one (user, project) pair.
type Features struct {
	Topic      TopicResult
	Language   LanguageResult
	Difficulty float64
}

// Features computes every sub-score of user against project.
func (s *Scorer) Features(user *model.UserProfile, project *model.ProjectCandidate) Features {
	return Features{
		Topic:      s.TopicCoverage(user.Topics, project.Topics),
		Language:   s.LanguageProficiency(user.Languages, project.Languages),
		Difficulty: s.DifficultyAlignment(user.YearsExperience, project.RequiredExperienceLevel),
	}
}

// Aggregate combines sub-scores into a rounded score clamped to [0,100].
func (s *Scorer) Aggregate(f Features) int {
	total := s.weights.Topic*f.Topic.Score +
		s.weights.Language*f.Language.Score +
		s.weights.Difficulty*f.Difficulty
	if math.IsNaN(total) {
		return 0
	}
	switch {
	case total <= 0:
		return 0
	case total >= maxScore:
		return maxScore
	default:
		return int(math.Round(total))
	}
}

// Recommendable reports whether score passes the threshold.
func (s *Scorer) Recommendable(score int) bool {
	return score >= s.threshold
}

func (s *Scorer) weightOf(primary bool) float64 {
	if primary {
		return s.primaryBoost
	}
	return 1.0
}

func (s *Scorer) key(name string) string {
	if s.foldCase {
		return strings.ToLower(strings.TrimSpace(name))
	}
	return name
}

// blend mixes match quality with breadth of coverage.
func blend(sum, totalWeight, coveredWeight float64) (score, coverage float64) {
	base := sum / totalWeight
	coverage = coveredWeight / totalWeight
	return qualityShare*base + coverageShare*coverage*maxScore, coverage
}
