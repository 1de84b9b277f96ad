// Package evaluation grades free-form code submissions with regex heuristics.
//
// Two graders exist. EvaluateCode looks for generic structure (functions,
// control flow, returns, comments). The language-feature grader scores the
// code against a table of idioms for the declared language. Neither runs
// the submitted code.
package evaluation

import (
	"context"
	"strings"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

const (
	defaultMinPassing = 70

	// NeutralScore is returned when the language grader fails internally.
	NeutralScore = 50

	evaluatorBasic    = "basic"
	evaluatorLanguage = "language"
)

const neutralFeedback = "We could not fully analyze this submission. It received a neutral score; please review it and try again."

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMinPassingScore sets the pass mark.
func WithMinPassingScore(score int) Option {
	return func(e *Evaluator) {
		if score >= 0 && score <= maxPoints {
			e.minPassing = score
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.log = l
		}
	}
}

// Evaluator grades submissions. It is safe for concurrent use.
type Evaluator struct {
	minPassing int
	log        logger.Logger
	// grade is swapped in tests to exercise the fallback path.
	grade func(code string, t *featureTable) featureReport
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		minPassing: defaultMinPassing,
		log:        logger.Nop(),
		grade:      scoreFeatures,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MinPassingScore returns the pass mark.
func (e *Evaluator) MinPassingScore() int { return e.minPassing }

// Passed reports whether score reaches the pass mark.
func (e *Evaluator) Passed(score int) bool { return score >= e.minPassing }

// Evaluate grades a submission. The language grader is used when a language
// is given; otherwise the structural grader. Blank code is ErrEmptySubmission.
func (e *Evaluator) Evaluate(ctx context.Context, sub model.CodeSubmission) (model.EvaluationResult, error) {
	if strings.TrimSpace(sub.Code) == "" {
		return model.EvaluationResult{}, ErrEmptySubmission
	}
	var res model.EvaluationResult
	if strings.TrimSpace(sub.Language) != "" {
		res = e.EvaluateWithLanguage(ctx, sub.Code, sub.Language)
	} else {
		res = e.EvaluateBasic(sub.Code)
	}

	label := res.Details.Evaluator
	if res.Details.Language != "" {
		label += ":" + res.Details.Language
	}
	metrics.RecordEvaluation(label, res.Score)
	return res, nil
}

// EvaluateBasic runs the structural grader and wraps its score.
func (e *Evaluator) EvaluateBasic(code string) model.EvaluationResult {
	score := EvaluateCode(code)
	return model.EvaluationResult{
		Score:    score,
		Passed:   e.Passed(score),
		Feedback: GenerateFeedback(score),
		Details:  model.EvaluationDetails{Evaluator: evaluatorBasic},
	}
}

// EvaluateWithLanguage grades code against the idiom table of language.
// Unknown languages fall back to the structural grader. Any failure inside
// the grader yields a neutral, non-passing result instead of an error.
func (e *Evaluator) EvaluateWithLanguage(ctx context.Context, code, language string) (res model.EvaluationResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(ctx, "language evaluator failed, using neutral result",
				logger.String("language", language),
				logger.Any("panic", r))
			metrics.RecordEvaluationFallback()
			res = neutralResult(language)
		}
	}()

	t, err := lookupTable(language)
	if err != nil {
		e.log.Debug(ctx, "no feature table, using structural grader", logger.String("language", language))
		res = e.EvaluateBasic(code)
		res.Details.Language = strings.ToLower(strings.TrimSpace(language))
		return res
	}

	trimmed := strings.TrimSpace(code)
	if len(trimmed) < minCodeLength {
		return model.EvaluationResult{
			Score:    0,
			Passed:   e.Passed(0),
			Feedback: GenerateFeedback(0),
			Details:  model.EvaluationDetails{Evaluator: evaluatorLanguage, Language: t.name},
		}
	}

	report := e.grade(trimmed, t)
	if report.breakdown == nil {
		e.log.Error(ctx, "language evaluator produced no breakdown, using neutral result",
			logger.String("language", t.name))
		metrics.RecordEvaluationFallback()
		return neutralResult(language)
	}
	score := report.total()
	return model.EvaluationResult{
		Score:    score,
		Passed:   e.Passed(score),
		Feedback: FeatureFeedback(score, report.missing, report.found),
		Details:  report.toDetails(t.name),
	}
}

func neutralResult(language string) model.EvaluationResult {
	return model.EvaluationResult{
		Score:    NeutralScore,
		Passed:   false,
		Feedback: neutralFeedback,
		Details: model.EvaluationDetails{
			Evaluator: evaluatorLanguage,
			Language:  strings.ToLower(strings.TrimSpace(language)),
			Fallback:  true,
		},
	}
}
