// Package explain turns match sub-scores into strengths and improvement
// suggestions shown next to a recommendation.
package explain

import (
	"fmt"
	"math"
	"sort"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/level"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/matching"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

const (
	maxHighlights  = 3
	maxSuggestions = 3
	levelSteps     = 5
	minTargetSteps = 2
)

const fallbackStrength = "Balanced fit for your current experience level"

// Build derives MatchFactors from computed features. It does no scoring.
func Build(f matching.Features) model.MatchFactors {
	langs := TopLanguages(f.Language.Matches)
	topics := TopTopics(f.Topic.Matches)
	gaps := TopGaps(f)

	mf := model.MatchFactors{
		TopicScore:       f.Topic.Score,
		LanguageScore:    f.Language.Score,
		DifficultyScore:  f.Difficulty,
		TopicCoverage:    f.Topic.Coverage,
		LanguageCoverage: f.Language.Coverage,
		Strengths:        Strengths(langs, topics),
		Suggestions:      make([]string, 0, len(gaps)),
		TopLanguages:     langs,
		TopTopics:        topics,
		Gaps:             make([]model.Gap, 0, len(gaps)),
	}
	for _, g := range gaps {
		mf.Suggestions = append(mf.Suggestions, Suggestion(g))
		mf.Gaps = append(mf.Gaps, g.Gap)
	}
	return mf
}

// TopLanguages picks up to three requirements the user meets, primary
// first, then by proficiency.
func TopLanguages(matches []matching.LanguageMatch) []model.LanguageHighlight {
	met := make([]matching.LanguageMatch, 0, len(matches))
	for _, m := range matches {
		if m.Status == matching.StatusMeets {
			met = append(met, m)
		}
	}
	sort.SliceStable(met, func(i, j int) bool {
		if met[i].IsPrimary != met[j].IsPrimary {
			return met[i].IsPrimary
		}
		return met[i].Proficiency > met[j].Proficiency
	})

	out := make([]model.LanguageHighlight, 0, maxHighlights)
	for _, m := range met {
		if len(out) == maxHighlights {
			break
		}
		out = append(out, model.LanguageHighlight{
			Language:    m.Name,
			Proficiency: m.Proficiency,
			Required:    m.Required,
			IsPrimary:   m.IsPrimary,
		})
	}
	return out
}

// TopTopics picks up to three shared topics, primary first, then by
// experience.
func TopTopics(matches []matching.TopicMatch) []model.TopicHighlight {
	all := make([]model.TopicHighlight, 0, len(matches))
	for _, m := range matches {
		all = append(all, model.TopicHighlight{
			Topic:      m.Name,
			Interest:   level.Normalize(m.Interest),
			Experience: level.Normalize(m.Experience),
			IsPrimary:  m.IsPrimary,
		})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].IsPrimary != all[j].IsPrimary {
			return all[i].IsPrimary
		}
		return all[i].Experience > all[j].Experience
	})
	if len(all) > maxHighlights {
		all = all[:maxHighlights]
	}
	return all
}

// Strengths renders one sentence for the strongest language and one for
// the strongest topic.
func Strengths(langs []model.LanguageHighlight, topics []model.TopicHighlight) []string {
	var out []string
	if len(langs) > 0 {
		l := langs[0]
		if l.IsPrimary {
			out = append(out, fmt.Sprintf("Strong match in %s, a primary language for this project", l.Language))
		} else {
			out = append(out, fmt.Sprintf("Your %s skills meet the project's requirements", l.Language))
		}
	}
	if len(topics) > 0 {
		t := topics[0]
		if t.IsPrimary {
			out = append(out, fmt.Sprintf("Shared focus on %s, a core topic of this project", t.Topic))
		} else {
			out = append(out, fmt.Sprintf("Your interest in %s aligns with the project", t.Topic))
		}
	}
	if len(out) == 0 {
		out = append(out, fallbackStrength)
	}
	return out
}

// TopGaps picks up to three language and topic gaps, primary first.
func TopGaps(f matching.Features) []matching.LanguageGap {
	all := make([]matching.LanguageGap, 0, len(f.Language.Gaps)+len(f.Topic.Gaps))
	all = append(all, f.Language.Gaps...)
	for _, g := range f.Topic.Gaps {
		all = append(all, matching.LanguageGap{Gap: g})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].IsPrimary && !all[j].IsPrimary
	})
	if len(all) > maxSuggestions {
		all = all[:maxSuggestions]
	}
	return all
}

// Suggestion renders one improvement hint for a gap.
func Suggestion(g matching.LanguageGap) string {
	if g.Kind == "topic" {
		return fmt.Sprintf("Explore topic %s", g.Name)
	}
	if g.Status == model.GapBelow {
		steps := ceil(g.Required*levelSteps - g.Proficiency*levelSteps)
		if steps < 1 {
			steps = 1
		}
		return fmt.Sprintf("Level up %s by ~%d %s", g.Name, steps, plural(steps, "step", "steps"))
	}
	target := ceil(g.Required * levelSteps)
	if target < minTargetSteps {
		target = minTargetSteps
	}
	return fmt.Sprintf("Add basics of %s (target ~%d/%d)", g.Name, target, levelSteps)
}

// ceil ignores float noise below 1e-9.
func ceil(v float64) int {
	return int(math.Ceil(v - 1e-9))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
