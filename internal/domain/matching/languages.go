package matching

import (
	"math"
	"strings"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/level"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

// Language match statuses.
const (
	StatusMeets = "meets"
	StatusBelow = model.GapBelow
)

// LanguageMatch is a required language the user knows.
type LanguageMatch struct {
	Name         string
	Proficiency  float64
	Required     float64
	Status       string
	IsPrimary    bool
	Contribution float64
}

// LanguageResult is the language proficiency sub-score.
// Below-requirement languages appear in both Matches and Gaps.
type LanguageResult struct {
	Score    float64
	Matches  []LanguageMatch
	Gaps     []LanguageGap
	Coverage float64
}

// LanguageGap is a required language the user lacks or is below on.
type LanguageGap struct {
	model.Gap
	Proficiency float64
	Required    float64
}

// LanguageProficiency scores the user's languages against the project's
// requirements. Each requirement contributes min(prof/req, 1) * 100 * weight.
func (s *Scorer) LanguageProficiency(user []model.UserLanguage, project []model.ProjectLanguage) LanguageResult {
	res := LanguageResult{Matches: []LanguageMatch{}, Gaps: []LanguageGap{}}

	index := make(map[string]model.UserLanguage, len(user))
	for _, l := range user {
		k := s.key(l.LanguageName)
		if _, dup := index[k]; !dup {
			index[k] = l
		}
	}

	var sum, total, covered float64
	for _, req := range project {
		if strings.TrimSpace(req.LanguageName) == "" {
			continue
		}
		w := s.weightOf(req.IsPrimary)
		total += w
		required := level.NormalizeRequired(req.RequiredLevel)

		ul, ok := index[s.key(req.LanguageName)]
		if !ok {
			res.Gaps = append(res.Gaps, LanguageGap{
				Gap: model.Gap{
					Kind:      "language",
					Name:      req.LanguageName,
					Status:    model.GapMissing,
					IsPrimary: req.IsPrimary,
				},
				Required: required,
			})
			continue
		}

		prof := level.Normalize(ul.ProficiencyLevel)
		ratio := 1.0
		status := StatusMeets
		if required > 0 && prof < required {
			ratio = math.Min(prof/required, 1.0)
			status = StatusBelow
		}
		c := ratio * maxScore * w
		sum += c
		covered += w

		res.Matches = append(res.Matches, LanguageMatch{
			Name:         req.LanguageName,
			Proficiency:  prof,
			Required:     required,
			Status:       status,
			IsPrimary:    req.IsPrimary,
			Contribution: c,
		})
		if status == StatusBelow {
			res.Gaps = append(res.Gaps, LanguageGap{
				Gap: model.Gap{
					Kind:      "language",
					Name:      req.LanguageName,
					Status:    model.GapBelow,
					IsPrimary: req.IsPrimary,
				},
				Proficiency: prof,
				Required:    required,
			})
		}
	}

	if total == 0 {
		res.Score = NeutralScore
		res.Matches = []LanguageMatch{}
		res.Gaps = []LanguageGap{}
		return res
	}
	res.Score, res.Coverage = blend(sum, total, covered)
	return res
}
