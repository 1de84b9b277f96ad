package matching

import (
	"strings"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/level"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

// TopicMatch is a project topic the user has.
type TopicMatch struct {
	Name         string
	Interest     level.Level
	Experience   level.Level
	IsPrimary    bool
	Contribution float64
}

// TopicResult is the topic coverage sub-score.
type TopicResult struct {
	Score    float64
	Matches  []TopicMatch
	Gaps     []model.Gap
	Coverage float64
}

// TopicCoverage scores the user's topics against the project's topics.
// A project without topics yields NeutralScore and no matches or gaps.
func (s *Scorer) TopicCoverage(user []model.UserTopic, project []model.ProjectTopic) TopicResult {
	res := TopicResult{Matches: []TopicMatch{}, Gaps: []model.Gap{}}

	index := make(map[string]model.UserTopic, len(user))
	for _, t := range user {
		k := s.key(t.TopicName)
		if _, dup := index[k]; !dup {
			index[k] = t
		}
	}

	var sum, total, covered float64
	for _, req := range project {
		if strings.TrimSpace(req.TopicName) == "" {
			continue
		}
		w := s.weightOf(req.IsPrimary)
		total += w

		ut, ok := index[s.key(req.TopicName)]
		if !ok {
			res.Gaps = append(res.Gaps, model.Gap{
				Kind:      "topic",
				Name:      req.TopicName,
				Status:    model.GapMissing,
				IsPrimary: req.IsPrimary,
			})
			continue
		}
		c := (level.Normalize(ut.InterestLevel) + level.Normalize(ut.ExperienceLevel)) / 2 * maxScore * w
		sum += c
		covered += w
		res.Matches = append(res.Matches, TopicMatch{
			Name:         req.TopicName,
			Interest:     ut.InterestLevel,
			Experience:   ut.ExperienceLevel,
			IsPrimary:    req.IsPrimary,
			Contribution: c,
		})
	}

	if total == 0 {
		res.Score = NeutralScore
		res.Matches = []TopicMatch{}
		res.Gaps = []model.Gap{}
		return res
	}
	res.Score, res.Coverage = blend(sum, total, covered)
	return res
}
