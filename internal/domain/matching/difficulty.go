package matching

import (
	"math"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/level"
)

// DifficultyAlignment compares the user's seniority with the project's
// required experience level. Meeting or exceeding the bar scores 100;
// each missing level costs the configured penalty.
func (s *Scorer) DifficultyAlignment(userYears *float64, required level.Level) float64 {
	userName := level.Intermediate
	if userYears != nil {
		userName = level.YearsToName(*userYears)
	}
	userLevel := level.ToNum(userName)
	reqLevel := level.ToNum(level.NameOf(required))

	if userLevel >= reqLevel {
		return maxScore
	}
	return math.Max(0, maxScore-float64(reqLevel-userLevel)*s.penalty)
}
