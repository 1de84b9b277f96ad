package matching_test

import (
	"math"
	"testing"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/level"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/matching"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func years(v float64) *float64 { return &v }

func TestTopicCoverage(t *testing.T) {
	Convey("Given a default scorer", t, func() {
		s := matching.NewScorer()

		Convey("When the project declares no topics", func() {
			res := s.TopicCoverage([]model.UserTopic{{TopicName: "Web"}}, nil)

			Convey("Then the score is the neutral midpoint with nothing matched", func() {
				So(res.Score, ShouldEqual, 50)
				So(res.Matches, ShouldBeEmpty)
				So(res.Gaps, ShouldBeEmpty)
				So(res.Coverage, ShouldEqual, 0)
			})
		})

		Convey("When only nameless topics are declared", func() {
			res := s.TopicCoverage(nil, []model.ProjectTopic{{TopicName: "  ", IsPrimary: true}})
			So(res.Score, ShouldEqual, 50)
		})

		Convey("When one primary topic matches and one secondary is missing", func() {
			user := []model.UserTopic{{
				TopicName:       "Web",
				InterestLevel:   level.Of("high"),
				ExperienceLevel: level.Frac(0.5),
			}}
			project := []model.ProjectTopic{
				{TopicName: "Web", IsPrimary: true},
				{TopicName: "AI"},
			}
			res := s.TopicCoverage(user, project)

			Convey("Then quality and breadth are blended 85/15", func() {
				So(res.Coverage, ShouldAlmostEqual, 0.6, 1e-9)
				So(res.Score, ShouldAlmostEqual, 47.25, 1e-9)
				So(len(res.Matches), ShouldEqual, 1)
				So(res.Matches[0].IsPrimary, ShouldBeTrue)
				So(res.Matches[0].Contribution, ShouldAlmostEqual, 112.5, 1e-9)
				So(len(res.Gaps), ShouldEqual, 1)
				So(res.Gaps[0].Name, ShouldEqual, "AI")
				So(res.Gaps[0].Status, ShouldEqual, model.GapMissing)
			})
		})

		Convey("When names differ only in case", func() {
			user := []model.UserTopic{{TopicName: "web", InterestLevel: level.Of("expert"), ExperienceLevel: level.Of("expert")}}
			project := []model.ProjectTopic{{TopicName: "Web"}}

			Convey("Then exact matching treats them as different", func() {
				So(s.TopicCoverage(user, project).Gaps, ShouldHaveLength, 1)
			})

			Convey("And case folding joins them", func() {
				folded := matching.NewScorer(matching.WithCaseInsensitiveNames(true))
				res := folded.TopicCoverage(user, project)
				So(res.Gaps, ShouldBeEmpty)
				So(res.Score, ShouldEqual, 100)
			})
		})
	})
}

func TestLanguageProficiency(t *testing.T) {
	Convey("Given a default scorer", t, func() {
		s := matching.NewScorer()

		Convey("When the project requires no languages", func() {
			res := s.LanguageProficiency([]model.UserLanguage{{LanguageName: "Go"}}, nil)
			So(res.Score, ShouldEqual, 50)
			So(res.Matches, ShouldBeEmpty)
			So(res.Gaps, ShouldBeEmpty)
		})

		Convey("When the user meets a primary requirement", func() {
			res := s.LanguageProficiency(
				[]model.UserLanguage{{LanguageName: "Go", ProficiencyLevel: level.Of("expert")}},
				[]model.ProjectLanguage{{LanguageName: "Go", IsPrimary: true, RequiredLevel: level.Of("intermediate")}},
			)

			Convey("Then surplus proficiency is capped at a full contribution", func() {
				So(res.Score, ShouldEqual, 100)
				So(res.Matches[0].Status, ShouldEqual, matching.StatusMeets)
				So(res.Matches[0].Contribution, ShouldAlmostEqual, 150, 1e-9)
				So(res.Gaps, ShouldBeEmpty)
			})
		})

		Convey("When the user is below a requirement", func() {
			res := s.LanguageProficiency(
				[]model.UserLanguage{{LanguageName: "Python", ProficiencyLevel: level.Of("beginner")}},
				[]model.ProjectLanguage{{LanguageName: "Python", RequiredLevel: level.Of("advanced")}},
			)

			Convey("Then the contribution is the proficiency ratio", func() {
				So(res.Score, ShouldAlmostEqual, 0.85*100.0/3+15, 1e-9)
				So(res.Coverage, ShouldEqual, 1)
				So(res.Matches[0].Status, ShouldEqual, matching.StatusBelow)
				So(res.Gaps, ShouldHaveLength, 1)
				So(res.Gaps[0].Status, ShouldEqual, model.GapBelow)
				So(res.Gaps[0].Required, ShouldEqual, 0.75)
			})
		})

		Convey("When a required language is missing", func() {
			res := s.LanguageProficiency(nil, []model.ProjectLanguage{
				{LanguageName: "Rust", IsPrimary: true},
			})

			Convey("Then it is a gap with zero coverage", func() {
				So(res.Score, ShouldEqual, 0)
				So(res.Coverage, ShouldEqual, 0)
				So(res.Gaps[0].Status, ShouldEqual, model.GapMissing)
				So(res.Gaps[0].Required, ShouldEqual, level.DefaultRequired)
			})
		})

		Convey("When the requirement normalizes to zero", func() {
			res := s.LanguageProficiency(
				[]model.UserLanguage{{LanguageName: "C", ProficiencyLevel: level.Frac(0)}},
				[]model.ProjectLanguage{{LanguageName: "C", RequiredLevel: level.Frac(0)}},
			)
			So(res.Matches[0].Status, ShouldEqual, matching.StatusMeets)
			So(res.Score, ShouldEqual, 100)
		})
	})
}

func TestDifficultyAlignment(t *testing.T) {
	Convey("Given scorers with different penalties", t, func() {
		s := matching.NewScorer()

		Convey("Then meeting or exceeding the bar is never penalized", func() {
			for _, y := range []float64{0, 1, 3, 5, 20} {
				for _, req := range []string{"beginner", "intermediate", "advanced", "expert"} {
					userLevel := level.ToNum(level.YearsToName(y))
					reqLevel := level.ToNum(level.Name(req))
					if userLevel >= reqLevel {
						So(s.DifficultyAlignment(years(y), level.Of(req)), ShouldEqual, 100)
					}
				}
			}
		})

		Convey("Then an expert project for a newcomer costs three penalties", func() {
			So(s.DifficultyAlignment(years(0), level.Of("expert")), ShouldEqual, 100-3*18)

			strict := matching.NewScorer(matching.WithDifficultyPenalty(22))
			So(strict.DifficultyAlignment(years(0), level.Of("expert")), ShouldEqual, 100-3*22)
			So(strict.Penalty(), ShouldEqual, 22)
		})

		Convey("Then the score never goes negative", func() {
			harsh := matching.NewScorer(matching.WithDifficultyPenalty(60))
			So(harsh.DifficultyAlignment(years(0), level.Of("expert")), ShouldEqual, 0)
		})

		Convey("Then unknown seniority is intermediate", func() {
			So(s.DifficultyAlignment(nil, level.Of("intermediate")), ShouldEqual, 100)
			So(s.DifficultyAlignment(nil, level.Of("advanced")), ShouldEqual, 82)
			So(s.DifficultyAlignment(years(2), level.None()), ShouldEqual, 100)
		})
	})
}

func TestAggregate(t *testing.T) {
	Convey("Given a default scorer", t, func() {
		s := matching.NewScorer()

		Convey("When sub-scores misbehave", func() {
			high := matching.Features{
				Topic:      matching.TopicResult{Score: 500},
				Language:   matching.LanguageResult{Score: 900},
				Difficulty: 300,
			}
			low := matching.Features{
				Topic:      matching.TopicResult{Score: -500},
				Language:   matching.LanguageResult{Score: -1},
				Difficulty: -100,
			}
			nan := matching.Features{Topic: matching.TopicResult{Score: math.NaN()}}

			Convey("Then the aggregate stays in [0,100]", func() {
				So(s.Aggregate(high), ShouldEqual, 100)
				So(s.Aggregate(low), ShouldEqual, 0)
				So(s.Aggregate(nan), ShouldEqual, 0)
			})
		})

		Convey("When raising the threshold", func() {
			scores := []int{10, 45, 60, 61, 75, 90, 100}
			count := func(th int) int {
				sc := matching.NewScorer(matching.WithThreshold(th))
				n := 0
				for _, v := range scores {
					if sc.Recommendable(v) {
						n++
					}
				}
				return n
			}

			Convey("Then the recommendable set never grows", func() {
				prev := count(0)
				for th := 1; th <= 100; th++ {
					n := count(th)
					So(n, ShouldBeLessThanOrEqualTo, prev)
					prev = n
				}
			})
		})
	})
}

func TestEndToEndScenarios(t *testing.T) {
	Convey("Given a two-year developer with intermediate Go", t, func() {
		s := matching.NewScorer()
		user := &model.UserProfile{
			ID:              "u1",
			YearsExperience: years(2),
			Languages:       []model.UserLanguage{{LanguageName: "Go", ProficiencyLevel: level.Of("intermediate")}},
		}

		Convey("When the project needs intermediate Go and declares no topics", func() {
			project := &model.ProjectCandidate{
				ID:                      "p1",
				RequiredExperienceLevel: level.Of("intermediate"),
				Languages: []model.ProjectLanguage{
					{LanguageName: "Go", IsPrimary: true, RequiredLevel: level.Of("intermediate")},
				},
			}
			f := s.Features(user, project)
			score := s.Aggregate(f)

			Convey("Then the language requirement is fully met and the project passes", func() {
				So(f.Language.Matches[0].Status, ShouldEqual, matching.StatusMeets)
				So(f.Language.Score, ShouldEqual, 100)
				So(f.Difficulty, ShouldEqual, 100)
				So(f.Topic.Score, ShouldEqual, 50)
				So(score, ShouldEqual, 70)
				So(s.Recommendable(score), ShouldBeTrue)
			})
		})
	})
}
