package explain_test

import (
	"testing"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/explain"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/level"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/matching"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func langGap(name, status string, primary bool, prof, req float64) matching.LanguageGap {
	return matching.LanguageGap{
		Gap:         model.Gap{Kind: "language", Name: name, Status: status, IsPrimary: primary},
		Proficiency: prof,
		Required:    req,
	}
}

func TestSuggestion(t *testing.T) {
	Convey("Given gaps of each kind", t, func() {
		Convey("Missing languages target at least 2/5", func() {
			So(explain.Suggestion(langGap("Rust", model.GapMissing, true, 0, 0.25)), ShouldEqual, "Add basics of Rust (target ~2/5)")
			So(explain.Suggestion(langGap("Rust", model.GapMissing, true, 0, 0.75)), ShouldEqual, "Add basics of Rust (target ~4/5)")
			So(explain.Suggestion(langGap("Rust", model.GapMissing, true, 0, 1.0)), ShouldEqual, "Add basics of Rust (target ~5/5)")
		})

		Convey("Below-requirement languages level up at least one step", func() {
			So(explain.Suggestion(langGap("Go", model.GapBelow, false, 0.25, 0.75)), ShouldEqual, "Level up Go by ~3 steps")
			So(explain.Suggestion(langGap("Go", model.GapBelow, false, 0.5, 0.75)), ShouldEqual, "Level up Go by ~2 steps")
			So(explain.Suggestion(langGap("Go", model.GapBelow, false, 0.7, 0.75)), ShouldEqual, "Level up Go by ~1 step")
		})

		Convey("Topic gaps suggest exploring", func() {
			g := matching.LanguageGap{Gap: model.Gap{Kind: "topic", Name: "AI", Status: model.GapMissing}}
			So(explain.Suggestion(g), ShouldEqual, "Explore topic AI")
		})
	})
}

func TestTopLanguages(t *testing.T) {
	Convey("Given language matches", t, func() {
		matches := []matching.LanguageMatch{
			{Name: "Python", Proficiency: 1.0, Status: matching.StatusMeets},
			{Name: "Go", Proficiency: 0.5, Status: matching.StatusMeets, IsPrimary: true},
			{Name: "C", Proficiency: 0.25, Status: matching.StatusBelow, IsPrimary: true},
			{Name: "Rust", Proficiency: 0.75, Status: matching.StatusMeets},
			{Name: "Java", Proficiency: 0.6, Status: matching.StatusMeets},
		}
		top := explain.TopLanguages(matches)

		Convey("Then only met requirements are kept, primary first then by proficiency", func() {
			So(top, ShouldHaveLength, 3)
			So(top[0].Language, ShouldEqual, "Go")
			So(top[1].Language, ShouldEqual, "Python")
			So(top[2].Language, ShouldEqual, "Rust")
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given features with matches and gaps", t, func() {
		s := matching.NewScorer()
		user := &model.UserProfile{
			Topics: []model.UserTopic{
				{TopicName: "Web", InterestLevel: level.Of("high"), ExperienceLevel: level.Of("advanced")},
				{TopicName: "Games", InterestLevel: level.Of("low"), ExperienceLevel: level.Of("expert")},
			},
			Languages: []model.UserLanguage{
				{LanguageName: "Go", ProficiencyLevel: level.Of("expert")},
				{LanguageName: "SQL", ProficiencyLevel: level.Of("beginner")},
			},
		}
		project := &model.ProjectCandidate{
			Topics: []model.ProjectTopic{
				{TopicName: "Games"},
				{TopicName: "Web", IsPrimary: true},
				{TopicName: "Cloud"},
				{TopicName: "Security", IsPrimary: true},
			},
			Languages: []model.ProjectLanguage{
				{LanguageName: "Go", IsPrimary: true, RequiredLevel: level.Of("advanced")},
				{LanguageName: "SQL", RequiredLevel: level.Of("intermediate")},
				{LanguageName: "Rust", RequiredLevel: level.Of("advanced")},
			},
		}
		mf := explain.Build(s.Features(user, project))

		Convey("Then strengths name the strongest primary language and topic", func() {
			So(mf.Strengths, ShouldHaveLength, 2)
			So(mf.Strengths[0], ShouldContainSubstring, "Go")
			So(mf.Strengths[1], ShouldContainSubstring, "Web")
		})

		Convey("Then topics are ordered primary first", func() {
			So(mf.TopTopics[0].Topic, ShouldEqual, "Web")
			So(mf.TopTopics[1].Topic, ShouldEqual, "Games")
		})

		Convey("Then at most three suggestions are made, primary gaps first", func() {
			So(mf.Suggestions, ShouldHaveLength, 3)
			So(mf.Gaps, ShouldHaveLength, 3)
			So(mf.Suggestions[0], ShouldEqual, "Explore topic Security")
			So(mf.Suggestions[1], ShouldEqual, "Level up SQL by ~2 steps")
			So(mf.Suggestions[2], ShouldEqual, "Add basics of Rust (target ~4/5)")
		})

		Convey("Then sub-scores are carried through", func() {
			So(mf.LanguageScore, ShouldBeGreaterThan, 0)
			So(mf.DifficultyScore, ShouldEqual, 100)
		})
	})

	Convey("Given features with nothing matched", t, func() {
		mf := explain.Build(matching.NewScorer().Features(&model.UserProfile{}, &model.ProjectCandidate{}))

		Convey("Then a fallback strength is given and no suggestions", func() {
			So(mf.Strengths, ShouldHaveLength, 1)
			So(mf.Suggestions, ShouldBeEmpty)
		})
	})
}
