package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/http/api"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/mq/admission"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/repository"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/challenge"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/evaluation"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/level"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/recommend"
)

const jsSolution = `// adds up even numbers
function sumEvens(numbers) {
  let total = 0;
  for (const n of numbers) {
    if (n % 2 === 0) {
      total += n;
    }
  }
  console.log(total);
  return total;
}`

type stubStats struct{}

func (stubStats) GetStats() map[string]any { return map[string]any{"service": "techsync"} }

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

type brokenRecommender struct{}

func (brokenRecommender) Recommend(context.Context, recommend.Request) ([]model.Recommendation, error) {
	return nil, errors.New("boom")
}

func (brokenRecommender) Match(context.Context, string, string) (*recommend.MatchResult, error) {
	return nil, admission.ErrRejected
}

func (brokenRecommender) InvalidatePool(context.Context) error { return nil }

func years(v float64) *float64 { return &v }

func seededStore() *repository.MemoryStore {
	store := repository.NewMemoryStore()
	store.PutUser(&model.UserProfile{
		ID:              "u1",
		YearsExperience: years(2),
		Languages:       []model.UserLanguage{{LanguageName: "Go", ProficiencyLevel: level.Of("intermediate")}},
	})
	for _, id := range []string{"p1", "p2"} {
		store.PutProject(&model.ProjectCandidate{
			ID:                      id,
			OwnerID:                 "owner",
			Status:                  model.StatusRecruiting,
			RequiredExperienceLevel: level.Of("intermediate"),
			Languages:               []model.ProjectLanguage{{LanguageName: "Go", IsPrimary: true, RequiredLevel: level.Of("intermediate")}},
		})
	}
	return store
}

func newServer(store *repository.MemoryStore, opts ...api.Option) http.Handler {
	eval := evaluation.New()
	return api.NewServer(api.Dependencies{
		Recommender: recommend.New(store, store, nil),
		Evaluator:   eval,
		Attempts:    challenge.New(eval, store),
		Health:      store,
		Stats:       stubStats{},
	}, opts...).Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestRecommendationsEndpoint(t *testing.T) {
	Convey("Given an API over a seeded store", t, func() {
		store := seededStore()
		h := newServer(store)

		Convey("When a known user asks for recommendations", func() {
			w := do(h, http.MethodGet, "/api/v1/users/u1/recommendations?limit=1&diversify=false", "")

			Convey("Then the list is returned with its count", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					UserID          string                 `json:"userId"`
					Count           int                    `json:"count"`
					Recommendations []model.Recommendation `json:"recommendations"`
				}
				decode(w, &body)
				So(body.UserID, ShouldEqual, "u1")
				So(body.Count, ShouldEqual, 1)
				So(body.Recommendations[0].ProjectID, ShouldEqual, "p1")
				So(body.Recommendations[0].Score, ShouldEqual, 70)
			})
		})

		Convey("When the user is unknown", func() {
			w := do(h, http.MethodGet, "/api/v1/users/ghost/recommendations", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			var body errorBody
			decode(w, &body)
			So(body.Code, ShouldEqual, "not_found")
		})

		Convey("When query parameters are malformed", func() {
			for _, q := range []string{"limit=abc", "limit=-1", "diversify=maybe"} {
				w := do(h, http.MethodGet, "/api/v1/users/u1/recommendations?"+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the recommender fails unexpectedly", func() {
			broken := api.NewServer(api.Dependencies{Recommender: brokenRecommender{}}).Handler()
			w := do(broken, http.MethodGet, "/api/v1/users/u1/recommendations", "")

			Convey("Then the cause is hidden behind a 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				var body errorBody
				decode(w, &body)
				So(body.Code, ShouldEqual, "internal_error")
				So(body.Message, ShouldNotContainSubstring, "boom")
			})

			Convey("Then an admission rejection maps to busy", func() {
				w := do(broken, http.MethodGet, "/api/v1/projects/p1/match?userId=u1", "")
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Header().Get("Retry-After"), ShouldEqual, "1")
			})
		})
	})
}

func TestMatchAndCacheEndpoints(t *testing.T) {
	Convey("Given an API over a seeded store", t, func() {
		h := newServer(seededStore())

		Convey("Then a pair is explained", func() {
			w := do(h, http.MethodGet, "/api/v1/projects/p2/match?userId=u1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var res recommend.MatchResult
			decode(w, &res)
			So(res.ProjectID, ShouldEqual, "p2")
			So(res.Recommendable, ShouldBeTrue)
		})

		Convey("Then missing ids are rejected and unknown ones are 404", func() {
			So(do(h, http.MethodGet, "/api/v1/projects/p2/match", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/api/v1/projects/nope/match?userId=u1", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then the cache can be invalidated", func() {
			w := do(h, http.MethodPost, "/api/v1/cache/invalidate", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "invalidated")
		})
	})
}

func TestEvaluationEndpoints(t *testing.T) {
	Convey("Given an API over a seeded store", t, func() {
		store := seededStore()
		h := newServer(store)

		Convey("When code is posted with a language", func() {
			body, _ := json.Marshal(map[string]string{"code": jsSolution, "language": "javascript"})
			w := do(h, http.MethodPost, "/api/v1/evaluations", string(body))

			Convey("Then the language grader result is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var res model.EvaluationResult
				decode(w, &res)
				So(res.Details.Evaluator, ShouldEqual, "language")
				So(res.Details.Language, ShouldEqual, "javascript")
				So(res.Feedback, ShouldNotBeEmpty)
			})
		})

		Convey("When the body is invalid", func() {
			So(do(h, http.MethodPost, "/api/v1/evaluations", `{"language":"go"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPost, "/api/v1/evaluations", `{not json`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPost, "/api/v1/evaluations", `{"code":"   "}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a challenge attempt is posted", func() {
			body, _ := json.Marshal(map[string]string{"userId": "u1", "code": jsSolution})
			w := do(h, http.MethodPost, "/api/v1/challenges/c9/attempts", string(body))

			Convey("Then it is recorded and can join", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var out challenge.Outcome
				decode(w, &out)
				So(out.CanJoin, ShouldBeTrue)
				So(out.Attempt.ChallengeID, ShouldEqual, "c9")
				So(store.Attempts("u1"), ShouldHaveLength, 1)
			})
		})

		Convey("When the attempt has no user", func() {
			w := do(h, http.MethodPost, "/api/v1/challenges/c9/attempts", `{"code":"x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body errorBody
			decode(w, &body)
			So(body.Message, ShouldContainSubstring, "UserID")
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given an API", t, func() {
		h := newServer(seededStore())

		Convey("Then health reports the store", func() {
			w := do(h, http.MethodGet, "/health", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then a failing store degrades health", func() {
			down := api.NewServer(api.Dependencies{Health: downStore{}}).Handler()
			So(do(down, http.MethodGet, "/health", "").Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("Then metrics and stats are served", func() {
			So(do(h, http.MethodGet, "/metrics", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "techsync")
		})

		Convey("Then the docs are mounted", func() {
			So(do(h, http.MethodGet, "/openapi.yaml", "").Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestAdmissionAndRateLimit(t *testing.T) {
	Convey("Given an API with full admission queues", t, func() {
		m := admission.NewManager(api.Queues, admission.WithMaxConcurrent(1), admission.WithMaxLength(1),
			admission.WithRejectHandler(api.RejectBusy))
		gate := make(chan struct{})
		q, _ := m.Queue(api.QueueRecommendations)
		So(q.Enqueue(func() { <-gate }, admission.Critical), ShouldBeNil)
		So(q.Enqueue(func() {}, admission.Critical), ShouldBeNil)

		h := newServer(seededStore(), api.WithAdmission(m))

		Convey("Then recommendation requests are turned away as busy", func() {
			w := do(h, http.MethodGet, "/api/v1/users/u1/recommendations", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Header().Get("Retry-After"), ShouldEqual, "1")
			var body errorBody
			decode(w, &body)
			So(body.Code, ShouldEqual, "service_busy")
		})

		Convey("Then other queues still serve", func() {
			So(do(h, http.MethodGet, "/api/v1/projects/p1/match?userId=u1", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then health bypasses admission", func() {
			So(do(h, http.MethodGet, "/health", "").Code, ShouldEqual, http.StatusOK)
		})

		Reset(func() { close(gate) })
	})

	Convey("Given an API limited to two requests a minute", t, func() {
		h := newServer(seededStore(), api.WithRateLimit(2))
		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			codes = append(codes, do(h, http.MethodGet, "/api/v1/projects/p1/match?userId=u1", "").Code)
		}
		So(codes, ShouldResemble, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests})
	})
}

func TestErrorHelpers(t *testing.T) {
	Convey("Operation errors keep kind and cause matchable", t, func() {
		cause := errors.New("disk")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.op: bad request: disk")

		So(api.Wrap("api.op", nil), ShouldBeNil)
		So(api.NewKind("api.op", api.ErrBusy).Error(), ShouldEqual, "api.op: service busy")
	})
}
