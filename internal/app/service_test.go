package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	service "github.com/Souleilune/TechSyncDevVersion-sub000/internal/app"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/config"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/recommend"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const seedDoc = `{
  "users": [
    {"id": "u1", "yearsExperience": 2,
     "languages": [{"languageName": "Go", "proficiencyLevel": "intermediate"}]}
  ],
  "projects": [
    {"id": "p1", "title": "Go service", "status": "recruiting", "ownerId": "owner",
     "requiredExperienceLevel": "intermediate",
     "projectLanguages": [{"languageName": "Go", "isPrimary": true, "requiredLevel": "intermediate"}]},
    {"id": "p2", "title": "Closed", "status": "completed", "ownerId": "owner",
     "projectLanguages": [{"languageName": "Go", "isPrimary": true}]}
  ]
}`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seedDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not started and exposes no dependencies", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Admission(), ShouldBeNil)
			_, err := svc.Dependencies()
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service over an empty memory store", t, func() {
		cfg := config.New()
		cfg.CacheBackend = config.CacheNone
		svc := service.New(service.WithConfig(cfg), service.WithLogger(logger.Nop()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Then starting twice is a no-op", func() {
			So(svc.Start(ctx), ShouldBeNil)
		})

		Convey("Then stats describe every component", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats, ShouldContainKey, "uptimeSeconds")
			So(stats, ShouldContainKey, "cache")
			So(stats, ShouldContainKey, "admission")

			store := stats["store"].(map[string]any)
			So(store["backend"], ShouldEqual, "memory")
			So(store["breaker"], ShouldEqual, "closed")
			So(store["seeded"], ShouldEqual, false)

			persist := stats["persistence"].(map[string]any)
			So(persist["workers"], ShouldEqual, cfg.PersistWorkerCount)
			So(persist["capacity"], ShouldEqual, cfg.PersistQueueSize)
		})

		Convey("Then dependencies are wired", func() {
			deps, err := svc.Dependencies()
			So(err, ShouldBeNil)
			So(deps.Recommender, ShouldNotBeNil)
			So(deps.Evaluator, ShouldNotBeNil)
			So(deps.Attempts, ShouldNotBeNil)
			So(deps.Health.Ping(ctx), ShouldBeNil)
			So(svc.Admission(), ShouldNotBeNil)
		})

		Convey("When it is stopped", func() {
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it reports stopped and stopping again is harmless", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_SeedFile(t *testing.T) {
	Convey("Given a config pointing at a seed file", t, func() {
		cfg := config.New()
		cfg.SeedFile = writeSeed(t)
		svc := service.New(service.WithConfig(cfg), service.WithLogger(logger.Nop()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Then the seeded user gets the recruiting project only", func() {
			So(svc.GetStats()["store"].(map[string]any)["seeded"], ShouldEqual, true)

			recs, err := svc.Recommender().Recommend(ctx, recommend.Request{UserID: "u1"})
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
			So(recs[0].ProjectID, ShouldEqual, "p1")
		})
	})

	Convey("Given a seed file that does not exist", t, func() {
		cfg := config.New()
		cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")
		svc := service.New(service.WithConfig(cfg), service.WithLogger(logger.Nop()))

		Convey("Then start fails", func() {
			err := svc.Start(context.Background())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "seed")
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}
