package config_test

import (
	"errors"
	"testing"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have the documented defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.RecommendationThreshold, convey.ShouldEqual, 60)
			convey.So(cfg.MinPassingScore, convey.ShouldEqual, 70)
			convey.So(cfg.TopicWeight, convey.ShouldEqual, 0.30)
			convey.So(cfg.LanguageWeight, convey.ShouldEqual, 0.35)
			convey.So(cfg.DifficultyWeight, convey.ShouldEqual, 0.20)
			convey.So(cfg.PrimaryBoost, convey.ShouldEqual, 1.5)
			convey.So(cfg.DiversityLambda, convey.ShouldEqual, 0.25)
			convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheMemory)
			convey.So(cfg.QueueBypassPaths, convey.ShouldResemble, []string{"/health", "/healthz", "/metrics"})
			convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.DBMaxConns, convey.ShouldEqual, 10)
			convey.So(cfg.SeedFile, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs that break one rule each", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"negative weight", func(c *config.Config) { c.TopicWeight = -0.1 }},
			{"weights above one", func(c *config.Config) { c.LanguageWeight = 0.6 }},
			{"threshold above 100", func(c *config.Config) { c.RecommendationThreshold = 101 }},
			{"passing score below 0", func(c *config.Config) { c.MinPassingScore = -1 }},
			{"lambda above 1", func(c *config.Config) { c.DiversityLambda = 1.5 }},
			{"boost below 1", func(c *config.Config) { c.PrimaryBoost = 0.5 }},
			{"penalty above 100", func(c *config.Config) { c.DifficultyPenalty = 120 }},
			{"zero concurrency", func(c *config.Config) { c.MaxConcurrent = 0 }},
			{"unknown cache", func(c *config.Config) { c.CacheBackend = "memcached" }},
			{"redis without addr", func(c *config.Config) { c.CacheBackend = config.CacheRedis }},
			{"default above max", func(c *config.Config) { c.DefaultLimit = 60 }},
			{"database without pool", func(c *config.Config) { c.DatabaseURL = "postgres://x"; c.DBMaxConns = 0 }},
			{"negative dedupe size", func(c *config.Config) { c.PersistDedupeSize = -1 }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+tc.name+" is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("When weights sum exactly to one", func() {
			cfg := config.New()
			cfg.TopicWeight, cfg.LanguageWeight, cfg.DifficultyWeight = 0.3, 0.5, 0.2

			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When redis has an address", func() {
			cfg := config.New()
			cfg.CacheBackend = config.CacheRedis
			cfg.RedisAddr = "localhost:6379"

			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
