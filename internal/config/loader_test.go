package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MaxConcurrent, convey.ShouldEqual, 10)
				convey.So(cfg.MaxQueueLength, convey.ShouldEqual, 1000)
				convey.So(cfg.RequestTimeout().Seconds(), convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TECHSYNC_ADDR", ":8080")
			_ = os.Setenv("TECHSYNC_RECOMMENDATION_THRESHOLD", "45")
			_ = os.Setenv("TECHSYNC_DIVERSITY_LAMBDA", "0.4")
			_ = os.Setenv("TECHSYNC_CASE_INSENSITIVE_NAMES", "true")
			_ = os.Setenv("TECHSYNC_QUEUE_BYPASS_PATHS", "/health,/ready")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RecommendationThreshold, convey.ShouldEqual, 45)
				convey.So(cfg.DiversityLambda, convey.ShouldEqual, 0.4)
				convey.So(cfg.CaseInsensitiveNames, convey.ShouldBeTrue)
				convey.So(cfg.QueueBypassPaths, convey.ShouldResemble, []string{"/health", "/ready"})
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
min_passing_score: 80
topic_weight: 0.25
cache_backend: none
queue_bypass_paths:
  - /healthz
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("TECHSYNC_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MinPassingScore, convey.ShouldEqual, 80)
				convey.So(cfg.TopicWeight, convey.ShouldEqual, 0.25)
				convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheNone)
				convey.So(cfg.QueueBypassPaths, convey.ShouldResemble, []string{"/healthz"})
			})

			convey.Convey("And env vars override file values", func() {
				_ = os.Setenv("TECHSYNC_ADDR", ":7070")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MinPassingScore, convey.ShouldEqual, 80)
			})
		})

		convey.Convey("When list settings are given as comma-separated env vars", func() {
			_ = os.Setenv("TECHSYNC_QUEUE_BYPASS_PATHS", "/health, /healthz,,")
			_ = os.Setenv("TECHSYNC_CORS_ORIGINS", "https://a.example,https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then each item becomes its own entry", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.QueueBypassPaths, convey.ShouldResemble, []string{"/health", "/healthz"})
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("TECHSYNC_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an env var is not a number", func() {
			_ = os.Setenv("TECHSYNC_MAX_CONCURRENT", "many")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail to decode", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the loaded values are out of range", func() {
			_ = os.Setenv("TECHSYNC_LANGUAGE_WEIGHT", "0.9")

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects them", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"TECHSYNC_CONFIG",
		"TECHSYNC_ADDR",
		"TECHSYNC_RECOMMENDATION_THRESHOLD",
		"TECHSYNC_DIVERSITY_LAMBDA",
		"TECHSYNC_CASE_INSENSITIVE_NAMES",
		"TECHSYNC_QUEUE_BYPASS_PATHS",
		"TECHSYNC_CORS_ORIGINS",
		"TECHSYNC_MAX_CONCURRENT",
		"TECHSYNC_LANGUAGE_WEIGHT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "techsync-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
