package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/lingua/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":3001")
				convey.So(cfg.ShardCount, convey.ShouldEqual, 16)
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 2*time.Hour)
				convey.So(cfg.IDScheme, convey.ShouldEqual, "uuid")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LINGUA_ADDR", ":8080")
			_ = os.Setenv("LINGUA_SHARD_COUNT", "4")
			_ = os.Setenv("LINGUA_SESSION_TTL", "30m")
			_ = os.Setenv("LINGUA_SWEEP_SCHEDULE", "@every 10s")
			_ = os.Setenv("LINGUA_ID_SCHEME", "nanoid")
			_ = os.Setenv("LINGUA_LOG_FORMAT", "json")
			_ = os.Setenv("LINGUA_ALLOWED_ORIGIN", "https://app.example.com")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ShardCount, convey.ShouldEqual, 4)
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.SweepSchedule, convey.ShouldEqual, "@every 10s")
				convey.So(cfg.IDScheme, convey.ShouldEqual, "nanoid")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.AllowedOrigin, convey.ShouldEqual, "https://app.example.com")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# local overrides
addr: ":9090"
shard_count: 32
session_ttl: 45m
replay_cache_size: 1000
max_body_bytes: 4096
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LINGUA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ShardCount, convey.ShouldEqual, 32)
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 45*time.Minute)
				convey.So(cfg.ReplayCacheSize, convey.ShouldEqual, 1000)
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 4096)
				convey.So(cfg.SweepSchedule, convey.ShouldEqual, "@every 1m")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
shard_count: 32
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LINGUA_CONFIG", tmpFile)
			_ = os.Setenv("LINGUA_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")  // Overridden by env
				convey.So(cfg.ShardCount, convey.ShouldEqual, 32) // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LINGUA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("LINGUA_CONFIG", "/nonexistent/lingua.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("LINGUA_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("LINGUA_SHARD_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When expiry is disabled through the environment", func() {
			_ = os.Setenv("LINGUA_SESSION_TTL", "0s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the zero TTL should be accepted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SessionTTL, convey.ShouldEqual, time.Duration(0))
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"LINGUA_CONFIG",
		"LINGUA_ADDR",
		"LINGUA_SHARD_COUNT",
		"LINGUA_SESSION_TTL",
		"LINGUA_SWEEP_SCHEDULE",
		"LINGUA_ID_SCHEME",
		"LINGUA_LOG_FORMAT",
		"LINGUA_ALLOWED_ORIGIN",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "lingua-config-*.yaml")
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
