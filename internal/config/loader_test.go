package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/crossing/internal/config"
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
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
				convey.So(cfg.StreamInterval, convey.ShouldEqual, 16*time.Millisecond)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "crossing")
			})
		})

		convey.Convey("When the metrics namespace is overridden", func() {
			_ = os.Setenv("CROSSING_METRICS_NAMESPACE", "crossing_staging")
			cfg, err := config.Load(ctx)

			convey.Convey("Then the namespace should be taken from the env", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "crossing_staging")
			})
		})

		convey.Convey("When the metrics namespace is not a metric name", func() {
			_ = os.Setenv("CROSSING_METRICS_NAMESPACE", "crossing-staging")
			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CROSSING_ADDR", ":8080")
			_ = os.Setenv("CROSSING_LOG_LEVEL", "debug")
			_ = os.Setenv("CROSSING_STREAM_INTERVAL", "20ms")
			_ = os.Setenv("CROSSING_MODEL_PATH", "/srv/model.yaml")
			_ = os.Setenv("CROSSING_CORS_ALLOWED_ORIGINS", "http://localhost:3000, http://127.0.0.1:3000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.StreamInterval, convey.ShouldEqual, 20*time.Millisecond)
				convey.So(cfg.ModelPath, convey.ShouldEqual, "/srv/model.yaml")
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble,
					[]string{"http://localhost:3000", "http://127.0.0.1:3000"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
log_format: json
scaler_path: /opt/crossing/scaler.yaml
stream_interval: 32ms
shutdown_timeout: 5s
cors_allowed_origins:
  - http://game.local
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("CROSSING_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.ScalerPath, convey.ShouldEqual, "/opt/crossing/scaler.yaml")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "artifacts/model.yaml")
				convey.So(cfg.StreamInterval, convey.ShouldEqual, 32*time.Millisecond)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"http://game.local"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nlog_level: warn\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("CROSSING_CONFIG", tmpFile)
			_ = os.Setenv("CROSSING_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")  // Overridden by env
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn") // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("CROSSING_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CROSSING_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("CROSSING_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive stream interval", func() {
			_ = os.Setenv("CROSSING_STREAM_INTERVAL", "0s")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "stream_interval")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unparsable duration", func() {
			_ = os.Setenv("CROSSING_SHUTDOWN_TIMEOUT", "soon")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"CROSSING_CONFIG",
		"CROSSING_ADDR",
		"CROSSING_LOG_LEVEL",
		"CROSSING_LOG_FORMAT",
		"CROSSING_SCALER_PATH",
		"CROSSING_MODEL_PATH",
		"CROSSING_STREAM_INTERVAL",
		"CROSSING_CORS_ALLOWED_ORIGINS",
		"CROSSING_SHUTDOWN_TIMEOUT",
		"CROSSING_METRICS_NAMESPACE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "crossing-config-*.yaml")
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
