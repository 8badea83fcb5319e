// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// ScalerPath and ModelPath point at the pre-fit artifacts loaded at startup.
	ScalerPath string `koanf:"scaler_path"`
	ModelPath  string `koanf:"model_path"`

	// StreamInterval is the tick of /controller-stream (about 60 Hz by default).
	StreamInterval time.Duration `koanf:"stream_interval"`

	// CORSAllowedOrigins lists origins allowed to call the API; "*" allows any.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MetricsNamespace prefixes every exported Prometheus metric.
	MetricsNamespace string `koanf:"metrics_namespace"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":5000",
		ScalerPath:         "artifacts/scaler.yaml",
		ModelPath:          "artifacts/model.yaml",
		StreamInterval:     16 * time.Millisecond,
		CORSAllowedOrigins: []string{"*"},
		ShutdownTimeout:    30 * time.Second,
		MetricsNamespace:   "crossing",
	}
}
