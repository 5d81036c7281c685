// Package logging builds the process-wide structured logger. It follows
// the same zap setup LerianStudio-midaz's mzap package uses for its
// ledger services (environment-selected encoder config, LOG_LEVEL
// override), trimmed of the OpenTelemetry log bridge since this core has
// no tracing/metrics pipeline to feed.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger appropriate for ENV_NAME ("production" or
// anything else, defaulting to development output).
func New() *zap.Logger {
	var cfg zap.Config

	if os.Getenv("ENV_NAME") == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if val, ok := os.LookupEnv("LOG_LEVEL"); ok {
		var lvl zapcore.Level
		if err := lvl.Set(val); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than crash the process over
		// a malformed logging config.
		return zap.NewNop()
	}

	return logger
}
