// Package logger builds the zap loggers used by the CLI and dashboard.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// Level is a zap level name ("debug", "info", "warn", "error").
	Level string
	// File, when set, sends output to that path instead of stderr.
	File string
	// Development switches to the human-readable console encoder.
	Development bool
}

// New creates a new zap logger.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if opts.Level != "" {
		level, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		// File output never gets terminal colors.
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	} else {
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	return cfg.Build()
}

// Must creates a logger or panics.
func Must(opts Options) *zap.Logger {
	log, err := New(opts)
	if err != nil {
		panic(err)
	}
	return log
}
