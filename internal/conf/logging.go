// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"io"
	"log/slog"

	"github.com/sapcc/go-bits/osext"
)

// Configuration for structured logging.
type LoggingConfig struct {
	// The log level to use (debug, info, warn, error).
	LevelStr string `yaml:"level"`
	// The log format to use (json, text).
	Format string `yaml:"format"`
}

// Conform to the slog.Leveler interface.
func (c LoggingConfig) Level() slog.Level {
	switch c.LevelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c LoggingConfig) withEnvOverrides() LoggingConfig {
	c.LevelStr = osext.GetenvOrDefault("DEFUNCT_LOG_LEVEL", c.LevelStr)
	c.Format = osext.GetenvOrDefault("DEFUNCT_LOG_FORMAT", c.Format)
	return c
}

// Set the structured logger as given in the config.
// Logs are written to w, which should not be the report output.
func (c LoggingConfig) SetDefaultLogger(w io.Writer) {
	opts := &slog.HandlerOptions{Level: c}
	var handler slog.Handler
	switch c.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("logging: set default logger", "level", c.LevelStr, "format", c.Format)
}
