// Package logging configures the zerolog logger shared by the storefront
// packages and the proxy.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a level name as it appears in LOG_LEVEL.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level written; unknown names mean info.
	Level LogLevel

	// Pretty switches from JSON lines to console output.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer

	// Service is attached to every entry as "service" when set.
	Service string
}

// DefaultConfig returns JSON output at info level on stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// Setup installs the global logger every component logger derives from and
// returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	log.Logger = ctx.Logger()
	return log.Logger
}

// parseLevel accepts zerolog's level names plus "warning".
func parseLevel(level LogLevel) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(string(level)))
	if name == "warning" {
		return zerolog.WarnLevel
	}
	parsed, err := zerolog.ParseLevel(name)
	if err != nil || name == "" || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// NewLogger returns a logger tagged with component, derived from the global
// logger installed by Setup.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Level guidelines for storefront components:
//
// Debug: cache hits and misses with key and freshness, prefetch claims and
// swallowed prefetch failures, cart and list-query generation changes.
//
// Info: backend requests, 304 revalidations, locale negotiation outcome,
// proxy startup and shutdown.
//
// Warn: retries, background revalidation failures that keep stale data,
// translation fallback to the default locale.
//
// Error: requests failed after retries, translation fallback to an empty
// bundle, configuration errors.
//
// Common fields: component, endpoint (route template), key, freshness,
// status_code, duration, error_class, locale, request_id.
