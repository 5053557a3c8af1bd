// Package config loads storefront-proxy configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/Sternrassler/baltaragis-client/pkg/logging"
	"github.com/Sternrassler/baltaragis-client/pkg/pagination"
)

// Config holds all proxy configuration.
type Config struct {
	APIBaseURL          string        `env:"STOREFRONT_API_BASE_URL" envDefault:"http://localhost:8080/api/v1"`
	Port                string        `env:"PORT" envDefault:"8090"`
	RedisURL            string        `env:"REDIS_URL"`
	UserAgent           string        `env:"USER_AGENT" envDefault:"baltaragis-client/0.1"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty           bool          `env:"LOG_PRETTY" envDefault:"false"`
	DefaultPageSize     int           `env:"DEFAULT_PAGE_SIZE" envDefault:"12"`
	PrefetchConcurrency int           `env:"PREFETCH_CONCURRENCY" envDefault:"6"`
	TraceStdout         bool          `env:"TRACE_STDOUT" envDefault:"false"`
	SessionLifetime     time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from the given map instead of the process
// environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the proxy cannot start without.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("STOREFRONT_API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if !pagination.ValidSize(c.DefaultPageSize) {
		errs = append(errs, fmt.Errorf("DEFAULT_PAGE_SIZE must be one of %v, got %d", pagination.Sizes, c.DefaultPageSize))
	}
	if c.PrefetchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("PREFETCH_CONCURRENCY must be at least 1, got %d", c.PrefetchConcurrency))
	}
	if c.SessionLifetime <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_LIFETIME must be positive, got %s", c.SessionLifetime))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// HasRedis reports whether durable storage is configured.
func (c Config) HasRedis() bool {
	return c.RedisURL != ""
}

// Logging returns the logger configuration for the proxy.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.LogLevel)
	cfg.Pretty = c.LogPretty
	cfg.Service = "storefront-proxy"
	return cfg
}

// Client returns the API client configuration.
func (c Config) Client() client.Config {
	cfg := client.DefaultConfig(c.APIBaseURL)
	cfg.UserAgent = c.UserAgent
	return cfg
}
