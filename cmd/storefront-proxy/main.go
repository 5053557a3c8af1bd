// Command storefront-proxy serves the storefront's cached catalogue,
// translations, locale negotiation and session cart over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Sternrassler/baltaragis-client/internal/config"
	"github.com/Sternrassler/baltaragis-client/pkg/cache"
	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/Sternrassler/baltaragis-client/pkg/logging"
	"github.com/Sternrassler/baltaragis-client/pkg/prefetch"
	"github.com/Sternrassler/baltaragis-client/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Storefront proxy failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.Logging())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clientCfg := cfg.Client()
	if cfg.TraceStdout {
		tp, err := stdoutTracer()
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
		otel.SetTracerProvider(tp)
		clientCfg.TracerProvider = tp
	}

	api, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("create storefront client: %w", err)
	}

	var durable storage.Store
	if cfg.HasRedis() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		redisStore := storage.NewRedisStore(rdb)
		if err := redisStore.Ping(ctx); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		durable = redisStore
		logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	}

	sessions := scs.New()
	sessions.Lifetime = cfg.SessionLifetime
	sessions.Cookie.Name = "baltaragis_session"
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode

	c := cache.New(cache.WithLogger(logging.NewLogger("cache")))
	prefetchCfg := prefetch.DefaultConfig()
	prefetchCfg.Concurrency = cfg.PrefetchConcurrency

	srv := newServer(serverOptions{
		API:        api,
		Cache:      c,
		Prefetcher: prefetch.NewScheduler(c, api, prefetchCfg),
		Sessions:   sessions,
		Durable:    durable,
		PageSize:   cfg.DefaultPageSize,
		Logger:     logging.NewLogger("proxy"),
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr()).
			Str("api", cfg.APIBaseURL).
			Bool("redis", cfg.HasRedis()).
			Msg("Starting storefront proxy")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutting down storefront proxy")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	srv.wait()
	return nil
}

func stdoutTracer() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}
