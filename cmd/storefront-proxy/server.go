package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/baltaragis-client/pkg/cache"
	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/Sternrassler/baltaragis-client/pkg/logging"
	"github.com/Sternrassler/baltaragis-client/pkg/metrics"
	"github.com/Sternrassler/baltaragis-client/pkg/prefetch"
	"github.com/Sternrassler/baltaragis-client/pkg/storage"
)

type serverOptions struct {
	API        *client.Client
	Cache      *cache.Cache
	Prefetcher *prefetch.Scheduler
	Sessions   *scs.SessionManager
	// Durable keeps locale and consent beyond the session when set.
	Durable  storage.Store
	PageSize int
	Logger   zerolog.Logger
}

type server struct {
	router     *chi.Mux
	handler    http.Handler
	api        *client.Client
	cache      *cache.Cache
	prefetcher *prefetch.Scheduler
	sessions   *scs.SessionManager
	durable    storage.Store
	pageSize   int
	logger     zerolog.Logger

	// background tracks prefetches started after a response was written.
	background sync.WaitGroup
	baseCtx    context.Context
}

func newServer(opts serverOptions) *server {
	s := &server{
		router:     chi.NewRouter(),
		api:        opts.API,
		cache:      opts.Cache,
		prefetcher: opts.Prefetcher,
		sessions:   opts.Sessions,
		durable:    opts.Durable,
		pageSize:   opts.PageSize,
		logger:     opts.Logger,
		baseCtx:    context.Background(),
	}

	r := s.router
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Middleware(s.logger))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.handleProducts)
		r.Get("/products/{slug}", s.handleProduct)
		r.Post("/prefetch", s.handlePrefetch)

		r.Get("/i18n/{locale}", s.handleTranslations)
		r.Get("/locale", s.handleLocale)
		r.Put("/locale", s.handleSaveLocale)

		r.Get("/consent", s.handleConsent)
		r.Post("/consent/{decision}", s.handleConsentDecision)

		r.Get("/cart", s.handleCart)
		r.Delete("/cart", s.handleClearCart)
		r.Post("/cart/items", s.handleAddCartItem)
		r.Put("/cart/items/{id}", s.handleUpdateCartItem)
		r.Delete("/cart/items/{id}", s.handleRemoveCartItem)

		r.Post("/admin/invalidate", s.handleInvalidate)
	})

	s.handler = s.sessions.LoadAndSave(r)
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// goBackground runs fn detached from the request so a finished response
// does not cancel it.
func (s *server) goBackground(fn func(ctx context.Context)) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		fn(s.baseCtx)
	}()
}

// wait blocks until background work has settled.
func (s *server) wait() {
	s.background.Wait()
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"entries": s.cache.Len(),
	})
}

func (s *server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	removed := s.cache.Invalidate(pattern)
	if pattern == "" || pattern == cache.EndpointProduct {
		s.prefetcher.Reset()
	}
	s.logger.Info().Str("pattern", pattern).Int("removed", removed).Msg("Cache invalidated by request")
	writeJSON(w, http.StatusOK, map[string]int{"invalidated": removed})
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields []client.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeUpstreamError maps a client error to the proxy's response.
func (s *server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *client.ValidationError
	var apiErr *client.APIError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: verr.Errors})
	case client.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, client.ErrContextCancelled), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	case errors.As(err, &apiErr) && apiErr.ErrorClass == client.ErrorClassClient:
		writeError(w, apiErr.StatusCode, apiErr.Error())
	default:
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Upstream request failed")
		writeError(w, http.StatusBadGateway, "storefront backend unavailable")
	}
}
