package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sternrassler/baltaragis-client/pkg/cache"
	"github.com/Sternrassler/baltaragis-client/pkg/client"
	"github.com/Sternrassler/baltaragis-client/pkg/i18n"
	"github.com/Sternrassler/baltaragis-client/pkg/listing"
	"github.com/Sternrassler/baltaragis-client/pkg/pagination"
)

// cacheHeader reports whether a response was served fresh, stale or fetched.
const cacheHeader = "X-Cache"

type productsResponse struct {
	Query string             `json:"q,omitempty"`
	Page  client.ProductPage `json:"page"`
	Pages []pagination.Item  `json:"pages,omitempty"`
}

func (s *server) handleProducts(w http.ResponseWriter, r *http.Request) {
	params := listing.ParamsFromURL(r.URL.Query(), s.pageSize)
	if !pagination.ValidSize(params.Size) {
		params.Size = s.pageSize
	}

	q := client.ProductQuery{
		Q:    params.Query,
		Page: client.Int(params.Page),
		Size: client.Int(params.Size),
	}
	key := cache.ProductListKey(params.Query, params.Page, params.Size)

	page, freshness, err := cache.Load(r.Context(), s.cache, key, s.api.ProductsFetcher(q))
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}

	if slugs := page.Slugs(); len(slugs) > 0 {
		s.goBackground(func(ctx context.Context) {
			s.prefetcher.PrefetchMany(ctx, slugs)
		})
	}

	w.Header().Set(cacheHeader, freshness.String())
	writeJSON(w, http.StatusOK, productsResponse{
		Query: params.Query,
		Page:  page,
		Pages: pagination.Window(page.Number, page.TotalPages),
	})
}

func (s *server) handleProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, hit, err := cache.GetOrFetch(r.Context(), s.cache, cache.ProductKey(slug), func(ctx context.Context) (client.ProductDetail, error) {
		return s.api.GetProduct(ctx, slug)
	})
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}

	if hit {
		w.Header().Set(cacheHeader, "hit")
	} else {
		w.Header().Set(cacheHeader, cache.Miss.String())
	}
	writeJSON(w, http.StatusOK, product)
}

type prefetchRequest struct {
	Slugs []string `json:"slugs"`
}

// handlePrefetch accepts hover hints. Prefetching happens after the
// response is written; failures are never reported to the caller.
func (s *server) handlePrefetch(w http.ResponseWriter, r *http.Request) {
	var req prefetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	slugs := make([]string, 0, len(req.Slugs))
	for _, slug := range req.Slugs {
		if slug = strings.TrimSpace(slug); slug != "" && !s.prefetcher.Attempted(slug) {
			slugs = append(slugs, slug)
		}
	}
	if len(slugs) > 0 {
		s.goBackground(func(ctx context.Context) {
			s.prefetcher.PrefetchMany(ctx, slugs)
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]int{"scheduled": len(slugs)})
}

func (s *server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")
	if !i18n.IsSupported(locale) {
		writeError(w, http.StatusNotFound, "unsupported locale")
		return
	}

	bundle, freshness, err := cache.Load(r.Context(), s.cache, cache.TranslationsKey(locale), s.api.TranslationsFetcher(locale))
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}

	w.Header().Set(cacheHeader, freshness.String())
	writeJSON(w, http.StatusOK, bundle)
}
