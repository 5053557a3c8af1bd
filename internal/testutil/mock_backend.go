// Package testutil provides testing utilities for the storefront client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// APIPrefix is the path prefix the mock backend serves under.
const APIPrefix = "/api/v1"

// MockResponse defines the behavior for a mock backend endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockBackend is a configurable mock storefront backend for testing.
// Handlers are registered by path relative to APIPrefix, e.g. "/products".
type MockBackend struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requestCount      int
	conditionalCount  int
	pathCounts        map[string]int
	lastRequestHeader http.Header
	lastRequest       *http.Request
}

// NewMockBackend creates and starts a new mock backend.
func NewMockBackend() *MockBackend {
	mock := &MockBackend{
		handlers:   make(map[string]http.HandlerFunc),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, APIPrefix)

		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[path]++
		mock.lastRequestHeader = r.Header.Clone()
		mock.lastRequest = r.Clone(r.Context())
		if r.Header.Get("If-None-Match") != "" {
			mock.conditionalCount++
		}
		handler, exists := mock.handlers[path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		WriteProblem(w, http.StatusNotFound, "Not Found", fmt.Sprintf("no handler for %s", path))
	}))

	return mock
}

// URL returns the API base URL of the mock, including APIPrefix.
func (m *MockBackend) URL() string {
	return m.server.URL + APIPrefix
}

// Close shuts down the mock server.
func (m *MockBackend) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.pathCounts = make(map[string]int)
	m.lastRequestHeader = nil
	m.lastRequest = nil
}

// SetHandler sets a custom handler for a path.
func (m *MockBackend) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockBackend) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetJSON serves v as a 200 JSON response on path.
func (m *MockBackend) SetJSON(path string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal %T: %v", v, err))
	}
	m.SetResponse(path, NewJSONResponse(string(body)))
}

// RequestCount returns the number of requests made to the server.
func (m *MockBackend) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PathCount returns the number of requests made to path.
func (m *MockBackend) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// ConditionalCount returns the number of requests carrying If-None-Match.
func (m *MockBackend) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockBackend) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// LastRequest returns a clone of the most recent request.
func (m *MockBackend) LastRequest() *http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequest
}

// NewJSONResponse creates a 200 OK JSON response.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"title":"Internal Server Error","status":500,"detail":"boom"}`,
		Headers: map[string]string{
			"Content-Type": "application/problem+json",
		},
	}
}

// WriteProblem writes a problem document.
func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"title":  title,
		"status": status,
		"detail": detail,
	})
}

// NewConditionalHandler creates a handler that answers 304 when the request
// carries etag in If-None-Match, and the full body otherwise.
func NewConditionalHandler(etag string, data string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == etag {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(data))
	}
}

// ProductCard is the JSON fixture of a listing card.
type ProductCard struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	InStock  bool   `json:"inStock"`
}

// ProductPage builds a product listing page body with one card per slug.
func ProductPage(page, size int, slugs ...string) map[string]any {
	cards := make([]ProductCard, 0, len(slugs))
	for i, slug := range slugs {
		cards = append(cards, ProductCard{
			ID:       int64(i + 1),
			Name:     strings.ToUpper(slug[:1]) + slug[1:],
			Slug:     slug,
			Price:    "€45.00",
			Currency: "EUR",
			InStock:  true,
		})
	}
	totalPages := 0
	if len(slugs) > 0 {
		totalPages = 1
	}
	return map[string]any{
		"content":          cards,
		"number":           page,
		"size":             size,
		"totalElements":    len(slugs),
		"totalPages":       totalPages,
		"numberOfElements": len(slugs),
		"first":            page == 0,
		"last":             true,
		"empty":            len(slugs) == 0,
	}
}

// ProductDetail builds a product detail body for slug.
func ProductDetail(slug, price string) map[string]any {
	return map[string]any{
		"id":       1,
		"name":     slug,
		"slug":     slug,
		"price":    price,
		"currency": "EUR",
		"quantity": 3,
		"photos":   []string{"https://cdn.example.com/" + slug + ".jpg"},
		"inStock":  true,
	}
}
