// Package client provides the typed HTTP client for the storefront backend
// with retries, conditional requests, metrics, and tracing.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/baltaragis-client/pkg/cache"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Prometheus metrics for backend requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_requests_total",
		Help: "Total backend requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_request_duration_seconds",
		Help:    "Backend request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_errors_total",
		Help: "Total backend errors by class",
	}, []string{"class"})
)

const (
	// DefaultBaseURL is the backend used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8080/api/v1"

	// DefaultUserAgent identifies the client to the backend.
	DefaultUserAgent = "baltaragis-client/0.1"

	tracerName = "github.com/Sternrassler/baltaragis-client/pkg/client"
)

// Client is the storefront backend client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, including the /api/v1 prefix
	BaseURL string

	// UserAgent header sent with every request
	UserAgent string

	// Timeout per HTTP attempt; ignored when HTTPClient is set
	Timeout time.Duration

	// Retry applies to idempotent requests only
	Retry RetryConfig

	// HTTPClient overrides the default transport (mainly for tests)
	HTTPClient *http.Client

	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider

	// Logger defaults to a component logger derived from the global logger
	Logger *zerolog.Logger
}

// DefaultConfig returns a configuration for the given base URL.
func DefaultConfig(baseURL string) Config {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Config{
		BaseURL:   baseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   15 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	logger := log.With().Str("component", "storefront-client").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		config:     cfg,
		tracer:     tp.Tracer(tracerName),
		logger:     logger,
	}, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOption customizes a single call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	ifNoneMatch    string
	captureETag    *string
	idempotencyKey string
}

// IfNoneMatch makes the request conditional on etag. A 304 answer is
// reported as ErrNotModified.
func IfNoneMatch(etag string) RequestOption {
	return func(o *requestOptions) {
		o.ifNoneMatch = etag
	}
}

// CaptureETag stores the ETag of a successful response in dst.
func CaptureETag(dst *string) RequestOption {
	return func(o *requestOptions) {
		o.captureETag = dst
	}
}

// WithIdempotencyKey overrides the generated Idempotency-Key of a mutating call.
func WithIdempotencyKey(key string) RequestOption {
	return func(o *requestOptions) {
		o.idempotencyKey = key
	}
}

// request describes one backend call. route is the low-cardinality label
// used for metrics and spans, path the concrete URL path.
type request struct {
	method      string
	route       string
	path        string
	query       url.Values
	body        []byte
	contentType string
	idempotent  bool
	opts        requestOptions
}

func newRequest(method, route, path string, opts []RequestOption) *request {
	r := &request{
		method:     method,
		route:      route,
		path:       path,
		idempotent: method == http.MethodGet || method == http.MethodPut || method == http.MethodDelete,
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

func (r *request) withJSON(v any) (*request, error) {
	if v == nil {
		return r, nil
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", r.route, err)
	}
	r.body = body
	r.contentType = "application/json"
	return r, nil
}

// withIdempotencyKey marks a mutating call with an Idempotency-Key header.
func (r *request) withIdempotencyKey() *request {
	if r.opts.idempotencyKey == "" {
		r.opts.idempotencyKey = uuid.NewString()
	}
	return r
}

// do executes r and decodes a successful body into out (which may be nil).
func (c *Client) do(ctx context.Context, r *request, out any) error {
	ctx, span := c.tracer.Start(ctx, "storefront.client",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.method),
			attribute.String("storefront.endpoint", r.route),
		))
	defer span.End()

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(r.route).Observe(time.Since(startTime).Seconds())
	}()

	retryConfig := NoRetry()
	if r.idempotent {
		retryConfig = c.config.Retry
	}

	var body []byte
	var resp *http.Response
	err := retryWithBackoff(ctx, retryConfig, c.logger, func() error {
		var attemptErr error
		resp, body, attemptErr = c.attempt(ctx, r)
		return attemptErr
	})

	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}
	if err != nil {
		if !errors.Is(err, ErrNotModified) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}

	if r.opts.captureETag != nil {
		*r.opts.captureETag = cache.ETagOf(resp)
	}
	if err := decode(resp.StatusCode, body, out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode")
		return fmt.Errorf("decode %s response: %w", r.route, err)
	}
	return nil
}

// attempt performs a single HTTP round trip. The response body is fully
// read and closed before returning.
func (c *Client) attempt(ctx context.Context, r *request) (*http.Response, []byte, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	if r.body != nil {
		bodyReader = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.opts.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", r.opts.idempotencyKey)
	}
	cache.AddConditionalHeaders(req, r.opts.ifNoneMatch)

	c.logger.Debug().
		Str("endpoint", r.route).
		Str("method", r.method).
		Msg("Executing backend request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(r.route, "network_error").Inc()
		c.logger.Warn().Err(err).Str("endpoint", r.route).Msg("Backend request failed")
		return nil, nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			Problem:    Problem{Title: "Network Error", Detail: err.Error()},
			Err:        err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(r.route, "network_error").Inc()
		return resp, nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Problem:    Problem{Title: "Network Error", Detail: err.Error()},
			Err:        err,
		}
	}

	requestsTotal.WithLabelValues(r.route, strconv.Itoa(resp.StatusCode)).Inc()

	if cache.IsNotModified(resp) {
		c.logger.Debug().Str("endpoint", r.route).Msg("304 Not Modified")
		return resp, nil, ErrNotModified
	}

	if resp.StatusCode >= 400 {
		errClass := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Str("endpoint", r.route).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Backend request error")
		return resp, body, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Problem:    parseProblem(resp.StatusCode, body),
		}
	}

	return resp, body, nil
}

// classifyStatus categorizes an HTTP error status.
func classifyStatus(status int) ErrorClass {
	if status >= 500 {
		return ErrorClassServer
	}
	return ErrorClassClient
}

// parseProblem decodes a problem body, synthesizing one when the body is not
// a JSON problem document.
func parseProblem(status int, body []byte) Problem {
	var p Problem
	if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &p) == nil {
		if p.Status == 0 {
			p.Status = status
		}
		return p
	}
	text := http.StatusText(status)
	return Problem{
		Status: status,
		Title:  text,
		Detail: fmt.Sprintf("HTTP %d: %s", status, text),
	}
}

// decode unmarshals body into out. Empty bodies and 204 responses leave out
// untouched. String targets also accept a raw text body.
func decode(status int, body []byte, out any) error {
	if out == nil || status == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	err := json.Unmarshal(body, out)
	if err == nil {
		return nil
	}
	raw := strings.TrimSpace(string(body))
	switch v := out.(type) {
	case *string:
		*v = raw
		return nil
	case *WaitlistStatus:
		*v = WaitlistStatus(raw)
		return nil
	}
	return err
}
