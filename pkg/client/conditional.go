package client

import (
	"context"
	"errors"

	"github.com/Sternrassler/baltaragis-client/pkg/cache"
)

// Call is a client method bound to its arguments, accepting request options.
type Call[T any] func(ctx context.Context, opts ...RequestOption) (T, error)

// Conditional adapts call into a cache.Fetcher. The stored ETag is sent as
// If-None-Match and a 304 answer is reported as not modified.
func Conditional[T any](call Call[T]) cache.Fetcher[T] {
	return func(ctx context.Context, etag string) (cache.Result[T], error) {
		var newETag string
		opts := []RequestOption{CaptureETag(&newETag)}
		if etag != "" {
			opts = append(opts, IfNoneMatch(etag))
		}

		data, err := call(ctx, opts...)
		if errors.Is(err, ErrNotModified) {
			return cache.Result[T]{NotModified: true}, nil
		}
		if err != nil {
			return cache.Result[T]{}, err
		}
		return cache.Result[T]{Data: data, ETag: newETag}, nil
	}
}

// ProductsFetcher returns a conditional fetcher for one product listing page.
func (c *Client) ProductsFetcher(q ProductQuery) cache.Fetcher[ProductPage] {
	return Conditional(func(ctx context.Context, opts ...RequestOption) (ProductPage, error) {
		return c.GetProducts(ctx, q, opts...)
	})
}

// TranslationsFetcher returns a conditional fetcher for a locale bundle.
func (c *Client) TranslationsFetcher(locale string) cache.Fetcher[Translations] {
	return Conditional(func(ctx context.Context, opts ...RequestOption) (Translations, error) {
		return c.GetTranslations(ctx, locale, opts...)
	})
}
