package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Endpoint names used to build storefront cache keys.
const (
	EndpointProducts     = "products"
	EndpointProduct      = "product"
	EndpointTranslations = "translations"
	EndpointPage         = "page"
	EndpointArtist       = "artist"
)

const keySeparator = "?"

// BuildKey generates a deterministic cache key for an endpoint and its
// parameters.
// Format: endpoint?name1=value1&name2=value2
//
// Parameters are sorted by name, so insertion order never matters. Nil
// values and nil pointers are treated as not supplied and left out. With a
// nil params map the key is the endpoint name verbatim.
//
// Example:
//
//	products?page=0&q=sunset&size=12
func BuildKey(endpoint string, params map[string]any) string {
	if params == nil {
		return endpoint
	}

	names := make([]string, 0, len(params))
	values := make(map[string]any, len(params))
	for name, value := range params {
		v, ok := present(value)
		if !ok {
			continue
		}
		names = append(names, name)
		values[name] = v
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s=%v", name, values[name]))
	}

	return endpoint + keySeparator + strings.Join(pairs, "&")
}

// present dereferences pointer values and reports whether v was supplied.
func present(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

// ProductListKey is the key of one product listing page.
// An empty query is left out, matching a request without the q parameter.
func ProductListKey(query string, page, size int) string {
	params := map[string]any{
		"page": page,
		"size": size,
	}
	if query != "" {
		params["q"] = query
	}
	return BuildKey(EndpointProducts, params)
}

// ProductKey is the key of a product detail lookup.
func ProductKey(slug string) string {
	return BuildKey(EndpointProduct, map[string]any{"slug": slug})
}

// TranslationsKey is the key of a locale's translation bundle.
func TranslationsKey(locale string) string {
	return BuildKey(EndpointTranslations, map[string]any{"locale": locale})
}
