package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageSize is the page size used when none is requested.
const DefaultPageSize = 12

// Params is the listing state mirrored in the URL as q, page and size.
type Params struct {
	Query string
	Page  int
	Size  int
}

// ParamsFromURL reads q, page and size from values. Missing or malformed
// page and size values fall back to 0 and defaultSize.
func ParamsFromURL(values url.Values, defaultSize int) Params {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	p := Params{
		Query: strings.TrimSpace(values.Get("q")),
		Size:  defaultSize,
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		p.Page = page
	}
	if size, err := strconv.Atoi(values.Get("size")); err == nil && size > 0 {
		p.Size = size
	}
	return p
}

// Values encodes p as URL query values. An empty query is omitted.
func (p Params) Values() url.Values {
	values := url.Values{}
	if p.Query != "" {
		values.Set("q", p.Query)
	}
	values.Set("page", strconv.Itoa(p.Page))
	values.Set("size", strconv.Itoa(p.Size))
	return values
}
