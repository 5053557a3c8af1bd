package cache

import (
	"net/http"
)

// AddConditionalHeaders adds If-None-Match to req when an ETag is known.
func AddConditionalHeaders(req *http.Request, etag string) {
	if req == nil || etag == "" {
		return
	}
	req.Header.Set("If-None-Match", etag)
}

// ETagOf returns the ETag header of resp, or an empty string.
func ETagOf(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	return resp.Header.Get("ETag")
}

// IsNotModified reports whether resp answers a conditional request with 304.
func IsNotModified(resp *http.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotModified
}
