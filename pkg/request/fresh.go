package request

import (
	"net/http"
	"strings"
	"time"
)

// Fresh evaluates the request's conditional headers against the validators
// already set on the response (ETag, Last-Modified). A fresh request can be
// answered with 304 Not Modified.
//
// If-None-Match takes precedence over If-Modified-Since; If-None-Match: *
// is always fresh. Only GET and HEAD requests can be fresh, and a request
// asking explicitly for no caching never is.
func (r *Request) Fresh() bool {
	if method := r.Method(); method != http.MethodGet && method != http.MethodHead {
		return false
	}

	noneMatch := r.req.Header.Get("If-None-Match")
	modifiedSince := r.req.Header.Get("If-Modified-Since")
	if noneMatch == "" && modifiedSince == "" {
		return false
	}

	if cacheControl := r.req.Header.Get("Cache-Control"); strings.Contains(strings.ToLower(cacheControl), "no-cache") {
		return false
	}

	if noneMatch != "" {
		return etagMatches(noneMatch, r.res.Header().Get("ETag"))
	}

	lastModified := r.res.Header().Get("Last-Modified")
	if lastModified == "" {
		return false
	}
	modTime, err := http.ParseTime(lastModified)
	if err != nil {
		return false
	}
	sinceTime, err := http.ParseTime(modifiedSince)
	if err != nil {
		return false
	}
	// Header granularity is one second; truncate before comparing.
	return !modTime.Truncate(time.Second).After(sinceTime.Truncate(time.Second))
}

// Stale is the logical negation of Fresh.
func (r *Request) Stale() bool {
	return !r.Fresh()
}

// etagMatches checks an If-None-Match field value against the response ETag
// using weak comparison.
func etagMatches(noneMatch, etag string) bool {
	if strings.TrimSpace(noneMatch) == "*" {
		return true
	}
	if etag == "" {
		return false
	}
	etag = strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(noneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}
