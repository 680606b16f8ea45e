package request

import (
	"net/http"
	"testing"
	"time"
)

func TestRequest_Fresh_ETag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		noneMatch string
		etag      string
		want      bool
	}{
		{"matching etag", `"abc"`, `"abc"`, true},
		{"mismatched etag", `"abc"`, `"def"`, false},
		{"star always fresh", "*", "", true},
		{"list with match", `"abc", "def"`, `"def"`, true},
		{"weak comparison", `W/"abc"`, `"abc"`, true},
		{"no response etag", `"abc"`, "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, w := newFacade(http.MethodGet, "/")
			req.Raw().Header.Set("If-None-Match", tt.noneMatch)
			if tt.etag != "" {
				w.Header().Set("ETag", tt.etag)
			}
			if got := req.Fresh(); got != tt.want {
				t.Errorf("Fresh() = %v, want %v", got, tt.want)
			}
			if got := req.Stale(); got != !tt.want {
				t.Errorf("Stale() = %v, want %v", got, !tt.want)
			}
		})
	}
}

func TestRequest_Fresh_ModifiedSince(t *testing.T) {
	t.Parallel()

	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		since time.Time
		want  bool
	}{
		{"not modified since", modified.Add(time.Hour), true},
		{"same instant", modified, true},
		{"modified after", modified.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, w := newFacade(http.MethodGet, "/")
			req.Raw().Header.Set("If-Modified-Since", tt.since.Format(http.TimeFormat))
			w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
			if got := req.Fresh(); got != tt.want {
				t.Errorf("Fresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

// If-None-Match takes precedence over If-Modified-Since (RFC 9111 §4.3.2).
func TestRequest_Fresh_NoneMatchPrecedence(t *testing.T) {
	t.Parallel()

	req, w := newFacade(http.MethodGet, "/")
	req.Raw().Header.Set("If-None-Match", `"stale"`)
	req.Raw().Header.Set("If-Modified-Since", time.Now().Add(time.Hour).Format(http.TimeFormat))
	w.Header().Set("ETag", `"current"`)
	w.Header().Set("Last-Modified", time.Now().Add(-time.Hour).Format(http.TimeFormat))

	if req.Fresh() {
		t.Error("mismatched If-None-Match must make the request stale even with a satisfied If-Modified-Since")
	}
}

func TestRequest_Fresh_Guards(t *testing.T) {
	t.Parallel()

	// No conditional headers at all.
	req, _ := newFacade(http.MethodGet, "/")
	if req.Fresh() {
		t.Error("Fresh() without conditional headers should be false")
	}

	// Non-GET/HEAD methods are never fresh.
	req, _ = newFacade(http.MethodPost, "/")
	req.Raw().Header.Set("If-None-Match", "*")
	if req.Fresh() {
		t.Error("Fresh() on POST should be false")
	}

	// An explicit no-cache request refuses cached answers.
	req, w := newFacade(http.MethodGet, "/")
	req.Raw().Header.Set("If-None-Match", `"abc"`)
	req.Raw().Header.Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", `"abc"`)
	if req.Fresh() {
		t.Error("Fresh() with Cache-Control: no-cache should be false")
	}
}
