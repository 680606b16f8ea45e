package httpserver

import (
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"

	"github.com/corbelhq/corbel/pkg/request"
)

// ETag computes a strong entity tag for a response body.
func ETag(body []byte) string {
	return fmt.Sprintf("\"%x-%x\"", len(body), xxhash.Sum64(body))
}

// WriteConditional sets validators on the response and answers 304 when the
// request's conditional headers show its cached copy is still fresh;
// otherwise it writes the body with the given status and content type.
func WriteConditional(req *request.Request, status int, contentType string, body []byte) {
	w := req.Response()
	w.Header().Set("ETag", ETag(body))

	if req.Fresh() {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
