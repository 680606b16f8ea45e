package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/corbelhq/corbel/pkg/request"
)

// maxBodySize caps request bodies the parser will read (8 MB).
const maxBodySize = 8 << 20

// parsedBodyContextKey is the type for the parsed-body context key.
type parsedBodyContextKey struct{}

// parsedBody holds what the body parser extracted for one request.
type parsedBody struct {
	fields map[string]any
	files  []*request.File
}

// BodyParserMiddleware parses JSON, URL-encoded, and multipart request
// bodies ahead of the handlers and stores the result in the request context,
// where the facade picks it up. Uploaded files land in tmpDir under random
// names. A malformed body is counted and left unparsed; input accessors then
// see an empty body, they never fail.
func BodyParserMiddleware(tmpDir string, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			contentType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			body := http.MaxBytesReader(w, r.Body, maxBodySize)
			parsed := parsedBody{}

			switch {
			case contentType == "application/json" || strings.HasSuffix(contentType, "+json"):
				parsed.fields, err = parseJSONBody(body)
			case contentType == "application/x-www-form-urlencoded":
				parsed.fields, err = parseFormBody(body)
			case contentType == "multipart/form-data":
				parsed.fields, parsed.files, err = parseMultipartBody(body, params["boundary"], tmpDir)
			default:
				next.ServeHTTP(w, r)
				return
			}

			if err != nil {
				if metrics != nil {
					metrics.BodyParseErrors.Inc()
				}
				LoggerFromContext(r.Context()).Warn("failed to parse request body",
					"content_type", contentType, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), parsedBodyContextKey{}, parsed)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// attachBody copies parser output from the context into a facade.
func attachBody(ctx context.Context, req *request.Request) {
	parsed, ok := ctx.Value(parsedBodyContextKey{}).(parsedBody)
	if !ok {
		return
	}
	if parsed.fields != nil {
		req.SetBody(parsed.fields)
	}
	if parsed.files != nil {
		req.SetFiles(parsed.files)
	}
}

func parseJSONBody(body io.Reader) (map[string]any, error) {
	fields := make(map[string]any)
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func parseFormBody(body io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, err
	}
	return request.FormFields(values), nil
}

// parseMultipartBody walks the parts in wire order so the resulting file
// list preserves upload order. File parts are spooled to tmpDir.
func parseMultipartBody(body io.Reader, boundary, tmpDir string) (map[string]any, []*request.File, error) {
	if boundary == "" {
		return nil, nil, http.ErrMissingBoundary
	}

	values := make(url.Values)
	var files []*request.File

	reader := multipart.NewReader(body, boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		if part.FileName() == "" {
			value, err := io.ReadAll(part)
			if err != nil {
				return nil, nil, err
			}
			values[part.FormName()] = append(values[part.FormName()], string(value))
			continue
		}

		file, err := spoolFile(part, tmpDir)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, file)
	}

	return request.FormFields(values), files, nil
}

// spoolFile writes one file part to a uniquely named temp file and returns
// its handle.
func spoolFile(part *multipart.Part, tmpDir string) (*request.File, error) {
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(tmpDir, uuid.New().String())
	dst, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	size, err := io.Copy(dst, part)
	closeErr := dst.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return request.NewFile(
		part.FormName(),
		part.FileName(),
		path,
		size,
		part.Header.Get("Content-Type"),
	), nil
}
