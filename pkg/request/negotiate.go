package request

import (
	"sort"
	"strconv"
	"strings"
)

// typeShorthands maps the conventional short names accepted by Is and
// Accepts to full media types.
var typeShorthands = map[string]string{
	"html":       "text/html",
	"text":       "text/plain",
	"plain":      "text/plain",
	"json":       "application/json",
	"xml":        "application/xml",
	"form":       "application/x-www-form-urlencoded",
	"urlencoded": "application/x-www-form-urlencoded",
	"multipart":  "multipart/form-data",
	"css":        "text/css",
	"js":         "application/javascript",
	"bin":        "application/octet-stream",
}

// Is reports whether the request's Content-Type matches any of the given
// media type names or shorthands. A "+suffix" candidate (e.g. "+json")
// matches any structured syntax carrying that suffix.
func (r *Request) Is(types ...string) bool {
	contentType := mediaType(r.req.Header.Get("Content-Type"))
	if contentType == "" {
		return false
	}
	for _, candidate := range types {
		if typeMatches(contentType, candidate) {
			return true
		}
	}
	return false
}

// Accepts negotiates the response type against the Accept header, returning
// the best-matching candidate name or an empty string when nothing matches.
// Precedence follows HTTP quality values: explicit q first, then range
// specificity, then candidate order. An absent Accept header accepts the
// first candidate.
func (r *Request) Accepts(types ...string) string {
	if len(types) == 0 {
		return ""
	}
	header := r.req.Header.Get("Accept")
	if header == "" {
		return types[0]
	}
	specs := parseAccept(header)

	best := ""
	bestQ, bestSpecificity := 0.0, -1
	for _, candidate := range types {
		full := normalizeType(candidate)
		// specs are sorted best-first, so the first match is this
		// candidate's strongest claim.
		for _, spec := range specs {
			if !rangeMatches(spec, full) {
				continue
			}
			if spec.q > bestQ || (spec.q == bestQ && spec.specificity() > bestSpecificity) {
				best, bestQ, bestSpecificity = candidate, spec.q, spec.specificity()
			}
			break
		}
	}
	return best
}

// acceptSpec is one parsed Accept header entry.
type acceptSpec struct {
	typ   string
	sub   string
	q     float64
	order int
}

// specificity ranks exact ranges above type wildcards above */*.
func (s acceptSpec) specificity() int {
	switch {
	case s.typ == "*":
		return 0
	case s.sub == "*":
		return 1
	default:
		return 2
	}
}

// parseAccept parses an Accept header into specs sorted by negotiation
// precedence. Entries with q=0 are dropped; they explicitly refuse a type.
func parseAccept(header string) []acceptSpec {
	var specs []acceptSpec
	for i, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		typ, sub, ok := strings.Cut(strings.ToLower(strings.TrimSpace(fields[0])), "/")
		if !ok || typ == "" || sub == "" {
			continue
		}
		spec := acceptSpec{typ: typ, sub: sub, q: 1, order: i}
		for _, param := range fields[1:] {
			if name, value, ok := strings.Cut(strings.TrimSpace(param), "="); ok && strings.EqualFold(strings.TrimSpace(name), "q") {
				if q, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
					spec.q = q
				}
			}
		}
		if spec.q > 0 {
			specs = append(specs, spec)
		}
	}

	sort.SliceStable(specs, func(i, j int) bool {
		if specs[i].q != specs[j].q {
			return specs[i].q > specs[j].q
		}
		if si, sj := specs[i].specificity(), specs[j].specificity(); si != sj {
			return si > sj
		}
		return specs[i].order < specs[j].order
	})
	return specs
}

// rangeMatches reports whether a full media type falls inside an accept
// range.
func rangeMatches(spec acceptSpec, full string) bool {
	typ, sub, ok := strings.Cut(full, "/")
	if !ok {
		return false
	}
	if spec.typ != "*" && spec.typ != typ {
		return false
	}
	return spec.sub == "*" || spec.sub == sub
}

// typeMatches reports whether a concrete content type matches a candidate
// name, shorthand, wildcard range, or +suffix form.
func typeMatches(contentType, candidate string) bool {
	if suffix, ok := strings.CutPrefix(candidate, "+"); ok {
		return strings.HasSuffix(contentType, "+"+suffix)
	}
	normalized := normalizeType(candidate)
	typ, sub, ok := strings.Cut(normalized, "/")
	if !ok {
		return false
	}
	ctTyp, ctSub, ok := strings.Cut(contentType, "/")
	if !ok {
		return false
	}
	if typ != "*" && typ != ctTyp {
		return false
	}
	return sub == "*" || sub == ctSub
}

// normalizeType expands a shorthand into a full media type. Names already
// containing a slash pass through lowercased; unknown shorthands stay as-is
// and simply never match.
func normalizeType(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if strings.Contains(name, "/") {
		return name
	}
	if full, ok := typeShorthands[name]; ok {
		return full
	}
	return name
}

// mediaType strips parameters from a Content-Type header value.
func mediaType(header string) string {
	value, _, _ := strings.Cut(header, ";")
	return strings.ToLower(strings.TrimSpace(value))
}
