package request

import "strings"

// Match reports whether the request path matches any of the given route
// patterns. Patterns use :param placeholders that match exactly one path
// segment; matching is a logical OR across all supplied patterns.
func (r *Request) Match(patterns ...string) bool {
	path := splitPath(r.Path())
	for _, pattern := range patterns {
		if segmentsMatch(splitPath(pattern), path) {
			return true
		}
	}
	return false
}

// splitPath breaks a path into segments, ignoring leading, trailing, and
// duplicate slashes.
func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// segmentsMatch compares a pattern segment list against a path segment list.
// A :param pattern segment matches any single non-empty path segment.
func segmentsMatch(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if seg != path[i] {
			return false
		}
	}
	return true
}
