package request

import "net/url"

// Query returns the parsed query-string mapping. Parsing happens once; the
// returned map is the owned cache, so mutations survive later calls. A URL
// without a query component yields an empty, non-nil map.
//
// Plain duplicate keys resolve last-wins; repeats of a key with a [] suffix
// group into an ordered []string under the bare key.
func (r *Request) Query() map[string]any {
	if !r.queryParsed {
		r.query = parseQuery(r.req.URL.RawQuery)
		r.queryParsed = true
	}
	return r.query
}

// Body returns the pre-parsed request body mapping attached by the body
// parser, or an empty map when none was attached.
func (r *Request) Body() map[string]any {
	if r.body == nil {
		r.body = make(map[string]any)
	}
	return r.body
}

// SetBody attaches the parsed body fields. Called by the body-parsing
// collaborator before input accessors run.
func (r *Request) SetBody(fields map[string]any) {
	r.body = fields
}

// Input returns the value for key from the merged body-then-query view; a
// key present in both resolves to the body's value. Absent keys yield the
// supplied default, or nil — never an error.
func (r *Request) Input(key string, def ...any) any {
	if value, ok := r.Body()[key]; ok {
		return value
	}
	if value, ok := r.Query()[key]; ok {
		return value
	}
	if len(def) > 0 {
		return def[0]
	}
	return nil
}

// All returns a shallow merge of query and body, body winning on collision.
func (r *Request) All() map[string]any {
	query, body := r.Query(), r.Body()
	all := make(map[string]any, len(query)+len(body))
	for k, v := range query {
		all[k] = v
	}
	for k, v := range body {
		all[k] = v
	}
	return all
}

// Only projects All onto the given keys. Keys with no value are skipped, not
// materialized as nil entries.
func (r *Request) Only(keys ...string) map[string]any {
	all := r.All()
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if value, ok := all[key]; ok {
			out[key] = value
		}
	}
	return out
}

// Except returns All without the given keys.
func (r *Request) Except(keys ...string) map[string]any {
	out := r.All()
	for _, key := range keys {
		delete(out, key)
	}
	return out
}

// Params returns the route parameters supplied by the router, or an empty
// map when none were attached.
func (r *Request) Params() map[string]string {
	if r.params == nil {
		r.params = make(map[string]string)
	}
	return r.params
}

// SetParams attaches the matched route parameters.
func (r *Request) SetParams(params map[string]string) {
	r.params = params
}

// Param returns a single route parameter, or the supplied default (empty
// string if none) when absent.
func (r *Request) Param(key string, def ...string) string {
	if value, ok := r.Params()[key]; ok {
		return value
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// parseQuery decodes a raw query string into the facade's query mapping.
// Malformed input decodes as far as possible and never fails.
func parseQuery(rawQuery string) map[string]any {
	if rawQuery == "" {
		return make(map[string]any)
	}
	values, _ := url.ParseQuery(rawQuery)
	return FormFields(values)
}

// FormFields converts URL-encoded values into the facade's field mapping:
// plain duplicate keys resolve last-wins, keys with a [] suffix group their
// values into an ordered []string under the bare key. Body parsers share
// this so form bodies and query strings follow the same conventions.
func FormFields(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if stripped, ok := cutArraySuffix(key); ok {
			out[stripped] = vals
			continue
		}
		out[key] = vals[len(vals)-1]
	}
	return out
}

func cutArraySuffix(key string) (string, bool) {
	if len(key) > 2 && key[len(key)-2:] == "[]" {
		return key[:len(key)-2], true
	}
	return key, false
}
