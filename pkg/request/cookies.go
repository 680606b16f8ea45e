package request

// Cookies returns the cookie mapping, parsed once from the Cookie header.
// The returned map is the owned cache: entries added or changed by the
// caller are visible on every subsequent call, no re-parse overwrites them.
func (r *Request) Cookies() map[string]string {
	if !r.cookieParsed {
		r.cookies = make(map[string]string)
		for _, cookie := range r.req.Cookies() {
			r.cookies[cookie.Name] = cookie.Value
		}
		r.cookieParsed = true
	}
	return r.cookies
}

// Cookie returns a single cookie value, or the supplied default (empty
// string if none) when the cookie is absent.
func (r *Request) Cookie(name string, def ...string) string {
	if value, ok := r.Cookies()[name]; ok {
		return value
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}
