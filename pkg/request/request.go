// Package request wraps one HTTP request/response exchange behind a uniform
// input API: query string, pre-parsed body, route parameters, uploaded files,
// headers, cookies, content negotiation, proxy-aware address resolution, and
// flash data exchanged with a session store across a redirect.
package request

import (
	"net"
	"net/http"
	"strings"

	"github.com/corbelhq/corbel/pkg/session"
)

// Config keys read by the facade.
const (
	trustProxyKey      = "http.trustProxy"
	subdomainOffsetKey = "http.subdomainOffset"
)

// defaultSubdomainOffset is the number of trailing host labels that form the
// registrable base domain (example.com -> 2).
const defaultSubdomainOffset = 2

// ConfigReader is the slice of the configuration store the facade needs.
// Lookups never fail; an absent key yields the supplied default or nil.
type ConfigReader interface {
	Get(key string, def ...any) any
}

// Request wraps an inbound request and its response writer for the duration
// of one exchange. It is constructed per request, never shared across
// exchanges, and holds lazily parsed, mutable caches for query and cookies.
//
// Collaborators supply the rest: a body parser attaches parsed fields and
// files via SetBody/SetFiles, a router attaches matched parameters via
// SetParams, and a session manager backs the flash exchange.
type Request struct {
	req  *http.Request
	res  http.ResponseWriter
	cfg  ConfigReader
	sess session.Manager

	query        map[string]any
	queryParsed  bool
	body         map[string]any
	params       map[string]string
	uploads      []*File
	cookies      map[string]string
	cookieParsed bool
	flash        map[string]any
	flashRead    bool
}

// New creates the facade for one exchange. cfg and sess may be nil; a nil
// config disables proxy trust and a nil session manager makes the flash
// operations report ErrNoSession.
func New(w http.ResponseWriter, r *http.Request, cfg ConfigReader, sess session.Manager) *Request {
	return &Request{req: r, res: w, cfg: cfg, sess: sess}
}

// Raw returns the underlying *http.Request for interoperability with
// handlers that need it directly.
func (r *Request) Raw() *http.Request { return r.req }

// Response returns the response writer of this exchange.
func (r *Request) Response() http.ResponseWriter { return r.res }

// Method returns the uppercase HTTP verb.
func (r *Request) Method() string {
	return strings.ToUpper(r.req.Method)
}

// Path returns the request path without the query string.
func (r *Request) Path() string {
	return r.req.URL.Path
}

// OriginalURL returns the request target as received: path plus query string.
func (r *Request) OriginalURL() string {
	return r.req.RequestURI
}

// Headers returns the full header mapping as delivered by the transport.
func (r *Request) Headers() http.Header {
	return r.req.Header
}

// Header returns a single header value, or the supplied default (empty
// string if none) when the header is absent.
func (r *Request) Header(key string, def ...string) string {
	if value := r.req.Header.Get(key); value != "" {
		return value
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// Hostname returns the host name the request targets, without a port. When
// proxy trust is enabled, X-Forwarded-Host overrides the Host header.
func (r *Request) Hostname() string {
	host := r.req.Host
	if r.trustProxy() {
		if forwarded := r.req.Header.Get("X-Forwarded-Host"); forwarded != "" {
			host = forwarded
		}
	}
	return stripPort(host)
}

// IP returns the best-guess client address: the left-most X-Forwarded-For
// entry when proxy trust is enabled, otherwise the transport peer address.
func (r *Request) IP() string {
	ips := r.IPs()
	if len(ips) == 0 {
		return ""
	}
	return ips[0]
}

// IPs returns every address on the request path, client first. Without proxy
// trust it is a single-element list holding the peer address.
func (r *Request) IPs() []string {
	if r.trustProxy() {
		if forwarded := r.req.Header.Get("X-Forwarded-For"); forwarded != "" {
			parts := strings.Split(forwarded, ",")
			ips := make([]string, 0, len(parts))
			for _, part := range parts {
				if ip := strings.TrimSpace(part); ip != "" {
					ips = append(ips, ip)
				}
			}
			if len(ips) > 0 {
				return ips
			}
		}
	}
	return []string{stripPort(r.req.RemoteAddr)}
}

// Subdomains returns the host labels in front of the registrable base
// domain, most specific first, excluding the conventional www label. The
// base domain length is the http.subdomainOffset config key (default 2).
func (r *Request) Subdomains() []string {
	host := r.Hostname()
	if host == "" || net.ParseIP(host) != nil {
		return nil
	}

	offset := defaultSubdomainOffset
	if r.cfg != nil {
		if v, ok := asInt(r.cfg.Get(subdomainOffsetKey)); ok && v >= 0 {
			offset = v
		}
	}

	labels := strings.Split(host, ".")
	if len(labels) <= offset {
		return nil
	}
	subs := make([]string, 0, len(labels)-offset)
	for _, label := range labels[:len(labels)-offset] {
		if strings.EqualFold(label, "www") {
			continue
		}
		subs = append(subs, label)
	}
	return subs
}

// AJAX reports whether X-Requested-With equals xmlhttprequest, ignoring case.
func (r *Request) AJAX() bool {
	return strings.EqualFold(r.req.Header.Get("X-Requested-With"), "xmlhttprequest")
}

// PJAX reports whether the request carries an X-PJAX header.
func (r *Request) PJAX() bool {
	return r.req.Header.Get("X-PJAX") != ""
}

// Secure reports whether the transport is TLS-terminated at this process.
func (r *Request) Secure() bool {
	return r.req.TLS != nil
}

func (r *Request) trustProxy() bool {
	if r.cfg == nil {
		return false
	}
	trusted, _ := r.cfg.Get(trustProxyKey, false).(bool)
	return trusted
}

// stripPort removes a trailing :port from a host string, tolerating bare
// hosts and bracketed IPv6 literals.
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}

// asInt normalizes the numeric types a config store may hand back.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
