package request

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

// fakeConfig is a map-backed ConfigReader for tests.
type fakeConfig map[string]any

func (f fakeConfig) Get(key string, def ...any) any {
	if value, ok := f[key]; ok {
		return value
	}
	if len(def) > 0 {
		return def[0]
	}
	return nil
}

// newFacade builds a facade around a synthetic request with no config and
// no session attached.
func newFacade(method, target string) (*Request, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, target, nil)
	return New(w, r, nil, nil), w
}

func TestRequest_Method_Uppercase(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Method = "patch"
	req := New(w, r, nil, nil)

	if got := req.Method(); got != "PATCH" {
		t.Errorf("Method() = %q, want PATCH", got)
	}
}

func TestRequest_PathAndOriginalURL(t *testing.T) {
	t.Parallel()

	req, _ := newFacade(http.MethodGet, "/users?page=2")
	if got := req.Path(); got != "/users" {
		t.Errorf("Path() = %q, want /users", got)
	}
	if got := req.OriginalURL(); got != "/users?page=2" {
		t.Errorf("OriginalURL() = %q, want /users?page=2", got)
	}
}

func TestRequest_Header_Default(t *testing.T) {
	t.Parallel()

	req, _ := newFacade(http.MethodGet, "/")
	req.Raw().Header.Set("X-Custom", "set")

	if got := req.Header("X-Custom"); got != "set" {
		t.Errorf("Header(X-Custom) = %q, want set", got)
	}
	if got := req.Header("X-Missing"); got != "" {
		t.Errorf("Header(X-Missing) = %q, want empty", got)
	}
	if got := req.Header("X-Missing", "fallback"); got != "fallback" {
		t.Errorf("Header(X-Missing, fallback) = %q, want fallback", got)
	}
}

func TestRequest_Hostname_TrustProxy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		trustProxy bool
		forwarded  string
		want       string
	}{
		{"no trust ignores forwarded host", false, "evil.example.com", "app.example.com"},
		{"trust honors forwarded host", true, "upstream.example.com", "upstream.example.com"},
		{"trust without forwarded host falls back", true, "", "app.example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://app.example.com:8080/", nil)
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-Host", tt.forwarded)
			}
			req := New(w, r, fakeConfig{"http.trustProxy": tt.trustProxy}, nil)

			if got := req.Hostname(); got != tt.want {
				t.Errorf("Hostname() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequest_IP_TrustProxy(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:41234"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 198.51.100.2, 10.0.0.9")

	untrusted := New(w, r, nil, nil)
	if got := untrusted.IP(); got != "10.0.0.9" {
		t.Errorf("IP() without trust = %q, want peer 10.0.0.9", got)
	}
	if got := untrusted.IPs(); !reflect.DeepEqual(got, []string{"10.0.0.9"}) {
		t.Errorf("IPs() without trust = %v, want [10.0.0.9]", got)
	}

	trusted := New(w, r, fakeConfig{"http.trustProxy": true}, nil)
	if got := trusted.IP(); got != "203.0.113.7" {
		t.Errorf("IP() with trust = %q, want left-most 203.0.113.7", got)
	}
	want := []string{"203.0.113.7", "198.51.100.2", "10.0.0.9"}
	if got := trusted.IPs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IPs() with trust = %v, want %v", got, want)
	}
}

func TestRequest_IPs_EmptyForwardedFallsBack(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.4:9999"
	r.Header.Set("X-Forwarded-For", " , ")
	req := New(w, r, fakeConfig{"http.trustProxy": true}, nil)

	if got := req.IPs(); !reflect.DeepEqual(got, []string{"192.0.2.4"}) {
		t.Errorf("IPs() = %v, want peer fallback", got)
	}
}

func TestRequest_Subdomains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want []string
	}{
		{"virk.adonisjs.com", []string{"virk"}},
		{"www.adonisjs.com", nil},
		{"eu.api.example.com", []string{"eu", "api"}},
		{"example.com", nil},
		{"192.0.2.10", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://"+tt.host+"/", nil)
			req := New(w, r, nil, nil)

			got := req.Subdomains()
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Subdomains(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestRequest_Subdomains_ConfiguredOffset(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://virk.adonisjs.co.uk/", nil)
	req := New(w, r, fakeConfig{"http.subdomainOffset": 3}, nil)

	if got := req.Subdomains(); !reflect.DeepEqual(got, []string{"virk"}) {
		t.Errorf("Subdomains() = %v, want [virk]", got)
	}
}

func TestRequest_AJAX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  bool
	}{
		{"XMLHttpRequest", true},
		{"xmlhttprequest", true},
		{"fetch", false},
		{"", false},
	}

	for _, tt := range tests {
		tt := tt
		req, _ := newFacade(http.MethodGet, "/")
		if tt.value != "" {
			req.Raw().Header.Set("X-Requested-With", tt.value)
		}
		if got := req.AJAX(); got != tt.want {
			t.Errorf("AJAX() with %q = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestRequest_PJAX(t *testing.T) {
	t.Parallel()

	req, _ := newFacade(http.MethodGet, "/")
	if req.PJAX() {
		t.Error("PJAX() without header should be false")
	}
	req.Raw().Header.Set("X-PJAX", "true")
	if !req.PJAX() {
		t.Error("PJAX() with header should be true")
	}
}

func TestRequest_Secure(t *testing.T) {
	t.Parallel()

	req, _ := newFacade(http.MethodGet, "/")
	if req.Secure() {
		t.Error("Secure() without TLS should be false")
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
	r.TLS = &tls.ConnectionState{}
	if !New(w, r, nil, nil).Secure() {
		t.Error("Secure() with TLS state should be true")
	}
}
