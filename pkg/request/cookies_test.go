package request

import (
	"net/http"
	"testing"
)

func TestRequest_Cookies(t *testing.T) {
	t.Parallel()

	req, _ := newFacade(http.MethodGet, "/")
	req.Raw().AddCookie(&http.Cookie{Name: "cart", Value: "abc123"})
	req.Raw().AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

	cookies := req.Cookies()
	if cookies["cart"] != "abc123" || cookies["theme"] != "dark" {
		t.Errorf("Cookies() = %v", cookies)
	}
}

// The cookie cache is an owned mutable map: entries added after the first
// parse must survive subsequent reads.
func TestRequest_Cookies_CacheCoherence(t *testing.T) {
	t.Parallel()

	req, _ := newFacade(http.MethodGet, "/")
	req.Raw().AddCookie(&http.Cookie{Name: "cart", Value: "abc123"})

	req.Cookies()["added"] = "later"

	again := req.Cookies()
	if again["added"] != "later" {
		t.Error("mutation of the cookie cache was lost on re-read")
	}
	if again["cart"] != "abc123" {
		t.Error("original cookie lost after mutation")
	}
}

func TestRequest_Cookie_Default(t *testing.T) {
	t.Parallel()

	req, _ := newFacade(http.MethodGet, "/")
	if got := req.Cookie("missing"); got != "" {
		t.Errorf("Cookie(missing) = %q, want empty", got)
	}
	if got := req.Cookie("missing", "guest"); got != "guest" {
		t.Errorf("Cookie(missing, guest) = %q, want guest", got)
	}
}
