// Package session provides the session collaborators of the request facade:
// a Manager interface for slot-based read-and-clear access, and drivers that
// back it with a signed cookie or process memory.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/corbelhq/corbel/pkg/config"
)

// DefaultCookieName is the session cookie name when none is configured.
const DefaultCookieName = "corbel_session"

// ErrMissingAppKey is returned when the cookie driver is selected without an
// application key to sign with.
var ErrMissingAppKey = errors.New("session: app.key is required for the cookie driver")

// Manager reads and writes named slots of one client's session. Pull is
// destructive: the slot is cleared as part of the read, so a value is
// observed by at most one request. Both operations may perform I/O and take
// the request context.
type Manager interface {
	// Pull returns the value stored in slot and removes it from the
	// session. When the slot is absent, fallback is returned.
	Pull(ctx context.Context, slot string, fallback any) (any, error)

	// Put stores value in slot for retrieval on a subsequent request.
	Put(ctx context.Context, slot string, value any) error
}

// Store creates per-exchange session managers. Implementations live for the
// whole process; the managers they hand out are bound to one
// request/response pair and must not outlive it.
type Store interface {
	Bind(w http.ResponseWriter, r *http.Request) Manager
}

// New builds the session store selected by the session.driver config key.
// Supported drivers: "cookie" (default) and "memory".
func New(cfg *config.Store) (Store, error) {
	driver, _ := cfg.Get("session.driver", "cookie").(string)
	name, _ := cfg.Get("session.cookieName", DefaultCookieName).(string)
	if name == "" {
		name = DefaultCookieName
	}

	switch driver {
	case "cookie":
		key, _ := cfg.Get("app.key").(string)
		if key == "" {
			return nil, ErrMissingAppKey
		}
		return NewCookieStore(name, []byte(key)), nil
	case "memory":
		return NewMemoryStore(name), nil
	default:
		return nil, fmt.Errorf("session: unknown driver %q", driver)
	}
}
