package session

import (
	"errors"
	"testing"

	"github.com/corbelhq/corbel/pkg/config"
)

func TestNew_DriverSelection(t *testing.T) {
	t.Parallel()

	cfg := config.NewStore(t.TempDir())
	cfg.Set("session.driver", "memory")

	store, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("store = %T, want *MemoryStore", store)
	}
}

func TestNew_CookieDriverDefault(t *testing.T) {
	t.Parallel()

	cfg := config.NewStore(t.TempDir())
	cfg.Set("app.key", "secret")

	store, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := store.(*CookieStore); !ok {
		t.Errorf("store = %T, want *CookieStore", store)
	}
}

func TestNew_CookieDriverRequiresAppKey(t *testing.T) {
	t.Parallel()

	cfg := config.NewStore(t.TempDir())
	if _, err := New(cfg); !errors.Is(err, ErrMissingAppKey) {
		t.Errorf("New without app.key = %v, want ErrMissingAppKey", err)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	t.Parallel()

	cfg := config.NewStore(t.TempDir())
	cfg.Set("session.driver", "redis")
	if _, err := New(cfg); err == nil {
		t.Error("New with unknown driver should fail")
	}
}
