package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory, keyed by a random session ID
// cookie. Intended for tests and single-process deployments; state does not
// survive a restart.
type MemoryStore struct {
	mu         sync.Mutex
	sessions   map[string]map[string]any
	cookieName string
}

// NewMemoryStore creates an in-memory session store using the given cookie
// name for the session ID.
func NewMemoryStore(cookieName string) *MemoryStore {
	return &MemoryStore{
		sessions:   make(map[string]map[string]any),
		cookieName: cookieName,
	}
}

// Bind returns the session manager for one request/response exchange. A new
// session ID is minted and set on the response when the request carries none.
func (m *MemoryStore) Bind(w http.ResponseWriter, r *http.Request) Manager {
	var id string
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		id = cookie.Value
	}
	if id == "" {
		id = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return &memorySession{store: m, id: id}
}

type memorySession struct {
	store *MemoryStore
	id    string
}

func (s *memorySession) Pull(ctx context.Context, slot string, fallback any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	values, ok := s.store.sessions[s.id]
	if !ok {
		return fallback, nil
	}
	value, ok := values[slot]
	if !ok {
		return fallback, nil
	}
	delete(values, slot)
	if len(values) == 0 {
		delete(s.store.sessions, s.id)
	}
	return value, nil
}

func (s *memorySession) Put(ctx context.Context, slot string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	values, ok := s.store.sessions[s.id]
	if !ok {
		values = make(map[string]any)
		s.store.sessions[s.id] = values
	}
	values[slot] = value
	return nil
}
