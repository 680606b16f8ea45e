package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
)

// slotEntry is the on-wire form of one session slot: the payload JSON-encoded
// as a string plus a coarse type tag used when decoding.
type slotEntry struct {
	D string `json:"d"`
	T string `json:"t"`
}

// CookieStore persists sessions in a single signed cookie per client. The
// cookie value is a URL-escaped JSON envelope of slot entries followed by a
// dot and an HMAC-SHA256 signature over the escaped envelope.
type CookieStore struct {
	name string
	key  []byte
}

// NewCookieStore creates a cookie-backed session store signing with appKey.
func NewCookieStore(name string, appKey []byte) *CookieStore {
	return &CookieStore{name: name, key: appKey}
}

// Bind returns the session manager for one request/response exchange.
func (c *CookieStore) Bind(w http.ResponseWriter, r *http.Request) Manager {
	return &cookieSession{store: c, w: w, r: r}
}

// cookieSession is bound to one exchange. Writes go out immediately as a
// Set-Cookie header, so they must happen before the response body is sent.
type cookieSession struct {
	store *CookieStore
	w     http.ResponseWriter
	r     *http.Request

	values map[string]slotEntry
}

func (s *cookieSession) Pull(ctx context.Context, slot string, fallback any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.load()

	entry, ok := s.values[slot]
	if !ok {
		return fallback, nil
	}
	delete(s.values, slot)
	if err := s.save(); err != nil {
		return nil, err
	}
	return decodeSlot(entry)
}

func (s *cookieSession) Put(ctx context.Context, slot string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.load()

	entry, err := encodeSlot(value)
	if err != nil {
		return err
	}
	s.values[slot] = entry
	return s.save()
}

// load parses the session cookie once per exchange. A missing cookie or a
// bad signature both mean an empty session, never an error.
func (s *cookieSession) load() {
	if s.values != nil {
		return
	}
	s.values = make(map[string]slotEntry)

	cookie, err := s.r.Cookie(s.store.name)
	if err != nil {
		return
	}
	escaped, ok := s.store.verify(cookie.Value)
	if !ok {
		return
	}
	raw, err := url.QueryUnescape(escaped)
	if err != nil {
		return
	}
	// A decode failure is treated like tampering: start fresh.
	_ = json.Unmarshal([]byte(raw), &s.values)
}

func (s *cookieSession) save() error {
	raw, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("session: failed to serialize cookie: %w", err)
	}
	escaped := url.QueryEscape(string(raw))
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.store.name,
		Value:    escaped + "." + s.store.sign(escaped),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// sign computes the base64url HMAC-SHA256 of the escaped envelope.
func (c *CookieStore) sign(escaped string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(escaped))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verify splits a cookie value into envelope and signature and checks the
// signature. Returns the escaped envelope and whether it is authentic.
func (c *CookieStore) verify(value string) (string, bool) {
	idx := strings.LastIndex(value, ".")
	if idx < 0 {
		return "", false
	}
	escaped, sig := value[:idx], value[idx+1:]
	want, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", false
	}
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(escaped))
	if !hmac.Equal(mac.Sum(nil), want) {
		return "", false
	}
	return escaped, true
}

// encodeSlot serializes a slot value with its type tag.
func encodeSlot(value any) (slotEntry, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return slotEntry{}, fmt.Errorf("session: failed to encode slot value: %w", err)
	}
	return slotEntry{D: string(payload), T: typeTag(value)}, nil
}

// decodeSlot restores a slot value from its wire form.
func decodeSlot(entry slotEntry) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(entry.D), &value); err != nil {
		return nil, fmt.Errorf("session: failed to decode slot value: %w", err)
	}
	return value, nil
}

// typeTag classifies a value for the envelope's "t" field.
func typeTag(value any) string {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Struct:
		return "Object"
	case reflect.Slice, reflect.Array:
		return "Array"
	case reflect.String:
		return "String"
	case reflect.Bool:
		return "Boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "Number"
	default:
		return "Object"
	}
}
