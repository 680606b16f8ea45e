package request

import (
	"errors"
	"reflect"
)

// FlashSlot is the conventional session slot flash data travels in.
const FlashSlot = "flash_messages"

var (
	// ErrInvalidFlashPayload is returned by Flash when the payload is not
	// a plain string-keyed mapping.
	ErrInvalidFlashPayload = errors.New("request: flash payload must be a string-keyed map")

	// ErrNoSession is returned by the flash operations when no session
	// manager was attached to the exchange.
	ErrNoSession = errors.New("request: no session manager attached")
)

// Old returns a value flashed by the previous request, or the supplied
// default (nil if none) when absent. The first call pulls the flash slot
// from the session — clearing it there, so the data is seen by exactly one
// request — and later calls reuse the pulled mapping without touching the
// session again.
func (r *Request) Old(key string, def ...any) (any, error) {
	if !r.flashRead {
		if err := r.pullFlash(); err != nil {
			return nil, err
		}
	}
	if value, ok := r.flash[key]; ok {
		return value, nil
	}
	if len(def) > 0 {
		return def[0], nil
	}
	return nil, nil
}

// Flash stores data in the session's flash slot for the next request,
// typically read after a redirect. The payload must be a plain string-keyed
// mapping; anything else fails with ErrInvalidFlashPayload before any
// session write happens.
func (r *Request) Flash(data any) error {
	payload, ok := flashPayload(data)
	if !ok {
		return ErrInvalidFlashPayload
	}
	if r.sess == nil {
		return ErrNoSession
	}
	return r.sess.Put(r.req.Context(), FlashSlot, payload)
}

// FlashAll flashes the full merged query/body view.
func (r *Request) FlashAll() error {
	return r.Flash(r.All())
}

// FlashOnly flashes the given keys of the merged view.
func (r *Request) FlashOnly(keys ...string) error {
	return r.Flash(r.Only(keys...))
}

// FlashExcept flashes the merged view without the given keys.
func (r *Request) FlashExcept(keys ...string) error {
	return r.Flash(r.Except(keys...))
}

// pullFlash performs the one read-and-clear session round trip per exchange.
func (r *Request) pullFlash() error {
	r.flash = make(map[string]any)
	r.flashRead = true
	if r.sess == nil {
		return nil
	}
	pulled, err := r.sess.Pull(r.req.Context(), FlashSlot, nil)
	if err != nil {
		return err
	}
	if mapping, ok := flashPayload(pulled); ok {
		r.flash = mapping
	}
	return nil
}

// flashPayload normalizes a value into the plain mapping flash data must
// be. Scalars, sequences, and maps with non-string keys are rejected.
func flashPayload(data any) (map[string]any, bool) {
	switch m := data.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	}

	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
