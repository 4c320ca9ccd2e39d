// Package access wraps host runtime values behind a query surface that
// never runs script-defined code it has not classified as safe.
//
// Every wrapper belongs to a Session. A session caches one wrapper per live
// value identity and is single-writer: callers serialize all operations on
// one session and its wrappers.
package access

import (
	"math"
	"reflect"

	"github.com/google/uuid"

	"objscope/internal/logging"
	"objscope/internal/metrics"
	"objscope/internal/object"
)

// identity is the cache key of a value. Pointer-backed values are keyed by
// address, floats by bit pattern and other comparable payloads by value.
type identity struct {
	typ  reflect.Type
	ptr  uintptr
	bits uint64
	val  interface{}
}

// identityOf returns the key for o. Values with neither an address nor a
// comparable payload have no identity.
func identityOf(o object.Object) (identity, bool) {
	if o == nil {
		return identity{}, false
	}
	rv := reflect.ValueOf(o)
	key := identity{typ: rv.Type()}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		key.ptr = rv.Pointer()
		return key, true
	case reflect.Float32, reflect.Float64:
		key.bits = math.Float64bits(rv.Float())
		return key, true
	}
	if !rv.Type().Comparable() {
		return identity{}, false
	}
	key.val = o
	return key, true
}

type cacheEntry struct {
	access *Access
	// value pins the underlying object so its address cannot be reused by an
	// unrelated value while the entry exists.
	value object.Object
}

// Session owns the identity cache for one analysis pass.
type Session struct {
	ID string

	rt      *object.Runtime
	cache   map[identity]cacheEntry
	metrics *metrics.SessionMetrics
	log     *logging.SessionLogger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithMetrics records cache and guard activity on m.
func WithMetrics(m *metrics.SessionMetrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// WithID overrides the generated session ID.
func WithID(id string) SessionOption {
	return func(s *Session) { s.ID = id }
}

// NewSession starts a session over rt.
func NewSession(rt *object.Runtime, opts ...SessionOption) *Session {
	s := &Session{
		ID:    uuid.New().String(),
		rt:    rt,
		cache: make(map[identity]cacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.WithSession(logging.CategorySession, s.ID)
	s.log.Info("session started (host %s)", rt.Version)
	return s
}

// Runtime returns the host runtime the session inspects.
func (s *Session) Runtime() *object.Runtime { return s.rt }

// Len returns the number of cached wrappers.
func (s *Session) Len() int { return len(s.cache) }

// Access returns the wrapper for v, creating it on first use. Repeated calls
// with the same live value return the same wrapper.
func (s *Session) Access(v object.Object) *Access {
	key, ok := identityOf(v)
	if !ok {
		s.metrics.WrapperCreated()
		s.log.Debug("wrapping %T without identity", v)
		return &Access{s: s, obj: v}
	}
	if e, hit := s.cache[key]; hit {
		s.metrics.CacheHit()
		return e.access
	}
	a := &Access{s: s, obj: v}
	s.cache[key] = cacheEntry{access: a, value: v}
	s.metrics.WrapperCreated()
	return a
}
