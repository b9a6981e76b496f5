package ignore

import (
	"encoding"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/groupcache/lru"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheSize = 256
	defaultShards    = 16
)

// Engine builds handlers and memoizes them. Handlers requested with an equal
// attribute, equal list content and an equal default value are built once and
// shared until evicted. The cache only saves allocations: a handler served
// from it behaves exactly like a freshly built one.
//
// An Engine is safe for concurrent use. The package-level functions use the
// engine returned by Default.
type Engine struct {
	shards    []*shard
	cacheSize int
	group     singleflight.Group
	logger    *slog.Logger
}

// shard is one mutex-guarded LRU of handlers, keyed by the canonical key.
type shard struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// Option configures an Engine.
type Option func(*Engine)

// WithCacheSize sets the number of handlers kept per shard. n <= 0 keeps
// every handler ever built.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// WithShards sets the number of cache shards. n <= 0 disables the cache.
func WithShards(n int) Option {
	return func(e *Engine) {
		e.shards = make([]*shard, max(n, 0))
	}
}

// WithoutCache disables handler memoization; every factory call builds a new
// handler.
func WithoutCache() Option {
	return WithShards(0)
}

// WithLogger sets the logger receiving cache events at debug level. Handled
// errors are never logged.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		shards:    make([]*shard, defaultShards),
		cacheSize: defaultCacheSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	for i := range e.shards {
		s := &shard{cache: lru.New(e.cacheSize)}
		s.cache.OnEvicted = func(key lru.Key, _ any) {
			e.logger.Debug("ignore: handler evicted", slog.Any("key", key))
		}
		e.shards[i] = s
	}
	return e
}

var (
	defaultEngine atomic.Pointer[Engine]
	defaultOnce   sync.Once
)

// Default returns the engine used by the package-level functions, creating it
// with default options on first use.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine.CompareAndSwap(nil, New())
	})
	return defaultEngine.Load()
}

// SetDefault replaces the engine used by the package-level functions. A nil
// engine restores a fresh engine with default options.
func SetDefault(e *Engine) {
	if e == nil {
		e = New()
	}
	defaultOnce.Do(func() {})
	defaultEngine.Store(e)
}

// NewHandler returns a handler for attr that ignores the values in spec and
// returns def for the errors it ignores.
func (e *Engine) NewHandler(attr Attribute, spec any, def any) (*Handler, error) {
	list, err := NewList(spec)
	if err != nil {
		return nil, err
	}
	return e.handler(attr, list, def), nil
}

// Len returns the number of cached handlers.
func (e *Engine) Len() int {
	n := 0
	for _, s := range e.shards {
		s.mu.Lock()
		n += s.cache.Len()
		s.mu.Unlock()
	}
	return n
}

// Purge drops every cached handler.
func (e *Engine) Purge() {
	for _, s := range e.shards {
		s.mu.Lock()
		s.cache.Clear()
		s.mu.Unlock()
	}
}

// handler returns the cached handler for (attr, list, def), building it on a
// miss. Concurrent misses on one key build a single handler.
func (e *Engine) handler(attr Attribute, list List, def any) *Handler {
	if len(e.shards) == 0 {
		return newHandler(attr, list, def)
	}

	key, ok := cacheKey(attr, list, def)
	if !ok {
		e.logger.Debug("ignore: default value not cacheable",
			slog.String("attribute", string(attr)),
			slog.String("type", fmt.Sprintf("%T", def)))
		return newHandler(attr, list, def)
	}

	s := e.shards[xxhash.Sum64String(key)%uint64(len(e.shards))]
	if h, ok := s.get(key); ok {
		return h
	}

	v, _, _ := e.group.Do(key, func() (any, error) {
		if h, ok := s.get(key); ok {
			return h, nil
		}
		h := newHandler(attr, list, def)
		s.add(key, h)
		e.logger.Debug("ignore: handler cached", slog.String("key", key))
		return h, nil
	})
	return v.(*Handler)
}

func (s *shard) get(key string) (*Handler, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Handler), true
}

func (s *shard) add(key string, h *Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(key, h)
}

var keyCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// cacheKey serializes (attr, list, def). ok is false when def cannot be
// keyed faithfully, in which case the handler must not be shared.
func cacheKey(attr Attribute, list List, def any) (string, bool) {
	dk, ok := defaultKey(def)
	if !ok {
		return "", false
	}
	return string(attr) + "\x1f" + list.String() + "\x1f" + dk, true
}

func defaultKey(def any) (string, bool) {
	if def == nil {
		return "nil", true
	}
	t := reflect.TypeOf(def)
	if !plain(t) || !validText(reflect.ValueOf(def)) {
		return "", false
	}
	b, err := keyCodec.Marshal(def)
	if err != nil {
		return "", false
	}
	return typeKey(t) + ":" + string(b), true
}

var (
	typeIDs    sync.Map // reflect.Type -> uint64
	nextTypeID atomic.Uint64
)

// typeKey names t uniquely; t.String() alone conflates same-named types
// declared in different scopes.
func typeKey(t reflect.Type) string {
	id, ok := typeIDs.Load(t)
	if !ok {
		id, _ = typeIDs.LoadOrStore(t, nextTypeID.Add(1))
	}
	return t.String() + "#" + strconv.FormatUint(id.(uint64), 10)
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// plain reports whether values of t serialize to JSON without losing
// information or identity: scalars, and arrays and structs built only from
// them. Pointers, slices and maps are excluded because sharing a handler would
// hand one caller's instance to another. Struct fields must be exported, named
// and untagged so every field maps to its own JSON key.
func plain(t reflect.Type) bool {
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return false
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Array:
		return plain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if _, tagged := f.Tag.Lookup("json"); tagged || !f.IsExported() || f.Anonymous || !plain(f.Type) {
				return false
			}
		}
		return true
	}
	return false
}

// validText reports whether every string in v is valid UTF-8. JSON replaces
// invalid bytes with U+FFFD, which would give distinct strings one key.
func validText(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return utf8.ValidString(v.String())
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !validText(v.Index(i)) {
				return false
			}
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !validText(v.Field(i)) {
				return false
			}
		}
	}
	return true
}
