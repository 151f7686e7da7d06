package field

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-intake/pkg/schema"
)

// Registry stores handlers by kind.
type Registry struct {
	mu       sync.RWMutex
	handlers map[schema.Kind]Handler
}

// NewRegistry returns a registry with the built-in kinds registered.
func NewRegistry() *Registry {
	reg := &Registry{handlers: make(map[schema.Kind]Handler)}
	for _, h := range Builtins() {
		reg.MustRegister(h)
	}
	return reg
}

// Register adds a handler. Duplicate kinds return an error.
func (r *Registry) Register(h Handler) error {
	kind := schema.Kind(strings.TrimSpace(string(h.Kind)))
	if kind == "" {
		return fmt.Errorf("field: handler kind is required")
	}
	if h.Control == "" {
		return fmt.Errorf("field: handler %q has no control", kind)
	}
	h.Kind = kind

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[kind]; exists {
		return fmt.Errorf("field: kind %q already registered", kind)
	}
	r.handlers[kind] = h
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(h Handler) {
	if err := r.Register(h); err != nil {
		panic(err)
	}
}

// Lookup returns the handler registered for kind.
func (r *Registry) Lookup(kind schema.Kind) (Handler, bool) {
	if r == nil {
		return Handler{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	return h, ok
}

// Resolve returns the handler for kind, or the unsupported placeholder.
func (r *Registry) Resolve(kind schema.Kind) Handler {
	if h, ok := r.Lookup(kind); ok {
		return h
	}
	return Unsupported(kind)
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []schema.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schema.Kind, 0, len(r.handlers))
	for kind := range r.handlers {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
