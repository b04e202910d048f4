// Package registry maps job-type names to handler functions.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/schemadoc/schemadoc/internal/domain"
)

// Handler executes one job. It receives the job's config payload and
// returns a result payload, or an error that becomes the execution's
// terminal error.
type Handler func(ctx context.Context, config domain.Payload) (domain.Payload, error)

// Registry holds job-type handlers. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func New() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register stores a handler under a type name. Re-registering a name
// overwrites the previous handler silently; the last registration wins.
func (r *Registry) Register(typeName string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[typeName] = handler
}

// Lookup returns the handler registered under typeName.
func (r *Registry) Lookup(typeName string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[typeName]
	if !ok {
		return nil, fmt.Errorf("no handler registered for job type %q", typeName)
	}
	return h, nil
}

// Has reports whether a handler is registered under typeName.
func (r *Registry) Has(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[typeName]
	return ok
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
