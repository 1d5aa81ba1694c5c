// Package registry stores registered expectations for the lifetime of one
// stubbed client instance.
package registry

import (
	"strings"
	"sync"

	"github.com/getstubd/stubd/pkg/stub"
)

// Registry is an append-only multimap of expectations keyed by
// (method, normalized template). One registry belongs to exactly one test's
// stubbed client and is discarded with it; the mutex only guards against a
// test that accidentally registers from another goroutine.
type Registry struct {
	mu    sync.RWMutex
	order []*stub.Expectation
	byKey map[key][]*stub.Expectation
}

type key struct {
	method   string
	template string
}

func keyFor(method, normalizedTemplate string) key {
	return key{method: strings.ToUpper(method), template: normalizedTemplate}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byKey: make(map[key][]*stub.Expectation)}
}

// Register appends an expectation. Duplicate (method, template) keys are
// legal; callers disambiguate with predicates, and among full matches the
// first registration wins.
func (r *Registry) Register(e *stub.Expectation) {
	if e == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyFor(e.Method, e.NormalizedTemplate)
	r.order = append(r.order, e)
	r.byKey[k] = append(r.byKey[k], e)
}

// CandidatesFor returns every expectation sharing the key, in registration
// order. The returned slice is a copy; callers may not mutate entries.
func (r *Registry) CandidatesFor(method, normalizedTemplate string) []*stub.Expectation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.byKey[keyFor(method, normalizedTemplate)]
	if len(entries) == 0 {
		return nil
	}
	out := make([]*stub.Expectation, len(entries))
	copy(out, entries)
	return out
}

// All returns every registered expectation in registration order.
func (r *Registry) All() []*stub.Expectation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*stub.Expectation, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered expectations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear removes every expectation.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.byKey = make(map[key][]*stub.Expectation)
}
