package knowledge

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownDomain is returned when a lookup names a domain that was never
// registered. Fatal for the calling request.
var ErrUnknownDomain = errors.New("unknown domain")

// Registry maps domain identifiers to finalized knowledge bases.
//
// Registration is explicit and happens at process start; after that the
// registry is read-only and safe for unsynchronized concurrent reads. The
// mutex only guards against racy startup code.
type Registry struct {
	mu    sync.RWMutex
	bases map[Domain]*KnowledgeBase
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bases: make(map[Domain]*KnowledgeBase)}
}

// Register finalizes kb (building lookup indexes and checking invariants)
// and adds it under its domain. Registering a duplicate domain or a
// structurally invalid knowledge base is a fatal configuration error.
func (r *Registry) Register(kb *KnowledgeBase) error {
	if kb == nil {
		return fmt.Errorf("nil knowledge base")
	}
	if err := kb.finalize(); err != nil {
		return fmt.Errorf("register %s: %w", kb.Domain, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bases[kb.Domain]; exists {
		return fmt.Errorf("register %s: domain already registered", kb.Domain)
	}
	r.bases[kb.Domain] = kb
	return nil
}

// Get returns the knowledge base for domain, or ErrUnknownDomain.
func (r *Registry) Get(domain Domain) (*KnowledgeBase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kb, ok := r.bases[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}
	return kb, nil
}

// Domains lists the registered domains in sorted order.
func (r *Registry) Domains() []Domain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Domain, 0, len(r.bases))
	for domain := range r.bases {
		out = append(out, domain)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NewBuiltinRegistry returns a registry preloaded with the five built-in
// domains. Panics on a built-in definition error, which would be a bug in
// this package rather than caller input.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, kb := range BuiltinBases() {
		if err := r.Register(kb); err != nil {
			panic(fmt.Sprintf("builtin knowledge base: %v", err))
		}
	}
	return r
}
