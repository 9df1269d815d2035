package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry dispatches on provider id. Adapters are resolved once per call
// through the registry instead of switching on provider strings inside the
// engine.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	defaultID string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider, replacing any previous one with the same id.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID()] = p
}

// SetDefault configures the provider used for unqualified package names.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return NewError(CodeProviderUnavailable, id, "",
			fmt.Sprintf("cannot set default: provider %q not registered", id))
	}
	r.defaultID = id
	return nil
}

// Get returns the provider with the given id.
func (r *Registry) Get(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, NewError(CodeProviderUnavailable, id, "",
			fmt.Sprintf("provider %q not registered", id))
	}
	return p, nil
}

// Resolve returns the provider for a spec, filling in the default provider
// for unqualified names. Unqualified names with no default configured are
// an InvalidPackageSpec error: the default is explicit configuration, never
// a guess.
func (r *Registry) Resolve(spec Spec) (Provider, Spec, error) {
	if spec.Provider == "" {
		r.mu.RLock()
		defaultID := r.defaultID
		r.mu.RUnlock()

		if defaultID == "" {
			return nil, spec, NewError(CodeInvalidPackageSpec, "", spec.Name,
				"unqualified package name and no default provider configured")
		}
		spec.Provider = defaultID
	}

	p, err := r.Get(spec.Provider)
	if err != nil {
		return nil, spec, err
	}
	return p, spec, nil
}

// All returns registered providers sorted by id.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Provider, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.providers[id])
	}
	return out
}
