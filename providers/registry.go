package providers

import "github.com/lytixlabs/optimodel/schemas"

// Registry is the process-wide, read-only-after-construction map from
// ProviderId to its adapter instance (spec.md §6: adapters are immutable
// process-wide singletons sharing a single HTTP connection pool).
type Registry struct {
	byID map[schemas.ProviderId]schemas.Provider
}

// NewRegistry builds a Registry from a list of adapters, keyed by their own
// ProviderID().
func NewRegistry(adapters ...schemas.Provider) *Registry {
	r := &Registry{byID: make(map[schemas.ProviderId]schemas.Provider, len(adapters))}
	for _, a := range adapters {
		r.byID[a.ProviderID()] = a
	}
	return r
}

// Get returns the adapter registered for id, if any.
func (r *Registry) Get(id schemas.ProviderId) (schemas.Provider, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// All returns every registered adapter, used for startup Validate() sweeps.
func (r *Registry) All() []schemas.Provider {
	out := make([]schemas.Provider, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out
}
