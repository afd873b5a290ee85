package remote

import (
	"fmt"
	"sort"
)

// Factory builds a Provider from a stored access token.
type Factory func(token string) Provider

// Registry manages provider creation by backend kind.
type Registry struct {
	factories map[Kind]Factory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Kind]Factory),
	}
}

// Register adds a provider factory for a backend kind.
func (r *Registry) Register(kind Kind, factory Factory) {
	r.factories[kind] = factory
}

// New builds a provider for the given kind.
func (r *Registry) New(kind Kind, token string) (Provider, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
	return factory(token), nil
}

// Kinds returns the registered backend kinds in stable order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
