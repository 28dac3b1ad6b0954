package adapter

import "fmt"

// Registry resolves a retailer slug to its configured adapter, the composition root the
// driver's CLI entrypoint reaches into (spec §9: prefer composition over inheritance).
type Registry struct {
	adapters map[string]SourceAdapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: map[string]SourceAdapter{}}
}

func (r *Registry) Register(slug string, a SourceAdapter) {
	r.adapters[slug] = a
}

func (r *Registry) Get(slug string) (SourceAdapter, error) {
	a, ok := r.adapters[slug]
	if !ok {
		return nil, fmt.Errorf("adapter: unknown retailer slug %q", slug)
	}
	return a, nil
}
