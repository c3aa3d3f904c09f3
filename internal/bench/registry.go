package bench

import (
	"errors"
	"fmt"

	"lyricbench/pkg/timing"
)

var (
	ErrUnknownProvider   = errors.New("bench: unknown provider")
	ErrDuplicateProvider = errors.New("bench: duplicate provider")
	ErrEmptyRegistry     = errors.New("bench: no providers registered")
)

// Provider is a lookup strategy under test. Query calls onMatch once per line
// containing position, in corpus order, and returns when done. The engine
// calls Query from many goroutines at once, so implementations must be safe
// for concurrent use.
type Provider interface {
	Query(position int64, onMatch func(timing.Interval))
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(position int64, onMatch func(timing.Interval))

func (f ProviderFunc) Query(position int64, onMatch func(timing.Interval)) { f(position, onMatch) }

// Factory builds a provider over a shared, read-only corpus.
type Factory func(corpus []timing.Line) Provider

// Instance is a provider built for one run.
type Instance struct {
	Name     string
	Provider Provider
}

type entry struct {
	name    string
	factory Factory
}

// Registry maps provider names to factories, preserving registration order.
// The first registered provider is the baseline.
type Registry struct {
	entries []entry
	index   map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("bench: provider needs a name and a factory")
	}
	if _, ok := r.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, name)
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, entry{name: name, factory: factory})
	return nil
}

// MustRegister is Register that panics, for static wiring.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Names returns provider names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of registered providers.
func (r *Registry) Len() int { return len(r.entries) }

// Baseline returns the name of the first registered provider.
func (r *Registry) Baseline() (string, error) {
	if len(r.entries) == 0 {
		return "", ErrEmptyRegistry
	}
	return r.entries[0].name, nil
}

// Select returns a registry holding only names, in the order given; the
// first name becomes the baseline.
func (r *Registry) Select(names ...string) (*Registry, error) {
	sub := NewRegistry()
	for _, name := range names {
		i, ok := r.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
		}
		if err := sub.Register(name, r.entries[i].factory); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// Build runs every factory against corpus.
func (r *Registry) Build(corpus []timing.Line) ([]Instance, error) {
	if len(r.entries) == 0 {
		return nil, ErrEmptyRegistry
	}
	instances := make([]Instance, 0, len(r.entries))
	for _, e := range r.entries {
		p := e.factory(corpus)
		if p == nil {
			return nil, fmt.Errorf("bench: factory %s returned no provider", e.name)
		}
		instances = append(instances, Instance{Name: e.name, Provider: p})
	}
	return instances, nil
}
