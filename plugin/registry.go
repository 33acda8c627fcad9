// Package plugin orders and instantiates named extension modules by their
// declared requirements.
//
// Modules are registered with a Registry under a stable name. Order
// produces a load order in which every module follows all of its
// requirements, and Load runs the loaders in that order, handing each one
// the modules instantiated so far.
//
//	reg := plugin.NewRegistry()
//	_ = reg.Register("core", plugin.Registration{Load: loadCore})
//	_ = reg.Register("text", plugin.Registration{Requires: []string{"core"}, Load: loadText})
//	modules, err := plugin.LoadRequired(ctx, reg, []string{"core", "text"})
package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrModuleExists       = errors.New("module already registered")
	ErrNilLoader          = errors.New("module loader is nil")
	ErrInvalidName        = errors.New("invalid module name")
	ErrMissingDependency  = errors.New("requesting not present dependency")
	ErrCircularDependency = errors.New("infinite dependency detected")
	ErrModuleNotPresent   = errors.New("module is not present")
)

// Modules holds instantiated modules by name.
type Modules map[string]any

// Loader instantiates a module. loaded holds every module instantiated
// before it, which always includes its requirements.
type Loader func(ctx context.Context, loaded Modules) (any, error)

// Registration declares one module.
type Registration struct {
	Requires []string
	Load     Loader
	Version  string
}

// Named is a Registration together with its name, as produced by Order.
type Named struct {
	Name string
	Registration
}

// Registry stores module registrations by name, remembering registration
// order so ordering is deterministic.
type Registry struct {
	mu    sync.RWMutex
	names []string
	items map[string]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Registration)}
}

// Register adds a module.
func (r *Registry) Register(name string, reg Registration) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if reg.Load == nil {
		return fmt.Errorf("%w: %s", ErrNilLoader, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[name]; ok {
		return fmt.Errorf("%w: %s", ErrModuleExists, name)
	}
	r.items[name] = reg
	r.names = append(r.names, name)
	return nil
}

// Resolve returns the registration stored under name.
func (r *Registry) Resolve(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.items[name]
	return reg, ok
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Select returns a registry holding only the named modules, in the given
// order. A name missing from r fails with ErrModuleNotPresent.
func (r *Registry) Select(required []string) (*Registry, error) {
	sub := NewRegistry()
	for _, name := range required {
		reg, ok := r.Resolve(name)
		if !ok {
			return nil, fmt.Errorf("module %s: %w, cannot instantiate the engine", name, ErrModuleNotPresent)
		}
		if _, dup := sub.items[name]; dup {
			continue
		}
		sub.items[name] = reg
		sub.names = append(sub.names, name)
	}
	return sub, nil
}

func (r *Registry) snapshot() ([]string, map[string]Registration) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make(map[string]Registration, len(r.items))
	for k, v := range r.items {
		items[k] = v
	}
	return append([]string(nil), r.names...), items
}
