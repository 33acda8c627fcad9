package plugin

import (
	"context"
	"fmt"
)

// Load instantiates sorted modules in order. Each loader sees the modules
// instantiated before it. The first failing loader aborts the load.
func Load(ctx context.Context, sorted []Named) (Modules, error) {
	modules := make(Modules, len(sorted))
	for _, m := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inst, err := m.Load(ctx, modules)
		if err != nil {
			return nil, fmt.Errorf("load module %s: %w", m.Name, err)
		}
		modules[m.Name] = inst
	}
	return modules, nil
}

// LoadRequired picks the required modules from r, orders them and loads
// them. Requirements of a required module must themselves be required.
func LoadRequired(ctx context.Context, r *Registry, required []string) (Modules, error) {
	sub, err := r.Select(required)
	if err != nil {
		return nil, err
	}
	sorted, err := Order(sub)
	if err != nil {
		return nil, err
	}
	return Load(ctx, sorted)
}
