package sapling

import (
	"context"

	"github.com/phanxgames/sapling/plugin"
)

// ModuleName is the name the engine registers under.
const ModuleName = "core"

// Version is reported in the core module registration.
const Version = "0.3.0"

// RegisterModule registers the core module with reg. Its loader builds an
// Engine from cfg; extension modules list ModuleName in Requires and find
// the *Engine in the loaded modules.
func RegisterModule(reg *plugin.Registry, cfg Config) error {
	return reg.Register(ModuleName, plugin.Registration{
		Version: Version,
		Load: func(ctx context.Context, _ plugin.Modules) (any, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return NewEngine(cfg), nil
		},
	})
}

// EngineFrom returns the core Engine from a set of loaded modules.
func EngineFrom(modules plugin.Modules) (*Engine, bool) {
	e, ok := modules[ModuleName].(*Engine)
	return e, ok
}
