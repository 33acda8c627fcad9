package sapling

import (
	"gopkg.in/yaml.v3"
)

// Primitive type names used in type definitions.
const (
	TypeBoolean = "boolean"
	TypeString  = "string"
	TypeNumber  = "number"
)

// TypeDefinitions maps a layer kind to the shape of its payload. A shape is
// a primitive name, a map of field names to shapes, or a slice of shapes.
type TypeDefinitions map[string]any

// YAML renders the definitions for external tooling.
func (d TypeDefinitions) YAML() ([]byte, error) {
	return yaml.Marshal(map[string]any(d))
}

// LayerDefinitions collects the type definitions of every known layer kind.
// Handlers run synchronously in registration order; a later handler may
// overwrite an earlier one's entry.
func (e *Engine) LayerDefinitions() TypeDefinitions {
	defs := make(TypeDefinitions)
	for _, fn := range e.typeHooks.snapshot() {
		fn(defs)
	}
	return defs
}
