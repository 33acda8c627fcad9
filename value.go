package sapling

import (
	"context"
	"fmt"
)

// Resolver computes a field value while a layer is being cloned. It may
// block (measure text, wait on an asset) and receives the layer that owns the
// field.
type Resolver[T any] func(ctx context.Context, rc *RenderContext, owner *Node) (T, error)

// Field holds either a literal value or a deferred resolver. The computed
// counterpart of a layer only ever holds literals.
type Field[T any] struct {
	value   T
	resolve Resolver[T]
}

// Lit returns a field holding v.
func Lit[T any](v T) Field[T] {
	return Field[T]{value: v}
}

// Defer returns a field resolved by fn during cloning.
func Defer[T any](fn Resolver[T]) Field[T] {
	return Field[T]{resolve: fn}
}

// Get returns the literal value. Deferred fields report the zero value until
// cloned.
func (f Field[T]) Get() T {
	return f.value
}

// IsDeferred reports whether the field still needs resolving.
func (f Field[T]) IsDeferred() bool {
	return f.resolve != nil
}

func (f Field[T]) resolved(ctx context.Context, rc *RenderContext, owner *Node) (Field[T], error) {
	if f.resolve == nil {
		return f, nil
	}
	v, err := f.resolve(ctx, rc, owner)
	if err != nil {
		return Field[T]{}, err
	}
	return Lit(v), nil
}

// ValueResolver is the untyped Resolver used inside layer payloads.
type ValueResolver = Resolver[any]

// Value is one payload entry: a literal or a deferred resolver. Literal
// composites are *Object, List and *Node; cloning descends into them.
type Value struct {
	lit     any
	resolve ValueResolver
}

// ValueOf wraps a literal.
func ValueOf(v any) Value {
	if vv, ok := v.(Value); ok {
		return vv
	}
	return Value{lit: v}
}

// Deferred wraps a resolver.
func Deferred(fn ValueResolver) Value {
	return Value{resolve: fn}
}

// Get returns the literal, or nil for an unresolved deferred value.
func (v Value) Get() any {
	return v.lit
}

// IsDeferred reports whether v still needs resolving.
func (v Value) IsDeferred() bool {
	return v.resolve != nil
}

// IsZero reports whether v holds nothing at all.
func (v Value) IsZero() bool {
	return v.lit == nil && v.resolve == nil
}

// Object returns the literal as *Object, or nil.
func (v Value) Object() *Object {
	o, _ := v.lit.(*Object)
	return o
}

// List is an ordered payload sequence. Lists have no identity of their own
// and are cloned wherever they appear.
type List []Value

// Object is an ordered record of payload values. Objects have identity: an
// object shared by several layers is cloned once per pass.
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// ObjectOf builds an object from alternating key/value arguments.
// Panics on an odd argument count or a non-string key.
func ObjectOf(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("sapling: ObjectOf needs key/value pairs")
	}
	o := NewObject()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("sapling: ObjectOf key %v is not a string", kv[i]))
		}
		o.Set(key, ValueOf(kv[i+1]))
	}
	return o
}

// Set stores v under key, keeping first-insertion order.
func (o *Object) Set(key string, v Value) *Object {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Lookup returns the literal stored under key, or nil.
func (o *Object) Lookup(key string) any {
	return o.vals[key].lit
}

// Delete removes key.
func (o *Object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			return
		}
	}
}

// Keys returns keys in insertion order. The returned slice MUST NOT be mutated.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.keys)
}
