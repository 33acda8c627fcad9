package sapling

import (
	"context"
	"fmt"
	"sync"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog"
)

// Cloner builds computed counterparts of authoring layers. It resolves
// deferred fields, descends into composite payloads and records the
// original/clone association on both nodes.
type Cloner struct {
	mu     sync.RWMutex // guards Node.clone
	rc     *RenderContext
	logger zerolog.Logger
}

// NewCloner returns a cloner whose resolvers receive rc.
func NewCloner(rc *RenderContext, logger zerolog.Logger) *Cloner {
	return &Cloner{rc: rc, logger: logger}
}

// cloneMemo maps an original composite (*Node or *Object) to its clone for
// the duration of one Clone call.
type cloneMemo map[any]any

// Clone returns a computed copy of n with every deferred field resolved.
// Shared substructures are cloned once; the document and nodes that are
// already clones come back unchanged.
func (c *Cloner) Clone(ctx context.Context, n *Node) (*Node, error) {
	return c.cloneNode(ctx, n, cloneMemo{}, 0)
}

// IsClone reports whether n belongs to the computed tree.
func (c *Cloner) IsClone(n *Node) bool {
	return n.original != nil
}

// GetOriginal returns the authoring node n was cloned from, or n itself.
func (c *Cloner) GetOriginal(n *Node) *Node {
	if n.original != nil {
		return n.original
	}
	return n
}

// GetClone returns the latest clone of n, or n itself when none exists.
func (c *Cloner) GetClone(n *Node) *Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n.clone != nil {
		return n.clone
	}
	return n
}

func (c *Cloner) link(original, clone *Node) {
	clone.original = original
	c.mu.Lock()
	original.clone = clone
	c.mu.Unlock()
}

func (c *Cloner) checkDepth(depth int, what string) error {
	if MaxCloneDepth <= depth+1 {
		c.logger.Error().Str("what", what).Int("depth", depth).Msg("clone depth limit reached")
		recordCloneDepthFailure()
		return fmt.Errorf("%w: %s at depth %d", ErrDepthExceeded, what, depth)
	}
	return nil
}

func (c *Cloner) cloneNode(ctx context.Context, n *Node, memo cloneMemo, depth int) (*Node, error) {
	if done, ok := memo[n]; ok {
		return done.(*Node), nil
	}
	if n.original != nil || n.IsDocument() {
		return n, nil
	}
	if err := c.checkDepth(depth, "layer "+n.Kind); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clone := &Node{}
	memo[n] = clone
	if err := copier.CopyWithOption(clone, n, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("clone %s: copy fields: %w", n.Kind, err)
	}
	c.link(n, clone)

	var err error
	if clone.Start, err = n.Start.resolved(ctx, c.rc, n); err != nil {
		return nil, fmt.Errorf("clone %s: resolve start: %w", n.Kind, err)
	}
	if clone.Size, err = n.Size.resolved(ctx, c.rc, n); err != nil {
		return nil, fmt.Errorf("clone %s: resolve size: %w", n.Kind, err)
	}
	if clone.Data, err = c.cloneValue(ctx, n.Data, n, memo, depth); err != nil {
		return nil, fmt.Errorf("clone %s: data: %w", n.Kind, err)
	}

	if n.Children != nil {
		clone.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			cc, err := c.cloneNode(ctx, child, memo, depth+1)
			if err != nil {
				return nil, err
			}
			clone.Children = append(clone.Children, cc)
		}
	}

	if h := n.Hierarchy; h != nil {
		clone.Hierarchy = &Hierarchy{Parent: c.counterpart(h.Parent, memo), Position: h.Position}
	}

	return clone, nil
}

// counterpart maps a hierarchy parent onto the computed side without
// climbing the tree: a parent cloned in this pass wins, otherwise its latest
// clone.
func (c *Cloner) counterpart(parent *Node, memo cloneMemo) *Node {
	if parent == nil {
		return nil
	}
	if done, ok := memo[parent]; ok {
		return done.(*Node)
	}
	return c.GetClone(parent)
}

func (c *Cloner) cloneValue(ctx context.Context, v Value, owner *Node, memo cloneMemo, depth int) (Value, error) {
	lit := v.lit
	if v.resolve != nil {
		res, err := v.resolve(ctx, c.rc, owner)
		if err != nil {
			return Value{}, err
		}
		lit = res
	}

	switch x := lit.(type) {
	case Value:
		return c.cloneValue(ctx, x, owner, memo, depth)
	case *Object:
		o, err := c.cloneObject(ctx, x, owner, memo, depth+1)
		if err != nil {
			return Value{}, err
		}
		return Value{lit: o}, nil
	case List:
		l, err := c.cloneList(ctx, x, owner, memo, depth+1)
		if err != nil {
			return Value{}, err
		}
		return Value{lit: l}, nil
	case []Value:
		l, err := c.cloneList(ctx, x, owner, memo, depth+1)
		if err != nil {
			return Value{}, err
		}
		return Value{lit: l}, nil
	case *Node:
		n, err := c.cloneNode(ctx, x, memo, depth+1)
		if err != nil {
			return Value{}, err
		}
		return Value{lit: n}, nil
	default:
		return Value{lit: lit}, nil
	}
}

func (c *Cloner) cloneObject(ctx context.Context, o *Object, owner *Node, memo cloneMemo, depth int) (*Object, error) {
	if o == nil {
		return nil, nil
	}
	if done, ok := memo[o]; ok {
		return done.(*Object), nil
	}
	if err := c.checkDepth(depth, "object"); err != nil {
		return nil, err
	}

	clone := &Object{keys: make([]string, 0, len(o.keys)), vals: make(map[string]Value, len(o.vals))}
	memo[o] = clone
	for _, key := range o.keys {
		v, err := c.cloneValue(ctx, o.vals[key], owner, memo, depth)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		clone.Set(key, v)
	}
	return clone, nil
}

func (c *Cloner) cloneList(ctx context.Context, l []Value, owner *Node, memo cloneMemo, depth int) (List, error) {
	if l == nil {
		return nil, nil
	}
	if err := c.checkDepth(depth, "list"); err != nil {
		return nil, err
	}

	clone := make(List, 0, len(l))
	for i, v := range l {
		cv, err := c.cloneValue(ctx, v, owner, memo, depth)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		clone = append(clone, cv)
	}
	return clone, nil
}
