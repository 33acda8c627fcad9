package sapling

import (
	"context"
	"errors"
)

// Append as a position inserts at the end of the list.
const Append = -1

// Add inserts n into the authoring list of parent at position. A nil parent
// means the document; parent may be given from either tree. Siblings are
// renumbered immediately.
func (e *Engine) Add(n, parent *Node, position int) {
	if n == nil {
		panic("sapling: cannot add nil layer")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if parent == nil {
		parent = e.doc.Root()
	}
	parent = e.cloner.GetOriginal(parent)
	insert(n, parent, position, e.authoredList(parent))
	if e.debug.Load() {
		debugCheckTreeDepth(e.logger, n)
	}
}

// AddVolatile inserts n straight into the computed list of parent. Volatile
// layers have no authoring counterpart and vanish on the next
// recalculation of that parent.
func (e *Engine) AddVolatile(n, parent *Node, position int) {
	if n == nil {
		panic("sapling: cannot add nil layer")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if parent == nil {
		parent = e.doc.Root()
	}
	parent = e.cloner.GetClone(parent)
	insert(n, parent, position, &parent.Children)
}

// insert splices n into list and links it. Caller holds e.mu.
func insert(n, parent *Node, position int, list *[]*Node) {
	*list, position = insertAt(*list, n, position)
	n.Hierarchy = &Hierarchy{Parent: parent, Position: position}
	renumber(*list)
}

// authoredList returns the authoring child list of an authoring parent.
// Caller holds e.mu.
func (e *Engine) authoredList(parent *Node) *[]*Node {
	if parent == e.doc.Root() {
		return &e.doc.Authored
	}
	return &parent.Children
}

// Remove takes n out of its authoring list. It is a no-op when n is
// detached or its recorded position no longer holds n.
func (e *Engine) Remove(n *Node) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := n.Hierarchy
	if h == nil || h.Parent == nil {
		return
	}
	parent := e.cloner.GetOriginal(h.Parent)
	removeMatching(e.authoredList(parent), h.Position, e.cloner.GetOriginal(n))
}

// RemoveVolatile takes n out of its computed list, with the same guards as
// Remove.
func (e *Engine) RemoveVolatile(n *Node) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := n.Hierarchy
	if h == nil || h.Parent == nil {
		return
	}
	parent := e.cloner.GetClone(h.Parent)
	removeMatching(&parent.Children, h.Position, e.cloner.GetClone(n))
}

// removeMatching removes list[position] if it is want. Caller holds e.mu.
func removeMatching(list *[]*Node, position int, want *Node) bool {
	if position < 0 || position >= len(*list) || (*list)[position] != want {
		return false
	}
	*list = removeAt(*list, position)
	renumber(*list)
	return true
}

// CalcAndUpdateLayer recomputes one attached authoring layer in place. The
// computed slot at the layer's position is replaced with the new result; if
// the layer now produces no output its previous computed entry is removed
// and the authoring entry is left alone. Detached layers are ignored.
func (e *Engine) CalcAndUpdateLayer(ctx context.Context, original *Node) error {
	e.mu.Lock()
	h := original.Hierarchy
	if h == nil || h.Parent == nil {
		e.mu.Unlock()
		return nil
	}
	position, parent := h.Position, h.Parent
	e.mu.Unlock()
	previous := e.cloner.GetClone(original)

	computed, err := e.Calc(ctx, original, parent, position, Session{})
	if errors.Is(err, ErrNoOutput) {
		e.mu.Lock()
		if previous != original {
			removeMatching(&e.cloner.GetClone(parent).Children, position, previous)
		}
		e.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	list := &e.cloner.GetClone(parent).Children
	if position < len(*list) {
		(*list)[position] = computed
		return nil
	}
	*list = append(*list, computed)
	renumber(*list)
	return nil
}

// Move sets a new start on an authoring layer and recomputes it.
func (e *Engine) Move(ctx context.Context, original *Node, start Vec2) error {
	e.mu.Lock()
	original.Start = Lit(start)
	e.mu.Unlock()
	return e.CalcAndUpdateLayer(ctx, original)
}

// Resize sets a new size on an authoring layer and recomputes it.
func (e *Engine) Resize(ctx context.Context, original *Node, size Size) error {
	e.mu.Lock()
	original.Size = Lit(size)
	e.mu.Unlock()
	return e.CalcAndUpdateLayer(ctx, original)
}
