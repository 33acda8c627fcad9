package sapling

import "context"

// MarkAsLayer stamps the computed side of n as a first-class layer and makes
// sure its authoring side has a stable id. The computed side reads that id
// through its original rather than holding a copy.
func (e *Engine) MarkAsLayer(n *Node) *Node {
	target := e.cloner.GetClone(n)
	e.cloner.mu.Lock()
	target.layer = true
	e.cloner.mu.Unlock()
	e.cloner.GetOriginal(n).ensureID()
	return n
}

// IsLayer reports whether n, or its computed side, was marked as a layer.
func (e *Engine) IsLayer(n *Node) bool {
	target := e.cloner.GetClone(n)
	e.cloner.mu.RLock()
	defer e.cloner.mu.RUnlock()
	return target.layer
}

// IsClone reports whether n belongs to the computed tree.
func (e *Engine) IsClone(n *Node) bool {
	return e.cloner.IsClone(n)
}

// GetOriginal returns the authoring counterpart of n, or n itself.
func (e *Engine) GetOriginal(n *Node) *Node {
	return e.cloner.GetOriginal(n)
}

// GetClone returns the computed counterpart of n, or n itself.
func (e *Engine) GetClone(n *Node) *Node {
	return e.cloner.GetClone(n)
}

// Clone resolves and clones n outside of any recalculation pass.
func (e *Engine) Clone(ctx context.Context, n *Node) (*Node, error) {
	return e.cloner.Clone(ctx, n)
}
