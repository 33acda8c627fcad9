package sapling

// Draw hands one computed layer to the draw handlers. Authoring layers are
// mapped to their computed side first. Handlers run synchronously on the
// calling goroutine.
func (e *Engine) Draw(n *Node) {
	if n == nil {
		return
	}
	n = e.cloner.GetClone(n)
	for _, fn := range e.drawHooks.snapshot() {
		fn(n)
	}
	e.emit(Notification{Type: NotifyDraw, Node: n})
}

// Redraw draws every layer in list, or the document's computed layers when
// list is nil.
func (e *Engine) Redraw(list []*Node) {
	if list == nil {
		e.mu.Lock()
		list = append([]*Node(nil), e.doc.Children...)
		e.mu.Unlock()
	}
	for _, n := range list {
		e.Draw(n)
	}
}

// RedrawDebounced schedules a full Redraw once calls stop arriving for
// Config.RedrawDebounce.
func (e *Engine) RedrawDebounced() {
	e.redrawDebounce.Trigger()
}
