package sapling

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// calcRequest is one Calc invocation, kept whole so a parked request can be
// re-attempted verbatim.
type calcRequest struct {
	node     *Node
	parent   *Node
	position int
	session  Session
}

// Calc resolves one authoring layer into its computed counterpart.
//
// When session is not at the front of the session queue the request is
// parked and Calc waits until the session becomes current. parent may be
// given from either tree; nil keeps the layer's existing parent. A negative
// position keeps the layer's existing position.
//
// Calc returns ErrNoOutput when a handler omitted the layer.
func (e *Engine) Calc(ctx context.Context, n, parent *Node, position int, session Session) (*Node, error) {
	req := calcRequest{node: n, parent: parent, position: position, session: session}
	if e.sessions.isFront(session) {
		return e.resolve(ctx, req)
	}
	return e.park(ctx, req).Wait(ctx)
}

// CalcAsync is Calc returning a handle immediately instead of waiting.
func (e *Engine) CalcAsync(ctx context.Context, n, parent *Node, position int, session Session) *Pending {
	req := calcRequest{node: n, parent: parent, position: position, session: session}
	if !e.sessions.isFront(session) {
		return e.park(ctx, req)
	}
	p := newPending()
	go func() {
		p.deliver(e.resolve(ctx, req))
	}()
	return p
}

// resolve runs the calc handlers for a request whose session is current.
func (e *Engine) resolve(ctx context.Context, req calcRequest) (*Node, error) {
	if req.node == nil {
		panic("sapling: cannot calc nil layer")
	}
	original := e.cloner.GetOriginal(req.node)

	e.mu.Lock()
	position := req.position
	if position < 0 {
		position = max(original.Position(), 0)
	}
	var parentOriginal *Node
	if req.parent != nil {
		parentOriginal = e.cloner.GetOriginal(req.parent)
	}
	assignHierarchy(original, parentOriginal, position)
	e.mu.Unlock()

	ev := &CalcEvent{Node: req.node, Session: req.session}
	for _, fn := range e.calcHooks.snapshot() {
		if err := fn(ctx, ev); err != nil {
			return nil, err
		}
		if ev.Omitted() {
			break
		}
	}
	if ev.Omitted() {
		recordOmitted()
		return nil, ErrNoOutput
	}

	computed := ev.Node
	e.MarkAsLayer(computed)

	e.mu.Lock()
	var parentClone *Node
	if req.parent != nil {
		parentClone = e.cloner.GetClone(req.parent)
	}
	assignHierarchy(computed, parentClone, position)
	e.mu.Unlock()

	return computed, nil
}

// cloneHandler is the built-in CalcPriorityClone handler.
func (e *Engine) cloneHandler(ctx context.Context, ev *CalcEvent) error {
	if ev.Omitted() {
		return nil
	}
	clone, err := e.cloner.Clone(ctx, ev.Node)
	if err != nil {
		return err
	}
	ev.Node = clone
	return nil
}

// assignHierarchy links n under parent at position. A nil parent keeps the
// current one. Caller holds e.mu.
func assignHierarchy(n, parent *Node, position int) {
	if n.Hierarchy == nil {
		n.Hierarchy = &Hierarchy{Parent: parent, Position: position}
		return
	}
	if parent != nil {
		n.Hierarchy.Parent = parent
	}
	n.Hierarchy.Position = position
}

// Recalculate rebuilds the computed children of parent from authored.
//
// With a zero session a new one is started and stopped on return; a nested
// call passes its caller's session and leaves it open. Layers are resolved
// in index order and the computed list is committed only once every layer
// resolved, so a failing pass leaves the previous list in place.
func (e *Engine) Recalculate(ctx context.Context, parent *Node, authored []*Node, session Session) ([]*Node, error) {
	if session.IsZero() {
		session = e.StartSession()
		defer e.EndSession(session)
	}
	started := time.Now()
	e.MarkAsLayer(parent)

	calculated := make([]*Node, 0, len(authored))
	for i, layer := range authored {
		computed, err := e.Calc(ctx, layer, parent, i, session)
		if errors.Is(err, ErrNoOutput) {
			continue
		}
		if err != nil {
			recordRecalculation(false, time.Since(started))
			return nil, fmt.Errorf("recalculate %s: layer %d (%s): %w", parent.Kind, i, layer.Kind, err)
		}
		calculated = append(calculated, computed)
	}

	e.mu.Lock()
	target := e.cloner.GetClone(parent)
	renumber(calculated)
	target.Children = calculated
	if e.debug.Load() {
		debugCheckChildCount(e.logger, target)
	}
	e.mu.Unlock()

	recordRecalculation(true, time.Since(started))
	e.recalcDebounce.Trigger()
	return calculated, nil
}

// RecalculateDocument rebuilds the whole computed tree from the document's
// authored list.
func (e *Engine) RecalculateDocument(ctx context.Context) ([]*Node, error) {
	e.mu.Lock()
	authored := append([]*Node(nil), e.doc.Authored...)
	e.mu.Unlock()
	return e.Recalculate(ctx, e.doc.Root(), authored, Session{})
}
