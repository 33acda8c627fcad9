package sapling

import (
	"context"
	"sort"
	"sync"
)

// CalcEvent is the resolution request dispatched for every layer during
// Calc. Handlers may replace Node with a new computed shape or call Omit.
type CalcEvent struct {
	Node    *Node
	Session Session
	omitted bool
}

// Omit marks the layer as producing no computed output.
func (ev *CalcEvent) Omit() {
	ev.Node = nil
	ev.omitted = true
}

// Omitted reports whether the layer will be left out of the computed tree.
func (ev *CalcEvent) Omitted() bool {
	return ev.omitted || ev.Node == nil
}

// CalcHandler resolves one layer. Returning an error aborts the Calc call.
type CalcHandler func(ctx context.Context, ev *CalcEvent) error

// DrawHandler receives every computed layer that is drawn. It runs
// synchronously and must not block.
type DrawHandler func(n *Node)

// SettingsHandler contributes settings definitions to SettingsSchema.
type SettingsHandler func(ctx context.Context, ev *SettingsEvent) error

// TypeDefinitionHandler describes known layer kinds for external tooling.
type TypeDefinitionHandler func(defs TypeDefinitions)

// CalcPriorityClone is the priority of the built-in handler that clones the
// layer before any other handler sees it.
const CalcPriorityClone = -255

// NotificationType identifies an outbound engine notification.
type NotificationType uint8

const (
	NotifyDraw         NotificationType = iota // a computed layer was drawn
	NotifyRecalculated                         // a burst of recalculations settled
	NotifyFontsLoaded                          // a font reload finished
)

// Notification carries outbound engine events to an EventSink.
type Notification struct {
	Type  NotificationType
	Node  *Node         // NotifyDraw
	Fonts []*LoadedFont // NotifyFontsLoaded; failed fonts are nil
}

// EventSink is the interface for optional ECS integration. When set on the
// engine config, notifications are forwarded to it.
type EventSink interface {
	EmitEvent(n Notification)
}

// hook is one registered handler.
type hook[T any] struct {
	priority int
	seq      uint64
	fn       T
}

// hooks is a priority-ordered handler list. Lower priorities run first;
// equal priorities run in registration order.
type hooks[T any] struct {
	mu   sync.RWMutex
	seq  uint64
	list []hook[T]
}

// add registers fn and returns a function that removes it again.
func (h *hooks[T]) add(priority int, fn T) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	seq := h.seq
	i := sort.Search(len(h.list), func(i int) bool {
		return h.list[i].priority > priority
	})
	h.list = append(h.list, hook[T]{})
	copy(h.list[i+1:], h.list[i:])
	h.list[i] = hook[T]{priority: priority, seq: seq, fn: fn}

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(seq) })
	}
}

func (h *hooks[T]) remove(seq uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.list {
		if e.seq == seq {
			h.list = append(h.list[:i], h.list[i+1:]...)
			return
		}
	}
}

// snapshot returns the handlers in dispatch order.
func (h *hooks[T]) snapshot() []T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]T, len(h.list))
	for i, e := range h.list {
		out[i] = e.fn
	}
	return out
}

func (h *hooks[T]) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.list)
}

// --- Registration ---

// OnCalc registers a layer resolution handler. Handlers run in ascending
// priority; the built-in clone step runs at CalcPriorityClone.
func (e *Engine) OnCalc(priority int, fn CalcHandler) (unsubscribe func()) {
	return e.calcHooks.add(priority, fn)
}

// OnDraw registers a draw handler.
func (e *Engine) OnDraw(fn DrawHandler) (unsubscribe func()) {
	return e.drawHooks.add(0, fn)
}

// OnRecalculated registers a handler fired once a burst of recalculations
// has settled.
func (e *Engine) OnRecalculated(fn func()) (unsubscribe func()) {
	return e.recalcHooks.add(0, fn)
}

// OnFontsLoaded registers a handler fired after every font reload.
func (e *Engine) OnFontsLoaded(fn func(loaded []*LoadedFont)) (unsubscribe func()) {
	return e.fontHooks.add(0, fn)
}

// OnSettings registers a settings-schema contributor.
func (e *Engine) OnSettings(priority int, fn SettingsHandler) (unsubscribe func()) {
	return e.settingsHooks.add(priority, fn)
}

// OnTypeDefinition registers a layer-kind describer.
func (e *Engine) OnTypeDefinition(fn TypeDefinitionHandler) (unsubscribe func()) {
	return e.typeHooks.add(0, fn)
}

func (e *Engine) emit(n Notification) {
	if e.cfg.Sink != nil {
		e.cfg.Sink.EmitEvent(n)
	}
}

func (e *Engine) emitRecalculated() {
	for _, fn := range e.recalcHooks.snapshot() {
		fn()
	}
	e.emit(Notification{Type: NotifyRecalculated})
}

func (e *Engine) emitFontsLoaded(loaded []*LoadedFont) {
	for _, fn := range e.fontHooks.snapshot() {
		fn(loaded)
	}
	e.emit(Notification{Type: NotifyFontsLoaded, Fonts: loaded})
}
