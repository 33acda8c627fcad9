// Package sapling is the recalculation core of a canvas-based layout and
// design tool.
//
// An [Engine] keeps two parallel trees. The authoring tree holds what the
// user edited: layers whose geometry and payload may still be deferred
// computations (text that needs measuring, images that need loading). The
// computed tree holds a resolved clone of every layer, ready for drawing.
// Every authoring layer knows its latest clone and every clone knows its
// original; [Engine.GetClone] and [Engine.GetOriginal] move between them.
//
// # Quick start
//
//	engine := sapling.NewEngine(sapling.Config{})
//	defer engine.Close()
//
//	engine.OnDraw(func(n *sapling.Node) {
//		// paint n onto the canvas
//	})
//
//	title := sapling.NewLayer("text", sapling.Vec2{X: 20, Y: 20}, sapling.Size{})
//	title.Size = sapling.Defer(measureTitle)
//	doc, err := engine.Init(ctx, []*sapling.Node{title}, settings)
//
// # Calculation
//
// [Engine.Recalculate] rebuilds the computed children of a parent. Each
// layer goes through [Engine.Calc], which dispatches a [CalcEvent] to the
// handlers registered with [Engine.OnCalc] in ascending priority. The
// built-in handler at [CalcPriorityClone] clones the layer, resolving every
// deferred field; later handlers refine the clone or call [CalcEvent.Omit]
// to leave the layer out of the computed tree.
//
// Passes are serialized by sessions. A calc request whose session is not
// at the front of the session queue is parked and runs once its session
// becomes current, so an older pass never interleaves with a newer one.
//
// # Editing
//
// [Engine.Add] and [Engine.Remove] change the authoring tree;
// [Engine.AddVolatile] and [Engine.RemoveVolatile] change the computed
// tree only. [Engine.Move], [Engine.Resize] and [Engine.CalcAndUpdateLayer]
// recompute a single layer in place. Tweens (via [gween]) animate Move and
// Resize over time.
//
// # Modules
//
// Extensions are ordered and loaded by the plugin package;
// [RegisterModule] registers the engine itself as the "core" module.
// Notifications can be bridged into a [Donburi] world with sapling/ecs.
//
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package sapling
