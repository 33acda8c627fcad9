package sapling

import (
	"context"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates the geometry of an authoring layer. Each Update
// writes the interpolated value through Move or Resize, so the computed
// layer follows frame by frame. Create one with TweenStart or TweenSize and
// call Update(ctx, dt) from the host's update loop.
//
// There is no global animation manager; users call Update themselves.
type TweenGroup struct {
	tweens [2]*gween.Tween
	apply  func(ctx context.Context, a, b float64) error
	target *Node
	Done   bool
}

// Update advances the tweens by dt seconds and applies the new value. If the
// layer was detached in the meantime, Done is set and nothing is applied.
func (g *TweenGroup) Update(ctx context.Context, dt float32) error {
	if g.Done {
		return nil
	}
	if g.target.Hierarchy == nil {
		g.Done = true
		return nil
	}

	a, doneA := g.tweens[0].Update(dt)
	b, doneB := g.tweens[1].Update(dt)
	g.Done = doneA && doneB
	return g.apply(ctx, float64(a), float64(b))
}

// TweenStart creates a TweenGroup that moves node to the given start over
// the specified duration using the easing function. Deferred starts animate
// from the origin.
func (e *Engine) TweenStart(node *Node, to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := node.Start.Get()
	g := &TweenGroup{target: node}
	g.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	g.apply = func(ctx context.Context, x, y float64) error {
		return e.Move(ctx, node, Vec2{x, y})
	}
	return g
}

// TweenSize creates a TweenGroup that resizes node to the given size over
// the specified duration using the easing function.
func (e *Engine) TweenSize(node *Node, to Size, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := node.Size.Get()
	g := &TweenGroup{target: node}
	g.tweens[0] = gween.New(float32(from.W), float32(to.W), duration, fn)
	g.tweens[1] = gween.New(float32(from.H), float32(to.H), duration, fn)
	g.apply = func(ctx context.Context, w, h float64) error {
		return e.Resize(ctx, node, Size{w, h})
	}
	return g
}
