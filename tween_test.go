package sapling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func TestTweenStartMovesLayer(t *testing.T) {
	e := newTestEngine(t)
	a := box(0, 0)
	doc, err := e.Init(context.Background(), []*Node{a}, nil)
	require.NoError(t, err)

	g := e.TweenStart(a, Vec2{X: 100, Y: 50}, 1, ease.Linear)

	require.NoError(t, g.Update(context.Background(), 0.5))
	assert.False(t, g.Done)
	assert.InDelta(t, 50, a.Start.Get().X, 0.001)
	assert.InDelta(t, 25, doc.Children[0].Start.Get().Y, 0.001)

	require.NoError(t, g.Update(context.Background(), 0.5))
	assert.True(t, g.Done)
	assert.InDelta(t, 100, doc.Children[0].Start.Get().X, 0.001)

	// Finished groups ignore further updates.
	require.NoError(t, g.Update(context.Background(), 1))
	assert.InDelta(t, 100, a.Start.Get().X, 0.001)
}

func TestTweenSize(t *testing.T) {
	e := newTestEngine(t)
	a := box(0, 0)
	doc, err := e.Init(context.Background(), []*Node{a}, nil)
	require.NoError(t, err)

	g := e.TweenSize(a, Size{W: 30, H: 10}, 2, ease.Linear)
	require.NoError(t, g.Update(context.Background(), 2))
	assert.True(t, g.Done)
	assert.InDelta(t, 30, doc.Children[0].Size.Get().W, 0.001)
}

func TestTweenStopsOnDetachedLayer(t *testing.T) {
	e := newTestEngine(t)
	a := box(0, 0)
	_, err := e.Init(context.Background(), []*Node{a}, nil)
	require.NoError(t, err)

	g := e.TweenStart(a, Vec2{X: 100}, 1, ease.Linear)
	a.Hierarchy = nil

	require.NoError(t, g.Update(context.Background(), 0.5))
	assert.True(t, g.Done)
	assert.Equal(t, Vec2{}, a.Start.Get())
}
