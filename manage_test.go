package sapling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertContiguous(t *testing.T, list []*Node) {
	t.Helper()
	for i, n := range list {
		require.NotNil(t, n.Hierarchy, "entry %d detached", i)
		assert.Equal(t, i, n.Position(), "entry %d", i)
	}
}

// --- Add / Remove ---

func TestAddAppendsToDocument(t *testing.T) {
	e := newTestEngine(t)
	a, b := box(0, 0), box(1, 1)
	e.Add(a, nil, Append)
	e.Add(b, nil, Append)

	doc := e.Document()
	assert.Equal(t, []*Node{a, b}, doc.Authored)
	assert.Empty(t, doc.Children)
	assert.Same(t, doc.Root(), a.Parent())
	assertContiguous(t, doc.Authored)
}

func TestAddAtPosition(t *testing.T) {
	e := newTestEngine(t)
	a, b, c := box(0, 0), box(1, 1), box(2, 2)
	e.Add(a, nil, Append)
	e.Add(b, nil, Append)
	e.Add(c, nil, 0)

	assert.Equal(t, []*Node{c, a, b}, e.Document().Authored)
	assertContiguous(t, e.Document().Authored)

	// Out of range positions append.
	d := box(3, 3)
	e.Add(d, nil, 99)
	assert.Same(t, d, e.Document().Authored[3])
}

func TestAddIntoContainer(t *testing.T) {
	e := newTestEngine(t)
	group := NewContainer("group", Vec2{}, Size{}, box(0, 0), box(1, 1))
	e.Add(group, nil, Append)

	n := box(5, 5)
	e.Add(n, group, 1)
	assert.Same(t, n, group.Children[1])
	assert.Same(t, group, n.Parent())
	assertContiguous(t, group.Children)
}

func TestAddNormalizesComputedParent(t *testing.T) {
	e := newTestEngine(t)
	group := NewContainer("group", Vec2{}, Size{})
	doc, err := e.Init(context.Background(), []*Node{group}, nil)
	require.NoError(t, err)

	n := box(0, 0)
	e.Add(n, doc.Children[0], Append)
	assert.Equal(t, []*Node{n}, group.Children)
	assert.Same(t, group, n.Parent())
}

func TestRemoveThenAddKeepsPositionsContiguous(t *testing.T) {
	e := newTestEngine(t)
	a, b, c := box(0, 0), box(1, 1), box(2, 2)
	for _, n := range []*Node{a, b, c} {
		e.Add(n, nil, Append)
	}

	e.Remove(a)
	assert.Equal(t, []*Node{b, c}, e.Document().Authored)
	assertContiguous(t, e.Document().Authored)

	d := box(3, 3)
	e.Add(d, nil, Append)
	assert.Equal(t, []*Node{b, c, d}, e.Document().Authored)
	assertContiguous(t, e.Document().Authored)
}

func TestRemoveIdentityGuard(t *testing.T) {
	e := newTestEngine(t)
	a, b := box(0, 0), box(1, 1)
	e.Add(a, nil, Append)
	e.Add(b, nil, Append)

	e.Remove(a)
	// a still claims position 0, which now holds b.
	e.Remove(a)
	assert.Equal(t, []*Node{b}, e.Document().Authored)

	// Detached layers are ignored.
	e.Remove(box(9, 9))
	assert.Len(t, e.Document().Authored, 1)

	// A stale position out of range is ignored.
	b.Hierarchy.Position = 7
	e.Remove(b)
	assert.Len(t, e.Document().Authored, 1)
}

func TestRemoveByComputedLayer(t *testing.T) {
	e := newTestEngine(t)
	a, b := box(0, 0), box(1, 1)
	doc, err := e.Init(context.Background(), []*Node{a, b}, nil)
	require.NoError(t, err)

	e.Remove(doc.Children[0])
	assert.Equal(t, []*Node{b}, doc.Authored)
	// The computed tree only changes on the next pass.
	assert.Len(t, doc.Children, 2)
}

// --- Volatile ---

func TestAddVolatile(t *testing.T) {
	e := newTestEngine(t)
	doc, err := e.Init(context.Background(), []*Node{box(0, 0), box(1, 1)}, nil)
	require.NoError(t, err)

	v := NewLayer("guide", Vec2{}, Size{W: 1, H: 480})
	e.AddVolatile(v, nil, 1)

	require.Len(t, doc.Children, 3)
	assert.Same(t, v, doc.Children[1])
	assert.Len(t, doc.Authored, 2)
	assertContiguous(t, doc.Children)

	e.RemoveVolatile(v)
	assert.Len(t, doc.Children, 2)
	assertContiguous(t, doc.Children)
}

func TestVolatileLayersVanishOnRecalculate(t *testing.T) {
	e := newTestEngine(t)
	doc, err := e.Init(context.Background(), []*Node{box(0, 0)}, nil)
	require.NoError(t, err)

	e.AddVolatile(box(5, 5), nil, Append)
	require.Len(t, doc.Children, 2)

	_, err = e.RecalculateDocument(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Children, 1)
}

func TestRemoveVolatileByOriginal(t *testing.T) {
	e := newTestEngine(t)
	a, b := box(0, 0), box(1, 1)
	doc, err := e.Init(context.Background(), []*Node{a, b}, nil)
	require.NoError(t, err)

	e.RemoveVolatile(a)
	require.Len(t, doc.Children, 1)
	assert.Same(t, b, e.GetOriginal(doc.Children[0]))
	assert.Len(t, doc.Authored, 2)

	// Guard: a's computed layer is gone, nothing else is removed.
	e.RemoveVolatile(a)
	assert.Len(t, doc.Children, 1)
}

// --- Single layer updates ---

func TestCalcAndUpdateLayerReplacesInPlace(t *testing.T) {
	e := newTestEngine(t)
	a, b, c := box(0, 0), box(1, 1), box(2, 2)
	doc, err := e.Init(context.Background(), []*Node{a, b, c}, nil)
	require.NoError(t, err)
	old := doc.Children[1]

	require.NoError(t, e.CalcAndUpdateLayer(context.Background(), b))

	require.Len(t, doc.Children, 3)
	assert.NotSame(t, old, doc.Children[1])
	assert.Same(t, e.GetClone(b), doc.Children[1])
	assert.Same(t, b, e.GetOriginal(doc.Children[1]))
	assertContiguous(t, doc.Children)
}

func TestCalcAndUpdateLayerNoOutputRemovesComputedEntry(t *testing.T) {
	e := newTestEngine(t)
	a, b, c := box(0, 0), box(1, 1), box(2, 2)
	var hide *Node
	e.OnCalc(0, func(_ context.Context, ev *CalcEvent) error {
		if e.GetOriginal(ev.Node) == hide {
			ev.Omit()
		}
		return nil
	})
	doc, err := e.Init(context.Background(), []*Node{a, b, c}, nil)
	require.NoError(t, err)
	require.Len(t, doc.Children, 3)

	hide = b
	require.NoError(t, e.CalcAndUpdateLayer(context.Background(), b))

	require.Len(t, doc.Children, 2)
	assert.Same(t, a, e.GetOriginal(doc.Children[0]))
	assert.Same(t, c, e.GetOriginal(doc.Children[1]))
	assertContiguous(t, doc.Children)

	assert.Equal(t, []*Node{a, b, c}, doc.Authored)
	assert.Equal(t, 1, b.Position())
}

func TestCalcAndUpdateLayerAppendsWhenSlotMissing(t *testing.T) {
	e := newTestEngine(t)
	a := box(0, 0)
	doc, err := e.Init(context.Background(), nil, nil)
	require.NoError(t, err)

	e.Add(a, nil, Append)
	require.NoError(t, e.CalcAndUpdateLayer(context.Background(), a))
	require.Len(t, doc.Children, 1)
	assert.Same(t, a, e.GetOriginal(doc.Children[0]))
}

func TestCalcAndUpdateLayerDetachedIsNoop(t *testing.T) {
	e := newTestEngine(t)
	calls := 0
	e.OnCalc(0, func(context.Context, *CalcEvent) error {
		calls++
		return nil
	})
	require.NoError(t, e.CalcAndUpdateLayer(context.Background(), box(0, 0)))
	assert.Zero(t, calls)
}

func TestMoveAndResize(t *testing.T) {
	e := newTestEngine(t)
	a := box(0, 0)
	doc, err := e.Init(context.Background(), []*Node{a}, nil)
	require.NoError(t, err)

	require.NoError(t, e.Move(context.Background(), a, Vec2{X: 30, Y: 40}))
	assert.Equal(t, Vec2{X: 30, Y: 40}, a.Start.Get())
	assert.Equal(t, Vec2{X: 30, Y: 40}, doc.Children[0].Start.Get())

	require.NoError(t, e.Resize(context.Background(), a, Size{W: 5, H: 6}))
	assert.Equal(t, Size{W: 5, H: 6}, doc.Children[0].Size.Get())
	assert.Len(t, doc.Children, 1)
}

func TestMoveReplacesDeferredStart(t *testing.T) {
	e := newTestEngine(t)
	a := box(0, 0)
	a.Start = Defer(func(context.Context, *RenderContext, *Node) (Vec2, error) {
		return Vec2{X: 1, Y: 1}, nil
	})
	doc, err := e.Init(context.Background(), []*Node{a}, nil)
	require.NoError(t, err)
	require.Equal(t, Vec2{X: 1, Y: 1}, doc.Children[0].Start.Get())

	require.NoError(t, e.Move(context.Background(), a, Vec2{X: 9, Y: 9}))
	assert.False(t, a.Start.IsDeferred())
	assert.Equal(t, Vec2{X: 9, Y: 9}, doc.Children[0].Start.Get())
}
