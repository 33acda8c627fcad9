package sapling

import "errors"

// Vec2 is a 2D point used for layer positions. The coordinate system has its
// origin at the top-left, with Y increasing downward.
type Vec2 struct {
	X, Y float64
}

// Add returns v translated by o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Area is a resolved bounding box.
type Area struct {
	Start Vec2
	Size  Size
}

// Contains reports whether the point (x, y) lies inside the area.
// Points on the edge are considered inside.
func (a Area) Contains(x, y float64) bool {
	return x >= a.Start.X && x <= a.Start.X+a.Size.W &&
		y >= a.Start.Y && y <= a.Start.Y+a.Size.H
}

// Intersects reports whether a and other overlap.
// Adjacent areas (sharing only an edge) are considered intersecting.
func (a Area) Intersects(other Area) bool {
	return a.Start.X <= other.Start.X+other.Size.W &&
		a.Start.X+a.Size.W >= other.Start.X &&
		a.Start.Y <= other.Start.Y+other.Size.H &&
		a.Start.Y+a.Size.H >= other.Start.Y
}

// Union returns the smallest area covering both a and other.
func (a Area) Union(other Area) Area {
	minX := min(a.Start.X, other.Start.X)
	minY := min(a.Start.Y, other.Start.Y)
	maxX := max(a.Start.X+a.Size.W, other.Start.X+other.Size.W)
	maxY := max(a.Start.Y+a.Size.H, other.Start.Y+other.Size.H)
	return Area{Start: Vec2{minX, minY}, Size: Size{maxX - minX, maxY - minY}}
}

// Capabilities lists what an editor may do with a layer.
type Capabilities struct {
	Move   bool `toml:"move"`
	Scale  bool `toml:"scale"`
	Remove bool `toml:"remove"`
}

// KindDocument is the kind tag of the document root.
const KindDocument = "document"

// MaxCloneDepth bounds recursion while cloning a layer.
const MaxCloneDepth = 50

var (
	// ErrNoOutput is returned by Calc when the handlers decided the layer
	// produces nothing in the computed tree. It is an expected outcome.
	ErrNoOutput = errors.New("sapling: layer produced no output")

	// ErrDepthExceeded aborts a clone that nests deeper than MaxCloneDepth.
	ErrDepthExceeded = errors.New("sapling: clone depth limit reached")

	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("sapling: engine closed")
)
