package sapling

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// Hierarchy links an attached layer to its parent. Position always equals the
// layer's index in the parent's list.
type Hierarchy struct {
	Parent   *Node
	Position int
}

// Node is a layer in either tree. The authoring tree holds what the user
// edited; the computed tree holds resolved clones ready for drawing. A single
// flat struct is used for every kind; Kind selects which extension
// interprets it.
//
// Container layers keep their child list in Children. On an authoring
// container those are authoring children; on its clone they are computed
// children. The document root is the only node that keeps the two lists
// apart (see Document).
type Node struct {
	// Kind determines which extension interprets the layer.
	Kind string

	// Geometry. Start and Size may be deferred; Area is the resolved box and
	// is usually filled in by calc handlers.
	Start Field[Vec2] `copier:"-"`
	Size  Field[Size] `copier:"-"`
	Area  *Area
	Can   *Capabilities

	// Data is the opaque extension payload.
	Data Value `copier:"-"`

	Children  []*Node    `copier:"-"`
	Hierarchy *Hierarchy `copier:"-"`

	id       string
	original *Node // set on clones only
	clone    *Node // latest clone, set on originals only
	layer    bool
}

// NewLayer creates a leaf layer.
func NewLayer(kind string, start Vec2, size Size) *Node {
	return &Node{
		Kind:  kind,
		Start: Lit(start),
		Size:  Lit(size),
	}
}

// NewContainer creates a layer that owns a child list. The children are
// attached to it in order.
func NewContainer(kind string, start Vec2, size Size, children ...*Node) *Node {
	n := NewLayer(kind, start, size)
	n.Children = make([]*Node, 0, len(children))
	for i, child := range children {
		child.Hierarchy = &Hierarchy{Parent: n, Position: i}
		n.Children = append(n.Children, child)
	}
	return n
}

// idMu guards Node.id; ids are assigned lazily from whichever goroutine marks
// the layer first.
var idMu sync.RWMutex

// ID returns the layer's stable id, or "" if it was never marked as a layer.
// A computed layer reports its original's id.
func (n *Node) ID() string {
	if n.original != nil {
		return n.original.ID()
	}
	idMu.RLock()
	defer idMu.RUnlock()
	return n.id
}

// SetID assigns id to an authoring layer that has none yet (for example one
// restored from a saved document). Returns false if an id is already set or
// n is a clone.
func (n *Node) SetID(id string) bool {
	if n.original != nil || id == "" {
		return false
	}
	idMu.Lock()
	defer idMu.Unlock()
	if n.id != "" {
		return false
	}
	n.id = id
	return true
}

// ensureID assigns a generated id if the layer has none.
func (n *Node) ensureID() {
	idMu.Lock()
	defer idMu.Unlock()
	if n.id == "" {
		n.id = GenerateID()
	}
}

// GenerateID returns a new random opaque id.
func GenerateID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// IsDocument reports whether n is a document root.
func (n *Node) IsDocument() bool {
	return n.Kind == KindDocument
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.Children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.Children[index]
}

// Position returns the layer's index in its parent, or -1 when detached.
func (n *Node) Position() int {
	if n.Hierarchy == nil {
		return -1
	}
	return n.Hierarchy.Position
}

// Parent returns the layer's parent, or nil when detached.
func (n *Node) Parent() *Node {
	if n.Hierarchy == nil {
		return nil
	}
	return n.Hierarchy.Parent
}

// --- List helpers ---

// insertAt splices n into list at index, clamping index into range.
func insertAt(list []*Node, n *Node, index int) ([]*Node, int) {
	if index < 0 || index > len(list) {
		index = len(list)
	}
	list = append(list, nil)
	copy(list[index+1:], list[index:])
	list[index] = n
	return list, index
}

// removeAt removes the entry at index. Uses copy+nil to avoid retaining a
// dangling pointer in the backing array.
func removeAt(list []*Node, index int) []*Node {
	copy(list[index:], list[index+1:])
	list[len(list)-1] = nil
	return list[:len(list)-1]
}

// renumber re-asserts Position == index for every attached layer in list.
func renumber(list []*Node) {
	for i, n := range list {
		if n.Hierarchy == nil {
			continue
		}
		n.Hierarchy.Position = i
	}
}
