package sapling

// Document is the root of both trees. It keeps the authoring list in
// Authored and the computed list in Children, and it is never cloned: every
// clone that points at the document points at this very node.
type Document struct {
	*Node

	// Authored is the durable, user-edited layer list.
	Authored []*Node

	// Settings is the nested settings tree persisted with the document.
	Settings *Settings
}

// NewDocument creates an empty document root.
func NewDocument() *Document {
	root := &Node{
		Kind:  KindDocument,
		Start: Lit(Vec2{}),
		Size:  Lit(Size{}),
	}
	return &Document{
		Node:     root,
		Settings: NewSettings(),
	}
}

// Root returns the document's node, the parent of every top-level layer.
func (d *Document) Root() *Node {
	return d.Node
}
