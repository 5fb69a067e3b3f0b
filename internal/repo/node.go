package repo

import "slices"

const (
	// RootPath is the absolute path of the root node.
	RootPath = "/"

	// RootID is the fixed identifier of the root node.
	RootID = "00000000-0000-0000-0000-000000000000"

	// RootNodeType is the primary type of the root node.
	RootNodeType = "arbor:root"

	// DefaultNodeType is the generic untyped node type used when no type is given.
	DefaultNodeType = "nt:unstructured"
)

// Node is a snapshot of a node in the hierarchical store.
//
// A Node is a value read within one transaction. It is not refreshed when
// the store changes; re-read it with Store.Get or Store.GetUsingID.
type Node struct {
	// ID is the stable opaque identifier. Immutable for the node's lifetime.
	ID string

	// ParentID is empty for the root.
	ParentID string

	// Path is the absolute path, with same-name-sibling indexes where needed.
	Path string

	// Name is the bare node name, without index. Empty for the root.
	Name string

	// Index is the 1-based same-name-sibling index.
	Index int

	// PrimaryType is the node's single primary type name.
	PrimaryType string

	// Mixins are the auxiliary type tags (descriptors), sorted.
	Mixins []string
}

// IsZero reports whether n is the zero Node.
func (n Node) IsZero() bool {
	return n.ID == ""
}

// IsRoot reports whether n is the root node.
func (n Node) IsRoot() bool {
	return n.Path == RootPath
}

// HasDescriptor reports whether the node carries the given auxiliary type.
func (n Node) HasDescriptor(name string) bool {
	return slices.Contains(n.Mixins, name)
}

// IsType reports whether the node's primary type is nodeType or it carries
// nodeType as a descriptor.
func (n Node) IsType(nodeType string) bool {
	return n.PrimaryType == nodeType || n.HasDescriptor(nodeType)
}

// Segment returns the path segment naming n within its parent, e.g. "b[2]".
func (n Node) Segment() string {
	return FormatSegment(n.Name, n.Index)
}
