package repo

import (
	"context"

	"github.com/roach88/arbor/internal/schema"
	"github.com/roach88/arbor/internal/value"
)

// Store is the node store adapter contract.
//
// Every call takes the transaction first and fails with INVALID_STATE when
// the transaction is finalized. Nodes passed in are snapshots; adapters
// address them by ID. Failures from the backing engine are wrapped once
// into a STORE_FAILURE error.
type Store interface {
	// Begin creates a NOT_STARTED transaction bound to ctx.
	Begin(ctx context.Context, name string) (*Transaction, error)

	// Schema returns the node type registry used for validation.
	Schema() *schema.Registry

	// Root returns the root node.
	Root(tx *Transaction) (Node, error)

	// Get returns the node at an absolute path. NOT_FOUND if absent.
	Get(tx *Transaction, path string) (Node, error)

	// Exists reports whether a node exists at an absolute path.
	Exists(tx *Transaction, path string) (bool, error)

	// GetUsingID returns the node with the given identifier. NOT_FOUND if absent.
	GetUsingID(tx *Transaction, id string) (Node, error)

	// HasRawChild reports whether a descendant at relPath exists under parent.
	// When nodeType is non-empty the descendant must also be of that type,
	// as primary type or descriptor.
	HasRawChild(tx *Transaction, parent Node, relPath, nodeType string) (bool, error)

	// RawChildren returns the children of parent named name, in store order.
	// A name with an index suffix selects at most that one sibling.
	RawChildren(tx *Transaction, parent Node, name string) ([]Node, error)

	// Children returns every child of parent in store order.
	Children(tx *Transaction, parent Node) ([]Node, error)

	// AddChild creates a new last child of parent.
	AddChild(tx *Transaction, parent Node, name, nodeType string) (Node, error)

	// AddDescriptor tags node with an auxiliary type and returns the updated node.
	AddDescriptor(tx *Transaction, node Node, descriptor string) (Node, error)

	// Remove deletes node, its properties and its subtree.
	Remove(tx *Transaction, node Node) error

	// PropertyNames returns the node's property names, sorted.
	PropertyNames(tx *Transaction, node Node) ([]string, error)

	// HasProperty reports whether the node has the named property.
	HasProperty(tx *Transaction, node Node, name string) (bool, error)

	// Property returns the named property. NOT_FOUND if absent.
	Property(tx *Transaction, node Node, name string) (value.Property, error)

	// Properties returns every property of node, sorted by name.
	Properties(tx *Transaction, node Node) ([]value.Property, error)

	// SetProperty replaces the named property. Passing no values removes it.
	SetProperty(tx *Transaction, node Node, name string, t value.Type, multiple bool, vals ...value.Value) error

	// RemoveProperty deletes the named property. Absent properties are ignored.
	RemoveProperty(tx *Transaction, node Node, name string) error
}
