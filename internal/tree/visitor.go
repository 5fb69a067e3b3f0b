package tree

import (
	"slices"
	"strings"

	"github.com/roach88/arbor/internal/repo"
)

// TraversalVisitor accumulates an indented dump of every subtree it visits.
// Output starts with a newline. Not safe for concurrent use.
type TraversalVisitor struct {
	tx    *repo.Transaction
	store repo.Store
	out   strings.Builder
}

// NewTraversalVisitor creates a visitor reading through s within tx.
func NewTraversalVisitor(tx *repo.Transaction, s repo.Store) *TraversalVisitor {
	v := &TraversalVisitor{tx: tx, store: s}
	v.out.WriteString("\n")
	return v
}

// Visit appends node and its subtree in pre-order: the node's name, its
// properties in name order, then its children in store order.
func (v *TraversalVisitor) Visit(node repo.Node) error {
	const op = "traverse"
	if err := checkDisplay(op, v.tx, v.store); err != nil {
		return err
	}

	stack := []repo.Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		indent := indentFor(n.Path)
		v.out.WriteString(indent)
		v.out.WriteString(n.Name)
		v.out.WriteString("\n")

		names, err := v.store.PropertyNames(v.tx, n)
		if err != nil {
			return err
		}
		for _, name := range names {
			line, err := DisplayNameAndValue(v.tx, v.store, n, name)
			if err != nil {
				return err
			}
			v.out.WriteString(indent)
			v.out.WriteString("\t@")
			v.out.WriteString(line)
			v.out.WriteString("\n")
		}

		children, err := v.store.Children(v.tx, n)
		if err != nil {
			return err
		}
		// Push in reverse so the first child is visited next.
		for _, c := range slices.Backward(children) {
			stack = append(stack, c)
		}
	}
	return nil
}

// String returns everything visited so far.
func (v *TraversalVisitor) String() string {
	return v.out.String()
}

// Traverse renders the subtree rooted at node with a fresh visitor.
func Traverse(tx *repo.Transaction, s repo.Store, node repo.Node) (string, error) {
	v := NewTraversalVisitor(tx, s)
	if err := v.Visit(node); err != nil {
		return "", err
	}
	return v.String(), nil
}

// indentFor is one tab plus one per element of path split on "/", with
// trailing empty elements dropped: "/" gets one tab, "/a" three.
func indentFor(path string) string {
	parts := strings.Split(path, "/")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Repeat("\t", len(parts)+1)
}
