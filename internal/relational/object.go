package relational

import (
	"fmt"
	"path"
	"strings"

	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/value"
)

// Element is a path-bound handle on a node, generic or typed.
type Element interface {
	Transaction() *repo.Transaction
	Store() repo.Store
	Path() string
	Kind() Kind
}

// Object is the generic view every typed view embeds.
//
// A view is bound to a path, not a node. Same-name sibling indexes are
// positional, so removing col shifts col[2] to col and an existing col[2]
// view then reads NOT_FOUND. Re-resolve views after removing a sibling.
type Object struct {
	tx    *repo.Transaction
	store repo.Store
	path  string
}

var _ Element = (*Object)(nil)

// NewObject returns a generic view of the node at path.
func NewObject(tx *repo.Transaction, s repo.Store, path string) *Object {
	return &Object{tx: tx, store: s, path: path}
}

// ObjectOf returns a generic view of node.
func ObjectOf(tx *repo.Transaction, s repo.Store, node repo.Node) *Object {
	return NewObject(tx, s, node.Path)
}

func (o *Object) Transaction() *repo.Transaction { return o.tx }
func (o *Object) Store() repo.Store              { return o.store }
func (o *Object) Path() string                   { return o.path }
func (o *Object) Kind() Kind                     { return KindUnknown }

// Name returns the bare node name, "" for the root.
func (o *Object) Name() string {
	return repo.StripIndexes(repo.LastSegment(o.path))
}

// Node reads the underlying node.
func (o *Object) Node() (repo.Node, error) {
	if o.store == nil {
		return repo.Node{}, repo.Errorf(repo.CodeInvalidArgument, "node", "store is required")
	}
	return o.store.Get(o.tx, o.path)
}

// Exists reports whether the underlying node still exists.
func (o *Object) Exists() (bool, error) {
	if o.store == nil {
		return false, repo.Errorf(repo.CodeInvalidArgument, "exists", "store is required")
	}
	return o.store.Exists(o.tx, o.path)
}

// Parent returns a generic view of the parent node.
func (o *Object) Parent() (*Object, error) {
	if repo.TrimSlashes(o.path) == "" {
		return nil, repo.NewNotFound("parent", o.path, "parent of the root")
	}
	return NewObject(o.tx, o.store, repo.ParentPath(o.path)), nil
}

// Remove deletes the underlying node and its subtree.
func (o *Object) Remove() error {
	n, err := o.Node()
	if err != nil {
		return err
	}
	return o.store.Remove(o.tx, n)
}

// Children returns the children the default registry can resolve, as
// typed views in store order. Other children are left out.
func (o *Object) Children() ([]Element, error) {
	return DefaultRegistry().Project(o)
}

// StatementOptions returns the statement options attached to this node.
func (o *Object) StatementOptions() ([]*StatementOption, error) {
	nodes, err := o.childrenOfType(TypeStatementOption, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*StatementOption, len(nodes))
	for i, n := range nodes {
		out[i] = newStatementOption(o.tx, o.store, n.Path)
	}
	return out, nil
}

// StatementOptionNamed returns the statement option called name.
func (o *Object) StatementOptionNamed(name string) (*StatementOption, error) {
	const op = "statement option"
	name = repo.NormalizeName(strings.TrimSpace(name))
	if name == "" {
		return nil, repo.Errorf(repo.CodeInvalidArgument, op, "option name is required")
	}
	opts, err := o.StatementOptions()
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if opt.Name() == name {
			return opt, nil
		}
	}
	return nil, repo.NewNotFound(op, repo.Join(o.path, name), "statement option")
}

// SetStatementOption creates or updates the statement option called name.
// A blank value removes the option and returns nil.
func (o *Object) SetStatementOption(name, optionValue string) (*StatementOption, error) {
	const op = "set statement option"
	name = repo.NormalizeName(strings.TrimSpace(name))
	if name == "" {
		return nil, repo.Errorf(repo.CodeInvalidArgument, op, "option name is required")
	}
	if strings.TrimSpace(optionValue) == "" {
		if err := o.RemoveStatementOption(name); err != nil && !repo.IsNotFound(err) {
			return nil, err
		}
		return nil, nil
	}

	opt, err := o.StatementOptionNamed(name)
	if repo.IsNotFound(err) {
		n, nerr := o.Node()
		if nerr != nil {
			return nil, nerr
		}
		child, aerr := o.store.AddChild(o.tx, n, name, TypeStatementOption)
		if aerr != nil {
			return nil, aerr
		}
		opt, err = newStatementOption(o.tx, o.store, child.Path), nil
	}
	if err != nil {
		return nil, err
	}
	if err := opt.SetOption(optionValue); err != nil {
		return nil, err
	}
	return opt, nil
}

// RemoveStatementOption deletes the statement option called name.
func (o *Object) RemoveStatementOption(name string) error {
	opt, err := o.StatementOptionNamed(name)
	if err != nil {
		return err
	}
	return opt.Remove()
}

// childrenOfType returns the children of type nodeType whose names match
// one of patterns. No patterns matches every name.
func (o *Object) childrenOfType(nodeType string, patterns []string) ([]repo.Node, error) {
	const op = "children"
	for _, p := range patterns {
		if p == "" {
			return nil, repo.Errorf(repo.CodeInvalidArgument, op, "empty name pattern")
		}
		if _, err := path.Match(p, ""); err != nil {
			return nil, repo.Errorf(repo.CodeInvalidArgument, op, "bad name pattern %q", p)
		}
	}
	n, err := o.Node()
	if err != nil {
		return nil, err
	}
	children, err := o.store.Children(o.tx, n)
	if err != nil {
		return nil, err
	}
	out := []repo.Node{}
	for _, c := range children {
		if c.IsType(nodeType) && matchesAny(c.Name, patterns) {
			out = append(out, c)
		}
	}
	return out, nil
}

// childNamed returns the first child of type nodeType called name.
func (o *Object) childNamed(op, nodeType, name string) (repo.Node, error) {
	name = repo.NormalizeName(strings.TrimSpace(name))
	if name == "" {
		return repo.Node{}, repo.Errorf(repo.CodeInvalidArgument, op, "name is required")
	}
	nodes, err := o.childrenOfType(nodeType, nil)
	if err != nil {
		return repo.Node{}, err
	}
	for _, n := range nodes {
		if n.Name == name {
			return n, nil
		}
	}
	return repo.Node{}, &repo.Error{
		Code:     repo.CodeNotFound,
		Op:       op,
		Message:  fmt.Sprintf("no %s named %s", nodeType, name),
		Path:     o.path,
		NodeType: nodeType,
	}
}

// addChild creates a child of type nodeType.
func (o *Object) addChild(op, name, nodeType string) (repo.Node, error) {
	if strings.TrimSpace(name) == "" {
		return repo.Node{}, repo.Errorf(repo.CodeInvalidArgument, op, "name is required")
	}
	n, err := o.Node()
	if err != nil {
		return repo.Node{}, err
	}
	return o.store.AddChild(o.tx, n, strings.TrimSpace(name), nodeType)
}

func matchesAny(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

// property reads the named property. ok is false when it is absent.
func (o *Object) property(name string) (value.Property, bool, error) {
	n, err := o.Node()
	if err != nil {
		return value.Property{}, false, err
	}
	has, err := o.store.HasProperty(o.tx, n, name)
	if err != nil || !has {
		return value.Property{}, false, err
	}
	p, err := o.store.Property(o.tx, n, name)
	if err != nil {
		return value.Property{}, false, err
	}
	return p, true, nil
}

func (o *Object) stringValue(name string) (string, bool, error) {
	p, ok, err := o.property(name)
	if err != nil || !ok {
		return "", false, err
	}
	v, isString := p.Value().(value.StringValue)
	if !isString {
		return "", false, o.mismatch(name, p.Type, value.TypeString)
	}
	return string(v), true, nil
}

// stringOrEmpty returns the named string property, "" when absent.
func (o *Object) stringOrEmpty(name string) (string, error) {
	s, _, err := o.stringValue(name)
	return s, err
}

// setString writes a single string. "" removes the property.
func (o *Object) setString(name, s string) error {
	n, err := o.Node()
	if err != nil {
		return err
	}
	if s == "" {
		return o.store.RemoveProperty(o.tx, n, name)
	}
	return o.store.SetProperty(o.tx, n, name, value.TypeString, false, value.String(s))
}

func (o *Object) longValue(name string, def int64) (int64, error) {
	p, ok, err := o.property(name)
	if err != nil || !ok {
		return def, err
	}
	v, isLong := p.Value().(value.LongValue)
	if !isLong {
		return def, o.mismatch(name, p.Type, value.TypeLong)
	}
	return int64(v), nil
}

func (o *Object) setLong(name string, v int64) error {
	n, err := o.Node()
	if err != nil {
		return err
	}
	return o.store.SetProperty(o.tx, n, name, value.TypeLong, false, value.Long(v))
}

func (o *Object) boolValue(name string, def bool) (bool, error) {
	p, ok, err := o.property(name)
	if err != nil || !ok {
		return def, err
	}
	v, isBool := p.Value().(value.BoolValue)
	if !isBool {
		return def, o.mismatch(name, p.Type, value.TypeBoolean)
	}
	return bool(v), nil
}

func (o *Object) setBool(name string, v bool) error {
	n, err := o.Node()
	if err != nil {
		return err
	}
	return o.store.SetProperty(o.tx, n, name, value.TypeBoolean, false, value.Bool(v))
}

// referenceIDs returns the target identifiers of a reference property.
func (o *Object) referenceIDs(name string) ([]string, error) {
	p, ok, err := o.property(name)
	if err != nil || !ok {
		return nil, err
	}
	if p.Type != value.TypeReference {
		return nil, o.mismatch(name, p.Type, value.TypeReference)
	}
	return p.Lexical(), nil
}

// setReferences replaces a reference property. No ids removes it.
func (o *Object) setReferences(name string, multiple bool, ids ...string) error {
	n, err := o.Node()
	if err != nil {
		return err
	}
	vals := make([]value.Value, len(ids))
	for i, id := range ids {
		vals[i] = value.Reference(id)
	}
	return o.store.SetProperty(o.tx, n, name, value.TypeReference, multiple, vals...)
}

func (o *Object) mismatch(name string, got, want value.Type) error {
	return repo.NewTypeMismatch("property", repo.Join(o.path, name), "",
		fmt.Sprintf("property is %s, expected %s", got, want))
}
