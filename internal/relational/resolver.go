package relational

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/arbor/internal/metrics"
	"github.com/roach88/arbor/internal/repo"
)

// Resolver is the kind-erased form of a TypeResolver held by a Registry.
type Resolver interface {
	Identifier() Kind
	NodeType() string
	Priority() int
	Resolvable(node repo.Node) bool
	ResolveElement(e Element) (Element, error)
}

// TypeResolver recognizes nodes of one view kind and wraps them.
type TypeResolver[V Element] struct {
	kind      Kind
	nodeType  string
	priority  int
	construct func(tx *repo.Transaction, s repo.Store, path string) V
}

var _ Resolver = (*TypeResolver[*Table])(nil)

// NewTypeResolver creates a resolver for nodes of nodeType, either as
// primary type or descriptor.
func NewTypeResolver[V Element](kind Kind, nodeType string, priority int, construct func(*repo.Transaction, repo.Store, string) V) *TypeResolver[V] {
	return &TypeResolver[V]{kind: kind, nodeType: nodeType, priority: priority, construct: construct}
}

func (r *TypeResolver[V]) Identifier() Kind { return r.kind }
func (r *TypeResolver[V]) NodeType() string { return r.nodeType }
func (r *TypeResolver[V]) Priority() int    { return r.priority }

// Resolvable reports whether node has the resolver's type. It only looks at
// the node's primary type and descriptors.
func (r *TypeResolver[V]) Resolvable(node repo.Node) bool {
	return !node.IsZero() && node.IsType(r.nodeType)
}

// Resolve returns e as a V. A V is returned unchanged; anything else is
// re-read from the store and wrapped in a new view bound to the same
// transaction, store and path.
func (r *TypeResolver[V]) Resolve(e Element) (V, error) {
	const op = "resolve"
	var zero V
	if e == nil {
		return zero, repo.Errorf(repo.CodeInvalidArgument, op, "element is required")
	}
	if v, ok := e.(V); ok {
		return v, nil
	}
	s := e.Store()
	if s == nil {
		return zero, repo.Errorf(repo.CodeInvalidArgument, op, "store is required")
	}
	n, err := s.Get(e.Transaction(), e.Path())
	if err != nil {
		return zero, err
	}
	if !r.Resolvable(n) {
		return zero, repo.NewTypeMismatch(op, n.Path, n.PrimaryType,
			fmt.Sprintf("node cannot be resolved as %s", r.kind))
	}
	return r.construct(e.Transaction(), s, n.Path), nil
}

// ResolveNode wraps node as a V.
func (r *TypeResolver[V]) ResolveNode(tx *repo.Transaction, s repo.Store, node repo.Node) (V, error) {
	return r.Resolve(ObjectOf(tx, s, node))
}

func (r *TypeResolver[V]) ResolveElement(e Element) (Element, error) {
	v, err := r.Resolve(e)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Resolvers for the built-in views.
var (
	StatementOptionResolver = NewTypeResolver(KindStatementOption, TypeStatementOption, 10, newStatementOption)
	ColumnResolver          = NewTypeResolver(KindColumn, TypeColumn, 20, newColumn)
	PrimaryKeyResolver      = NewTypeResolver(KindPrimaryKey, TypePrimaryKey, 30, newPrimaryKey)
	ForeignKeyResolver      = NewTypeResolver(KindForeignKey, TypeForeignKey, 40, newForeignKey)
	TableResolver           = NewTypeResolver(KindTable, TypeTable, 50, newTable)
	ModelResolver           = NewTypeResolver(KindModel, TypeModel, 60, newModel)
)

// DefaultResolvers returns the built-in resolvers.
func DefaultResolvers() []Resolver {
	return []Resolver{
		StatementOptionResolver,
		ColumnResolver,
		PrimaryKeyResolver,
		ForeignKeyResolver,
		TableResolver,
		ModelResolver,
	}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry(nil, DefaultResolvers()...)
})

// DefaultRegistry returns the shared registry of built-in resolvers. It
// records no metrics; use WithMetrics for a counting copy.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

// Registry tries resolvers in ascending priority, ties broken by identifier.
// Safe for concurrent use; it is never modified after creation.
type Registry struct {
	resolvers []Resolver
	metrics   *metrics.Metrics
}

// NewRegistry creates a registry over resolvers. m may be nil.
func NewRegistry(m *metrics.Metrics, resolvers ...Resolver) *Registry {
	sorted := slices.Clone(resolvers)
	slices.SortStableFunc(sorted, func(a, b Resolver) int {
		if c := cmp.Compare(a.Priority(), b.Priority()); c != 0 {
			return c
		}
		return cmp.Compare(a.Identifier(), b.Identifier())
	})
	return &Registry{resolvers: sorted, metrics: m}
}

// WithMetrics returns a copy of r that counts resolutions in m.
func (r *Registry) WithMetrics(m *metrics.Metrics) *Registry {
	return &Registry{resolvers: r.resolvers, metrics: m}
}

// Resolvers returns the resolvers in the order they are tried.
func (r *Registry) Resolvers() []Resolver {
	return slices.Clone(r.resolvers)
}

// Lookup returns the resolver for kind.
func (r *Registry) Lookup(kind Kind) (Resolver, bool) {
	for _, res := range r.resolvers {
		if res.Identifier() == kind {
			return res, true
		}
	}
	return nil, false
}

// Match returns the first resolver that accepts node.
func (r *Registry) Match(node repo.Node) (Resolver, bool) {
	for _, res := range r.resolvers {
		if res.Resolvable(node) {
			return res, true
		}
	}
	return nil, false
}

// Resolve wraps e in the view of the first matching resolver. A node no
// resolver accepts fails with TYPE_MISMATCH.
func (r *Registry) Resolve(e Element) (Element, error) {
	const op = "resolve"
	if e == nil || e.Store() == nil {
		return nil, repo.Errorf(repo.CodeInvalidArgument, op, "element with a store is required")
	}
	n, err := e.Store().Get(e.Transaction(), e.Path())
	if err != nil {
		return nil, err
	}
	res, ok := r.Match(n)
	if !ok {
		r.metrics.Resolution(string(KindUnknown), metrics.OutcomeMismatch)
		return nil, repo.NewTypeMismatch(op, n.Path, n.PrimaryType, "no resolver accepts the node")
	}
	v, err := res.ResolveElement(e)
	if err != nil {
		r.metrics.Resolution(string(res.Identifier()), metrics.OutcomeMismatch)
		return nil, err
	}
	r.metrics.Resolution(string(res.Identifier()), metrics.OutcomeResolved)
	return v, nil
}

// ResolveNode wraps node in the view of the first matching resolver.
func (r *Registry) ResolveNode(tx *repo.Transaction, s repo.Store, node repo.Node) (Element, error) {
	return r.Resolve(ObjectOf(tx, s, node))
}

// Project returns the children of e that some resolver accepts, as typed
// views in store order.
func (r *Registry) Project(e Element) ([]Element, error) {
	const op = "project"
	if e == nil || e.Store() == nil {
		return nil, repo.Errorf(repo.CodeInvalidArgument, op, "element with a store is required")
	}
	s, tx := e.Store(), e.Transaction()
	n, err := s.Get(tx, e.Path())
	if err != nil {
		return nil, err
	}
	children, err := s.Children(tx, n)
	if err != nil {
		return nil, err
	}
	out := []Element{}
	for _, c := range children {
		res, ok := r.Match(c)
		if !ok {
			continue
		}
		v, err := res.ResolveElement(ObjectOf(tx, s, c))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
