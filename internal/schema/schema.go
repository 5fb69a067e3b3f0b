package schema

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/arbor/internal/value"
)

// PropertyDescriptor declares one property of a node type.
type PropertyDescriptor struct {
	Name       string
	Type       value.Type
	Multiple   bool
	Mandatory  bool
	Default    string // lexical default, valid when HasDefault
	HasDefault bool

	// DeclaringType is the node type that declares the property.
	// For inherited descriptors it names the supertype.
	DeclaringType string
}

// NodeType is a named node type with its declared properties.
type NodeType struct {
	Name string

	// Mixin types are attached as descriptors, never as primary types.
	Mixin bool

	// Residual types accept properties they do not declare.
	Residual bool

	Supertypes []string

	// Properties declared directly by this type, sorted by name.
	Properties []PropertyDescriptor
}

// Registry is an immutable set of node types.
// A nil *Registry behaves as an empty registry.
type Registry struct {
	types map[string]NodeType
}

// NewRegistry builds a registry from node types.
// Every supertype must be registered and inheritance must be acyclic.
func NewRegistry(types ...NodeType) (*Registry, error) {
	r := &Registry{types: make(map[string]NodeType, len(types))}
	for _, nt := range types {
		if nt.Name == "" {
			return nil, fmt.Errorf("node type with empty name")
		}
		if _, dup := r.types[nt.Name]; dup {
			return nil, fmt.Errorf("node type %q declared twice", nt.Name)
		}
		r.types[nt.Name] = normalize(nt)
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	return r, nil
}

// normalize sorts properties and fills DeclaringType.
func normalize(nt NodeType) NodeType {
	props := slices.Clone(nt.Properties)
	for i := range props {
		props[i].DeclaringType = nt.Name
	}
	slices.SortFunc(props, func(a, b PropertyDescriptor) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	nt.Properties = props
	nt.Supertypes = slices.Clone(nt.Supertypes)
	return nt
}

func (r *Registry) check() error {
	for _, name := range r.Names() {
		nt := r.types[name]
		for _, sup := range nt.Supertypes {
			if _, ok := r.types[sup]; !ok {
				return fmt.Errorf("node type %q: unknown supertype %q", name, sup)
			}
		}
		if r.inherits(name, name, map[string]bool{}) {
			return fmt.Errorf("node type %q: inheritance cycle", name)
		}
	}
	return nil
}

// inherits reports whether target is reachable from name's supertypes.
func (r *Registry) inherits(name, target string, seen map[string]bool) bool {
	for _, sup := range r.types[name].Supertypes {
		if sup == target {
			return true
		}
		if seen[sup] {
			continue
		}
		seen[sup] = true
		if r.inherits(sup, target, seen) {
			return true
		}
	}
	return false
}

// Lookup returns the named node type.
func (r *Registry) Lookup(name string) (NodeType, bool) {
	if r == nil {
		return NodeType{}, false
	}
	nt, ok := r.types[name]
	return nt, ok
}

// Names returns all registered type names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.types))
}

// lineage returns name followed by its supertypes, depth first, without repeats.
func (r *Registry) lineage(name string) []string {
	var out []string
	seen := map[string]bool{}
	stack := []string{name}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		nt, ok := r.types[n]
		if !ok {
			continue
		}
		out = append(out, n)
		for i := len(nt.Supertypes) - 1; i >= 0; i-- {
			stack = append(stack, nt.Supertypes[i])
		}
	}
	return out
}

// PropertyDescriptors returns the properties of a type including inherited
// ones, sorted by name. A subtype's declaration wins over its supertypes'.
func (r *Registry) PropertyDescriptors(typeName string) []PropertyDescriptor {
	if r == nil {
		return nil
	}
	byName := map[string]PropertyDescriptor{}
	for _, n := range r.lineage(typeName) {
		for _, pd := range r.types[n].Properties {
			if _, ok := byName[pd.Name]; !ok {
				byName[pd.Name] = pd
			}
		}
	}
	out := make([]PropertyDescriptor, 0, len(byName))
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		out = append(out, byName[name])
	}
	return out
}

// PropertyDescriptor returns the named property of a type, searching supertypes.
func (r *Registry) PropertyDescriptor(typeName, name string) (PropertyDescriptor, bool) {
	if r == nil {
		return PropertyDescriptor{}, false
	}
	for _, n := range r.lineage(typeName) {
		for _, pd := range r.types[n].Properties {
			if pd.Name == name {
				return pd, true
			}
		}
	}
	return PropertyDescriptor{}, false
}

// FindPropertyDescriptor searches the primary type first, then each mixin.
func (r *Registry) FindPropertyDescriptor(primary string, mixins []string, name string) (PropertyDescriptor, bool) {
	if pd, ok := r.PropertyDescriptor(primary, name); ok {
		return pd, true
	}
	for _, m := range mixins {
		if pd, ok := r.PropertyDescriptor(m, name); ok {
			return pd, true
		}
	}
	return PropertyDescriptor{}, false
}

// IsResidual reports whether a node with these types accepts undeclared
// properties. Unknown primary types are residual so legacy nodes stay writable.
func (r *Registry) IsResidual(primary string, mixins []string) bool {
	if r == nil {
		return true
	}
	if _, ok := r.types[primary]; !ok {
		return true
	}
	for _, t := range append([]string{primary}, mixins...) {
		for _, n := range r.lineage(t) {
			if r.types[n].Residual {
				return true
			}
		}
	}
	return false
}

// IsMixin reports whether name is a registered mixin type.
func (r *Registry) IsMixin(name string) bool {
	nt, ok := r.Lookup(name)
	return ok && nt.Mixin
}

// Merge returns a new registry holding r's types overridden by other's.
func (r *Registry) Merge(other *Registry) (*Registry, error) {
	var types []NodeType
	if other != nil {
		for _, name := range other.Names() {
			types = append(types, other.types[name])
		}
	}
	return r.With(types...)
}

// With returns a new registry holding r's types plus types, which replace
// same-named types of r. New types may inherit from types of r.
func (r *Registry) With(extra ...NodeType) (*Registry, error) {
	merged := map[string]NodeType{}
	if r != nil {
		maps.Copy(merged, r.types)
	}
	for _, nt := range extra {
		merged[nt.Name] = nt
	}
	types := make([]NodeType, 0, len(merged))
	for _, name := range slices.Sorted(maps.Keys(merged)) {
		types = append(types, merged[name])
	}
	return NewRegistry(types...)
}
