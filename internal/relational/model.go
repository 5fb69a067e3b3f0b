package relational

import (
	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/tree"
)

// Model is a view of a rel:model node, the root of a relational schema.
type Model struct {
	*Object
}

var _ Element = (*Model)(nil)

func newModel(tx *repo.Transaction, s repo.Store, path string) *Model {
	return &Model{Object: NewObject(tx, s, path)}
}

// CreateModel finds or creates a model at path below parent. Missing
// intermediate nodes are nt:unstructured. An existing node at path that is
// not a model fails with TYPE_MISMATCH.
func CreateModel(tx *repo.Transaction, s repo.Store, parent repo.Node, path string) (*Model, error) {
	if repo.TrimSlashes(path) == "" {
		return nil, repo.Errorf(repo.CodeInvalidArgument, "create model", "model path is required")
	}
	n, err := tree.FindOrCreate(tx, s, parent, path, repo.DefaultNodeType, TypeModel)
	if err != nil {
		return nil, err
	}
	return ModelResolver.ResolveNode(tx, s, n)
}

func (m *Model) Kind() Kind { return KindModel }

func (m *Model) Description() (string, error) {
	return m.stringOrEmpty(PropDescription)
}

// SetDescription sets the description. "" removes it.
func (m *Model) SetDescription(s string) error {
	return m.setString(PropDescription, s)
}

// AddTable creates a new table.
func (m *Model) AddTable(name string) (*Table, error) {
	n, err := m.addChild("add table", name, TypeTable)
	if err != nil {
		return nil, err
	}
	return newTable(m.tx, m.store, n.Path), nil
}

// Tables returns the tables whose names match one of patterns
// (path.Match syntax). No patterns returns every table.
func (m *Model) Tables(patterns ...string) ([]*Table, error) {
	nodes, err := m.childrenOfType(TypeTable, patterns)
	if err != nil {
		return nil, err
	}
	out := make([]*Table, len(nodes))
	for i, n := range nodes {
		out[i] = newTable(m.tx, m.store, n.Path)
	}
	return out, nil
}

// RemoveTable deletes the first table called name.
func (m *Model) RemoveTable(name string) error {
	n, err := m.childNamed("remove table", TypeTable, name)
	if err != nil {
		return err
	}
	return m.store.Remove(m.tx, n)
}
