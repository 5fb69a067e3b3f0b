package relational

import (
	"github.com/roach88/arbor/internal/repo"
)

// Table is a view of a rel:table node.
type Table struct {
	*Object
}

var _ Element = (*Table)(nil)

func newTable(tx *repo.Transaction, s repo.Store, path string) *Table {
	return &Table{Object: NewObject(tx, s, path)}
}

func (t *Table) Kind() Kind { return KindTable }

// Cardinality returns the row count estimate, DefaultCardinality when unset.
func (t *Table) Cardinality() (int64, error) {
	return t.longValue(PropCardinality, DefaultCardinality)
}

func (t *Table) SetCardinality(n int64) error {
	return t.setLong(PropCardinality, n)
}

func (t *Table) Description() (string, error) {
	return t.stringOrEmpty(PropDescription)
}

// SetDescription sets the description. "" removes it.
func (t *Table) SetDescription(s string) error {
	return t.setString(PropDescription, s)
}

func (t *Table) IsMaterialized() (bool, error) {
	return t.boolValue(PropMaterialized, DefaultMaterialized)
}

func (t *Table) SetMaterialized(b bool) error {
	return t.setBool(PropMaterialized, b)
}

// MaterializedTable returns the table holding this table's materialized
// rows, or nil when unset or the reference no longer resolves.
func (t *Table) MaterializedTable() (*Table, error) {
	ids, err := t.referenceIDs(PropMaterializedTable)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return t.tableByID(ids[0])
}

// SetMaterializedTable points at target. nil removes the reference.
func (t *Table) SetMaterializedTable(target *Table) error {
	if target == nil {
		return t.setReferences(PropMaterializedTable, false)
	}
	n, err := target.Node()
	if err != nil {
		return err
	}
	return t.setReferences(PropMaterializedTable, false, n.ID)
}

func (t *Table) NameInSource() (string, error) {
	return t.stringOrEmpty(PropNameInSource)
}

// SetNameInSource sets the source name. "" removes it.
func (t *Table) SetNameInSource(s string) error {
	return t.setString(PropNameInSource, s)
}

// OnCommitValue returns the on-commit behavior, "" when unset or unknown.
func (t *Table) OnCommitValue() (OnCommit, error) {
	s, err := t.stringOrEmpty(PropOnCommit)
	if err != nil {
		return "", err
	}
	oc, _ := ParseOnCommit(s)
	return oc, nil
}

// SetOnCommitValue sets the on-commit behavior. "" removes it.
func (t *Table) SetOnCommitValue(oc OnCommit) error {
	if oc != "" {
		if _, ok := ParseOnCommit(string(oc)); !ok {
			return repo.Errorf(repo.CodeInvalidArgument, "set on commit", "unknown on commit value %q", oc)
		}
	}
	return t.setString(PropOnCommit, string(oc))
}

func (t *Table) QueryExpression() (string, error) {
	return t.stringOrEmpty(PropQueryExpression)
}

// SetQueryExpression sets the query expression. "" removes it.
func (t *Table) SetQueryExpression(s string) error {
	return t.setString(PropQueryExpression, s)
}

// TemporaryTableType returns the temporary table scope, "" when unset or unknown.
func (t *Table) TemporaryTableType() (TemporaryType, error) {
	s, err := t.stringOrEmpty(PropTemporaryTableType)
	if err != nil {
		return "", err
	}
	tt, _ := ParseTemporaryType(s)
	return tt, nil
}

// SetTemporaryTableType sets the temporary table scope. "" removes it.
func (t *Table) SetTemporaryTableType(tt TemporaryType) error {
	if tt != "" {
		if _, ok := ParseTemporaryType(string(tt)); !ok {
			return repo.Errorf(repo.CodeInvalidArgument, "set temporary table type", "unknown temporary table type %q", tt)
		}
	}
	return t.setString(PropTemporaryTableType, string(tt))
}

func (t *Table) IsUpdatable() (bool, error) {
	return t.boolValue(PropUpdatable, DefaultUpdatable)
}

func (t *Table) SetUpdatable(b bool) error {
	return t.setBool(PropUpdatable, b)
}

func (t *Table) UUID() (string, error) {
	return t.stringOrEmpty(PropUUID)
}

// SetUUID sets the UUID option. "" removes it.
func (t *Table) SetUUID(s string) error {
	return t.setString(PropUUID, s)
}

// AddColumn creates a new column. Same-name columns become siblings.
func (t *Table) AddColumn(name string) (*Column, error) {
	n, err := t.addChild("add column", name, TypeColumn)
	if err != nil {
		return nil, err
	}
	return newColumn(t.tx, t.store, n.Path), nil
}

// Columns returns the columns whose names match one of patterns
// (path.Match syntax). No patterns returns every column.
func (t *Table) Columns(patterns ...string) ([]*Column, error) {
	nodes, err := t.childrenOfType(TypeColumn, patterns)
	if err != nil {
		return nil, err
	}
	out := make([]*Column, len(nodes))
	for i, n := range nodes {
		out[i] = newColumn(t.tx, t.store, n.Path)
	}
	return out, nil
}

// RemoveColumn deletes the first column called name.
func (t *Table) RemoveColumn(name string) error {
	n, err := t.childNamed("remove column", TypeColumn, name)
	if err != nil {
		return err
	}
	return t.store.Remove(t.tx, n)
}

// SetPrimaryKey replaces any existing primary key with a new one called name.
func (t *Table) SetPrimaryKey(name string) (*PrimaryKey, error) {
	if err := t.RemovePrimaryKey(); err != nil && !repo.IsNotFound(err) {
		return nil, err
	}
	n, err := t.addChild("set primary key", name, TypePrimaryKey)
	if err != nil {
		return nil, err
	}
	return newPrimaryKey(t.tx, t.store, n.Path), nil
}

// PrimaryKey returns the primary key, or nil when the table has none.
func (t *Table) PrimaryKey() (*PrimaryKey, error) {
	nodes, err := t.childrenOfType(TypePrimaryKey, nil)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	return newPrimaryKey(t.tx, t.store, nodes[0].Path), nil
}

// RemovePrimaryKey deletes the primary key. A table without one fails NOT_FOUND.
func (t *Table) RemovePrimaryKey() error {
	pk, err := t.PrimaryKey()
	if err != nil {
		return err
	}
	if pk == nil {
		return repo.NewNotFound("remove primary key", t.path, "primary key")
	}
	return pk.Remove()
}

// AddForeignKey creates a foreign key called name referencing referenced.
func (t *Table) AddForeignKey(name string, referenced *Table) (*ForeignKey, error) {
	const op = "add foreign key"
	if referenced == nil {
		return nil, repo.Errorf(repo.CodeInvalidArgument, op, "referenced table is required")
	}
	n, err := t.addChild(op, name, TypeForeignKey)
	if err != nil {
		return nil, err
	}
	fk := newForeignKey(t.tx, t.store, n.Path)
	if err := fk.SetReferencesTable(referenced); err != nil {
		return nil, err
	}
	return fk, nil
}

// ForeignKeys returns the foreign keys whose names match one of patterns.
func (t *Table) ForeignKeys(patterns ...string) ([]*ForeignKey, error) {
	nodes, err := t.childrenOfType(TypeForeignKey, patterns)
	if err != nil {
		return nil, err
	}
	out := make([]*ForeignKey, len(nodes))
	for i, n := range nodes {
		out[i] = newForeignKey(t.tx, t.store, n.Path)
	}
	return out, nil
}

// RemoveForeignKey deletes the first foreign key called name.
func (t *Table) RemoveForeignKey(name string) error {
	n, err := t.childNamed("remove foreign key", TypeForeignKey, name)
	if err != nil {
		return err
	}
	return t.store.Remove(t.tx, n)
}

// Model returns the model owning this table.
func (t *Table) Model() (*Model, error) {
	parent, err := t.Parent()
	if err != nil {
		return nil, err
	}
	return ModelResolver.Resolve(parent)
}

// tableByID returns the table with identifier id, nil when it is gone.
func (t *Table) tableByID(id string) (*Table, error) {
	n, err := t.store.GetUsingID(t.tx, id)
	if repo.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return TableResolver.ResolveNode(t.tx, t.store, n)
}
