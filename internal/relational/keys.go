package relational

import (
	"slices"

	"github.com/roach88/arbor/internal/repo"
)

// tableKey holds the constrained columns shared by primary and foreign keys.
type tableKey struct {
	*Object
}

// AddColumn appends column to the constrained columns.
func (k tableKey) AddColumn(column *Column) error {
	if column == nil {
		return repo.Errorf(repo.CodeInvalidArgument, "add column", "column is required")
	}
	n, err := column.Node()
	if err != nil {
		return err
	}
	ids, err := k.liveColumnIDs()
	if err != nil {
		return err
	}
	return k.setReferences(PropTableElementRefs, true, append(ids, n.ID)...)
}

// Columns returns the constrained columns. References to removed columns
// are skipped.
func (k tableKey) Columns() ([]*Column, error) {
	ids, err := k.referenceIDs(PropTableElementRefs)
	if err != nil {
		return nil, err
	}
	out := []*Column{}
	for _, id := range ids {
		n, err := k.store.GetUsingID(k.tx, id)
		if repo.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		c, err := ColumnResolver.ResolveNode(k.tx, k.store, n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// RemoveColumn drops column from the constrained columns.
func (k tableKey) RemoveColumn(column *Column) error {
	const op = "remove column"
	if column == nil {
		return repo.Errorf(repo.CodeInvalidArgument, op, "column is required")
	}
	n, err := column.Node()
	if err != nil {
		return err
	}
	ids, err := k.liveColumnIDs()
	if err != nil {
		return err
	}
	i := slices.Index(ids, n.ID)
	if i < 0 {
		return repo.NewNotFound(op, column.Path(), "constrained column")
	}
	return k.setReferences(PropTableElementRefs, true, slices.Delete(ids, i, i+1)...)
}

// liveColumnIDs returns the constrained column ids whose nodes still exist.
// The store rejects references to missing nodes, so writes start from it.
func (k tableKey) liveColumnIDs() ([]string, error) {
	ids, err := k.referenceIDs(PropTableElementRefs)
	if err != nil {
		return nil, err
	}
	live := ids[:0]
	for _, id := range ids {
		_, err := k.store.GetUsingID(k.tx, id)
		if repo.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		live = append(live, id)
	}
	return live, nil
}

// Table returns the table owning this key.
func (k tableKey) Table() (*Table, error) {
	parent, err := k.Parent()
	if err != nil {
		return nil, err
	}
	return TableResolver.Resolve(parent)
}

// PrimaryKey is a view of a rel:primaryKey node.
type PrimaryKey struct {
	tableKey
}

var _ Element = (*PrimaryKey)(nil)

func newPrimaryKey(tx *repo.Transaction, s repo.Store, path string) *PrimaryKey {
	return &PrimaryKey{tableKey{NewObject(tx, s, path)}}
}

func (k *PrimaryKey) Kind() Kind { return KindPrimaryKey }

// ForeignKey is a view of a rel:foreignKey node.
type ForeignKey struct {
	tableKey
}

var _ Element = (*ForeignKey)(nil)

func newForeignKey(tx *repo.Transaction, s repo.Store, path string) *ForeignKey {
	return &ForeignKey{tableKey{NewObject(tx, s, path)}}
}

func (k *ForeignKey) Kind() Kind { return KindForeignKey }

// ReferencesTable returns the referenced table, nil when unset or removed.
func (k *ForeignKey) ReferencesTable() (*Table, error) {
	ids, err := k.referenceIDs(PropTableRef)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	n, err := k.store.GetUsingID(k.tx, ids[0])
	if repo.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return TableResolver.ResolveNode(k.tx, k.store, n)
}

// SetReferencesTable points the key at table. The reference may be cyclic.
func (k *ForeignKey) SetReferencesTable(table *Table) error {
	if table == nil {
		return repo.Errorf(repo.CodeInvalidArgument, "set references table", "table is required")
	}
	n, err := table.Node()
	if err != nil {
		return err
	}
	return k.setReferences(PropTableRef, false, n.ID)
}
