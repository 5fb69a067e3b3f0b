package relational

import "github.com/roach88/arbor/internal/repo"

// Column is a view of a rel:column node.
type Column struct {
	*Object
}

var _ Element = (*Column)(nil)

func newColumn(tx *repo.Transaction, s repo.Store, path string) *Column {
	return &Column{Object: NewObject(tx, s, path)}
}

func (c *Column) Kind() Kind { return KindColumn }

// Datatype returns the column's data type name, DefaultDatatype when unset.
func (c *Column) Datatype() (string, error) {
	s, ok, err := c.stringValue(PropDatatype)
	if err != nil || !ok {
		return DefaultDatatype, err
	}
	return s, nil
}

// SetDatatype sets the data type name. "" removes it.
func (c *Column) SetDatatype(s string) error {
	return c.setString(PropDatatype, s)
}

// Length returns the declared length, DefaultLength when unset.
func (c *Column) Length() (int64, error) {
	return c.longValue(PropLength, DefaultLength)
}

func (c *Column) SetLength(n int64) error {
	return c.setLong(PropLength, n)
}

// IsNullable reports whether the column accepts nulls, DefaultNullable when unset.
func (c *Column) IsNullable() (bool, error) {
	return c.boolValue(PropNullable, DefaultNullable)
}

func (c *Column) SetNullable(b bool) error {
	return c.setBool(PropNullable, b)
}

func (c *Column) DefaultValue() (string, error) {
	return c.stringOrEmpty(PropDefaultValue)
}

// SetDefaultValue sets the default value. "" removes it.
func (c *Column) SetDefaultValue(s string) error {
	return c.setString(PropDefaultValue, s)
}

func (c *Column) Description() (string, error) {
	return c.stringOrEmpty(PropDescription)
}

func (c *Column) SetDescription(s string) error {
	return c.setString(PropDescription, s)
}

func (c *Column) NameInSource() (string, error) {
	return c.stringOrEmpty(PropNameInSource)
}

func (c *Column) SetNameInSource(s string) error {
	return c.setString(PropNameInSource, s)
}

// Table returns the table owning this column.
func (c *Column) Table() (*Table, error) {
	parent, err := c.Parent()
	if err != nil {
		return nil, err
	}
	return TableResolver.Resolve(parent)
}
