package relational

// Kind identifies a view variant.
type Kind string

const (
	KindUnknown         Kind = "UNKNOWN"
	KindModel           Kind = "MODEL"
	KindTable           Kind = "TABLE"
	KindColumn          Kind = "COLUMN"
	KindPrimaryKey      Kind = "PRIMARY_KEY"
	KindForeignKey      Kind = "FOREIGN_KEY"
	KindStatementOption Kind = "STATEMENT_OPTION"
)

// Node types backing the views.
const (
	TypeModel           = "rel:model"
	TypeTable           = "rel:table"
	TypeColumn          = "rel:column"
	TypePrimaryKey      = "rel:primaryKey"
	TypeForeignKey      = "rel:foreignKey"
	TypeStatementOption = "rel:statementOption"
)

// Property names.
const (
	PropDescription        = "rel:description"
	PropCardinality        = "rel:cardinality"
	PropMaterialized       = "rel:materialized"
	PropMaterializedTable  = "rel:materializedTable"
	PropNameInSource       = "rel:nameInSource"
	PropOnCommit           = "rel:onCommit"
	PropQueryExpression    = "rel:queryExpression"
	PropTemporaryTableType = "rel:temporaryTableType"
	PropUpdatable          = "rel:updatable"
	PropUUID               = "rel:uuid"
	PropDatatype           = "rel:datatype"
	PropLength             = "rel:length"
	PropNullable           = "rel:nullable"
	PropDefaultValue       = "rel:defaultValue"
	PropTableElementRefs   = "rel:tableElementRefs"
	PropTableRef           = "rel:tableRef"
	PropValue              = "rel:value"
)

// Defaults reported when a property is absent.
const (
	DefaultCardinality  int64 = -1
	DefaultMaterialized       = false
	DefaultUpdatable          = true
	DefaultDatatype           = "string"
	DefaultLength       int64 = 0
	DefaultNullable           = true
)

// OnCommit is the on-commit behavior of a temporary table.
type OnCommit string

const (
	OnCommitDeleteRows   OnCommit = "DELETE ROWS"
	OnCommitPreserveRows OnCommit = "PRESERVE ROWS"
)

// ParseOnCommit returns the OnCommit for s. The zero value and false are
// returned for anything else.
func ParseOnCommit(s string) (OnCommit, bool) {
	switch OnCommit(s) {
	case OnCommitDeleteRows, OnCommitPreserveRows:
		return OnCommit(s), true
	}
	return "", false
}

// TemporaryType is the scope of a temporary table.
type TemporaryType string

const (
	TemporaryGlobal TemporaryType = "GLOBAL"
	TemporaryLocal  TemporaryType = "LOCAL"
)

// ParseTemporaryType returns the TemporaryType for s. The zero value and
// false are returned for anything else.
func ParseTemporaryType(s string) (TemporaryType, bool) {
	switch TemporaryType(s) {
	case TemporaryGlobal, TemporaryLocal:
		return TemporaryType(s), true
	}
	return "", false
}
