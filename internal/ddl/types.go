// Package ddl defines a small, dialect-neutral model for CREATE TABLE
// statements. Storage backends supply a Syntax that controls identifier
// quoting and the statement envelope.
package ddl

// ColumnDef describes one column.
//
// Name is unquoted; quoting happens at render time. Default is a raw SQL
// expression.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name in dotted form (e.g. "schema.table") and the
// ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
