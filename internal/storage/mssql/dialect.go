package mssql

import (
	"fmt"
	"strings"

	"ecommetl/internal/ddl"
	"ecommetl/internal/storage"
)

// Dialect renders T-SQL DDL with bracket-quoted identifiers. T-SQL has no
// CREATE TABLE IF NOT EXISTS, so the statement is guarded by OBJECT_ID.
type Dialect struct{}

func (Dialect) Name() string { return Kind }

// MapType maps numeric columns to FLOAT and everything else to NVARCHAR(MAX).
func (Dialect) MapType(kind string) string {
	if kind == storage.KindNumeric {
		return "FLOAT"
	}
	return "NVARCHAR(MAX)"
}

func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, ddl.Syntax{
		Name:  Kind,
		Quote: quoteIdent,
		Envelope: func(table, body string) string {
			return fmt.Sprintf(
				"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n  %s\n  );\nEND;",
				strings.ReplaceAll(table, "'", "''"), table, body)
		},
	})
}

// quoteIdent quotes one identifier with brackets, e.g. weird]id => [weird]]id].
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

func quoteFQN(fqn string) string { return ddl.QuoteFQN(fqn, quoteIdent) }
