package sqlite

import (
	"strings"

	"ecommetl/internal/ddl"
	"ecommetl/internal/storage"
)

// Dialect renders SQLite DDL with double-quoted identifiers.
type Dialect struct{}

func (Dialect) Name() string { return Kind }

// MapType maps numeric columns to REAL and everything else to TEXT.
func (Dialect) MapType(kind string) string {
	if kind == storage.KindNumeric {
		return "REAL"
	}
	return "TEXT"
}

func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, ddl.Syntax{Name: Kind, Quote: quoteIdent})
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func joinQuoted(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quoteIdent(c)
	}
	return strings.Join(out, ", ")
}
