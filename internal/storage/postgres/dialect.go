package postgres

import (
	"strings"

	"ecommetl/internal/ddl"
	"ecommetl/internal/storage"
)

// Dialect renders Postgres DDL with double-quoted identifiers.
type Dialect struct{}

func (Dialect) Name() string { return Kind }

// MapType maps numeric columns to DOUBLE PRECISION and everything else to
// TEXT.
func (Dialect) MapType(kind string) string {
	if kind == storage.KindNumeric {
		return "DOUBLE PRECISION"
	}
	return "TEXT"
}

func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, ddl.Syntax{Name: Kind, Quote: quoteIdent})
}

// quoteIdent quotes one identifier segment, e.g. weird"name => "weird""name".
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
