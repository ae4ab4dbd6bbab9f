package mysql

import (
	"strings"

	"ecommetl/internal/ddl"
	"ecommetl/internal/storage"
)

// Dialect renders MySQL DDL with backtick-quoted identifiers.
type Dialect struct{}

func (Dialect) Name() string { return Kind }

// MapType maps numeric columns to DOUBLE and everything else to TEXT.
func (Dialect) MapType(kind string) string {
	if kind == storage.KindNumeric {
		return "DOUBLE"
	}
	return "TEXT"
}

func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, ddl.Syntax{Name: Kind, Quote: quoteIdent})
}

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
