package ddl

import (
	"fmt"
	"strings"
)

// Syntax is the dialect-specific part of CREATE TABLE rendering.
type Syntax struct {
	// Name prefixes error messages, e.g. "sqlite".
	Name string

	// Quote quotes one identifier segment.
	Quote func(string) string

	// Envelope wraps the quoted table name and the rendered column list into
	// the final statement. A nil Envelope renders CREATE TABLE IF NOT EXISTS.
	Envelope func(table, body string) string
}

// QuoteFQN quotes each dotted segment of fqn with q. Empty segments are
// dropped.
func QuoteFQN(fqn string, q func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, q(p))
	}
	return strings.Join(out, ".")
}

// BuildCreateTableSQL renders t with syntax s. Each column becomes
//
//	<quoted name> <SQLType> [NOT NULL] [DEFAULT <expr>]
//
// and primary-key columns are collected into a trailing PRIMARY KEY clause.
// Primary-key columns are always NOT NULL.
func BuildCreateTableSQL(t TableDef, s Syntax) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", s.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", s.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", s.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s ddl: column %s missing SQLType", s.Name, name)
		}

		var sb strings.Builder
		sb.WriteString(s.Quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, s.Quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	table := QuoteFQN(fqn, s.Quote)
	body := strings.Join(cols, ",\n  ")
	if s.Envelope != nil {
		return s.Envelope(table, body), nil
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", table, body), nil
}
