package engine

import (
	"fmt"
	"strings"
)

// SchemaError reports mandatory columns missing from an input table after
// label normalization.
type SchemaError struct {
	Table   string
	Missing []string
	Present []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: %s table is missing columns [%s] (present: [%s])",
		e.Table, strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}

// JoinIntegrityError reports that the joined table lost a structurally
// required column.
type JoinIntegrityError struct {
	Missing []string
	Present []string
}

func (e *JoinIntegrityError) Error() string {
	return fmt.Sprintf("join: merged table is missing columns [%s] (present: [%s])",
		strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}
