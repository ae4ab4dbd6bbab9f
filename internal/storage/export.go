package storage

import (
	"context"
	"fmt"
	"log"

	"ecommetl/internal/ddl"
	"ecommetl/internal/table"
	"ecommetl/pkg/records"
)

// Logical column kinds inferred from table contents.
const (
	KindNumeric = "numeric"
	KindText    = "text"
)

// ColRunID is the column tagging exported rows with their run.
const ColRunID = "run_id"

// ExportOptions controls how a table is written.
type ExportOptions struct {
	// Prefix is prepended to the table name.
	Prefix string
	// AutoCreate issues the dialect's CREATE TABLE IF NOT EXISTS first.
	AutoCreate bool
	// BatchSize is the number of rows per CopyFrom call. Defaults to 1000.
	BatchSize int
	// RunID, when set, is stored in an extra run_id column.
	RunID string
}

// Column is a column name with its inferred logical kind.
type Column struct {
	Name string
	Kind string
}

// InferColumns classifies every column of t. A column is numeric when it has
// at least one non-null cell and every non-null cell is a number; otherwise
// it is text.
func InferColumns(t *table.Table) []Column {
	cols := t.Columns()
	out := make([]Column, len(cols))
	for j, c := range cols {
		seen, numeric := false, true
		for i := 0; i < t.Len() && numeric; i++ {
			v := t.Value(i, c)
			if v == nil {
				continue
			}
			seen = true
			numeric = isNumber(v)
		}
		kind := KindText
		if seen && numeric {
			kind = KindNumeric
		}
		out[j] = Column{Name: c, Kind: kind}
	}
	return out
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return true
	}
	return false
}

// TableDef builds the DDL model for name and cols using d's type mapping.
// Every column is nullable.
func TableDef(d Dialect, name string, cols []Column) ddl.TableDef {
	defs := make([]ddl.ColumnDef, len(cols))
	for i, c := range cols {
		defs[i] = ddl.ColumnDef{Name: c.Name, SQLType: d.MapType(c.Kind), Nullable: true}
	}
	return ddl.TableDef{FQN: name, Columns: defs}
}

// Export writes t to the table opts.Prefix+name through repo and returns the
// load totals.
func Export(ctx context.Context, repo Repository, name string, t *table.Table, opts ExportOptions) (LoadStats, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1000
	}
	if opts.RunID != "" {
		t = t.WithConstant(ColRunID, opts.RunID)
	}
	target := opts.Prefix + name
	cols := InferColumns(t)
	if len(cols) == 0 {
		log.Printf("storage: %s has no columns, skipped", target)
		return LoadStats{}, nil
	}

	if opts.AutoCreate {
		stmt, err := repo.Dialect().CreateTableSQL(TableDef(repo.Dialect(), target, cols))
		if err != nil {
			return LoadStats{}, fmt.Errorf("storage: ddl %s: %w", target, err)
		}
		if err := repo.Exec(ctx, stmt); err != nil {
			return LoadStats{}, fmt.Errorf("storage: create %s: %w", target, err)
		}
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any, opts.BatchSize)
	go func() {
		defer close(in)
		for i := 0; i < t.Len(); i++ {
			select {
			case in <- rowValues(t, i, cols):
			case <-ctx.Done():
				return
			}
		}
	}()

	stats, err := LoadBatches(ctx, names, in, opts.BatchSize, func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return repo.CopyFrom(ctx, target, columns, rows)
	})
	if err != nil {
		return stats, fmt.Errorf("storage: load %s: %w", target, err)
	}
	log.Printf("storage: %s rows=%d batches=%d", target, stats.Rows, stats.Batches)
	return stats, nil
}

// rowValues renders row i as driver values: float64 for numeric columns,
// string for text, nil for null.
func rowValues(t *table.Table, i int, cols []Column) []any {
	out := make([]any, len(cols))
	for j, c := range cols {
		v := t.Value(i, c.Name)
		if v == nil {
			continue
		}
		if c.Kind == KindNumeric {
			f, _ := records.Float(v)
			out[j] = f
			continue
		}
		out[j] = records.Text(v)
	}
	return out
}
