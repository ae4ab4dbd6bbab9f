package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"

	"ecommetl/internal/engine"
	"ecommetl/internal/table"
	"ecommetl/pkg/records"
)

const utf8BOM = "\uFEFF"

// ColDeficit is min_stock minus current_stock in the critical stock export.
const ColDeficit = "deficit"

// criticalStockExport projects the critical stock table to its export
// columns and appends the deficit.
func criticalStockExport(t *table.Table) *table.Table {
	out := t.Project(engine.ColProductID, engine.ColTitle, engine.ColCategory, engine.ColCurrentStock, engine.ColMinStock)
	return out.WithColumn(ColDeficit, func(r records.Record) any {
		cur, cok := r.Float(engine.ColCurrentStock)
		floor, mok := r.Float(engine.ColMinStock)
		if !cok || !mok {
			return nil
		}
		return floor - cur
	})
}

func writeCSV(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := encodeCSV(bw, t); err != nil {
		f.Close()
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("report: flush %s: %w", path, err)
	}
	return f.Close()
}

func encodeCSV(w *bufio.Writer, t *table.Table) error {
	if _, err := w.WriteString(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cols := t.Columns()
	if err := cw.Write(cols); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for i := 0; i < t.Len(); i++ {
		for j, c := range cols {
			rec[j] = records.Text(t.Value(i, c))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
