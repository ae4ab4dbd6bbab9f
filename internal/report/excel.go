package report

import (
	"fmt"

	"ecommetl/internal/engine"
	"ecommetl/internal/table"
	"ecommetl/pkg/records"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook stores each result table on its own sheet, named after the
// table. Numeric cells stay numeric.
func writeWorkbook(path string, res *engine.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	tables := res.Tables()
	for i, name := range engine.TableNames {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("report: workbook sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("report: workbook sheet %s: %w", name, err)
		}
		if err := fillSheet(f, name, tables[name]); err != nil {
			return fmt.Errorf("report: workbook sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

func fillSheet(f *excelize.File, sheet string, t *table.Table) error {
	cols := t.Columns()
	head := make([]any, len(cols))
	for i, c := range cols {
		head[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = cell(t.Value(i, c))
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, ref, &row); err != nil {
			return err
		}
	}
	return nil
}

func cell(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case float64, int, int64, bool:
		return t
	default:
		return records.Text(t)
	}
}
