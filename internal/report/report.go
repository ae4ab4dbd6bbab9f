// Package report writes the human-readable outputs of a run: a Spanish text
// report, UTF-8 CSV exports with a byte-order mark (so spreadsheet tools
// detect the encoding), and an optional Excel workbook.
//
// All files of one run share a timestamp suffix in the form 20060102_150405.
package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"ecommetl/internal/engine"
	"ecommetl/internal/quality"
)

// TimestampLayout is the file name suffix layout.
const TimestampLayout = "20060102_150405"

// RunInfo identifies the run in the report header.
type RunInfo struct {
	RunID string
	Job   string
}

// Files lists the paths written by one call to Write. Empty fields were not
// written.
type Files struct {
	Report        string
	CriticalStock string
	TopProducts   string
	CategorySales string
	Processed     string
	Workbook      string
}

// All returns the written paths in a stable order.
func (f Files) All() []string {
	var out []string
	for _, p := range []string{f.Report, f.CriticalStock, f.TopProducts, f.CategorySales, f.Processed, f.Workbook} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Writer writes reports into Dir.
type Writer struct {
	Dir   string
	Excel bool

	// Now returns the run time; nil means time.Now.
	Now func() time.Time
}

// New returns a Writer for dir.
func New(dir string, excel bool) *Writer {
	return &Writer{Dir: dir, Excel: excel}
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Write renders every report for res. The critical-stock and category CSVs
// are skipped when their tables are empty.
func (w *Writer) Write(res *engine.Result, q quality.Report, info RunInfo) (Files, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("report: create %s: %w", w.Dir, err)
	}
	at := w.now()
	ts := at.Format(TimestampLayout)
	path := func(stem, ext string) string {
		return filepath.Join(w.Dir, stem+"_"+ts+ext)
	}

	files := Files{
		Report:      path("pipeline_report", ".txt"),
		TopProducts: path(engine.TableTopProducts, ".csv"),
		Processed:   path("datos_procesados", ".csv"),
	}
	if res.CriticalStock.Len() > 0 {
		files.CriticalStock = path(engine.TableCriticalStock, ".csv")
	}
	if res.CategorySales.Len() > 0 {
		files.CategorySales = path(engine.TableCategorySales, ".csv")
	}
	if w.Excel {
		files.Workbook = path("pipeline", ".xlsx")
	}

	if files.CriticalStock != "" {
		if err := writeCSV(files.CriticalStock, criticalStockExport(res.CriticalStock)); err != nil {
			return Files{}, err
		}
	}
	if err := writeCSV(files.TopProducts, res.TopProducts); err != nil {
		return Files{}, err
	}
	if files.CategorySales != "" {
		if err := writeCSV(files.CategorySales, res.CategorySales); err != nil {
			return Files{}, err
		}
	}
	if err := writeCSV(files.Processed, res.Merged); err != nil {
		return Files{}, err
	}
	if files.Workbook != "" {
		if err := writeWorkbook(files.Workbook, res); err != nil {
			return Files{}, err
		}
	}

	text := renderText(res, q, info, at, files)
	if err := os.WriteFile(files.Report, []byte(text), 0o644); err != nil {
		return Files{}, fmt.Errorf("report: write %s: %w", files.Report, err)
	}
	log.Printf("report: wrote %d file(s) to %s", len(files.All()), w.Dir)
	return files, nil
}
