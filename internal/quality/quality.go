// Package quality runs data-quality checks over the merged table. Checks
// never modify the table; a failing check is reported, not fatal.
package quality

import (
	"fmt"
	"strings"
	"time"

	"ecommetl/internal/engine"
	"ecommetl/internal/table"
	"ecommetl/pkg/records"
)

// Check names, in run order.
const (
	CheckPrices     = "precios_no_negativos"
	CheckStock      = "stock_entero_positivo"
	CheckCategories = "categorias_existentes"
	CheckDates      = "fechas_validas"
)

// DateLayouts are the accepted sale date formats.
var DateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/2006",
}

// Result is the outcome of one check.
type Result struct {
	Name     string
	Passed   bool
	Failures int    // offending rows
	Detail   string // empty when passed
}

// Report is the ordered list of check results.
type Report struct {
	Results []Result
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failed returns the names of the failing checks in run order.
func (r Report) Failed() []string {
	var out []string
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res.Name)
		}
	}
	return out
}

// Run executes every check against merged.
func Run(merged *table.Table) Report {
	return Report{Results: []Result{
		countRows(CheckPrices, merged, func(r records.Record) bool {
			f, ok := r.Float(engine.ColPrice)
			return !ok || f >= 0
		}),
		countRows(CheckStock, merged, func(r records.Record) bool {
			f, ok := r.Float(engine.ColCurrentStock)
			return ok && f >= 0
		}),
		countRows(CheckCategories, merged, func(r records.Record) bool {
			return strings.TrimSpace(records.Text(r[engine.ColCategory])) != ""
		}),
		checkDates(merged),
	}}
}

func countRows(name string, t *table.Table, ok func(records.Record) bool) Result {
	bad := 0
	for i := 0; i < t.Len(); i++ {
		if !ok(t.Row(i)) {
			bad++
		}
	}
	return result(name, bad, "")
}

func checkDates(t *table.Table) Result {
	col := ""
	for _, c := range []string{engine.ColSaleDate, "date"} {
		if t.Has(c) {
			col = c
			break
		}
	}
	if col == "" {
		return Result{Name: CheckDates, Detail: "no sale_date or date column"}
	}
	bad := 0
	for i := 0; i < t.Len(); i++ {
		v := t.Value(i, col)
		if v == nil {
			continue
		}
		if _, ok := v.(time.Time); ok {
			continue
		}
		if _, err := ParseDate(records.Text(v)); err != nil {
			bad++
		}
	}
	return result(CheckDates, bad, col)
}

// ParseDate parses s with the first matching layout in DateLayouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range DateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("quality: unrecognized date %q", s)
}

func result(name string, bad int, col string) Result {
	r := Result{Name: name, Passed: bad == 0, Failures: bad}
	if bad > 0 {
		r.Detail = fmt.Sprintf("%d row(s) failed", bad)
		if col != "" {
			r.Detail += " in " + col
		}
	}
	return r
}
