package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"ecommetl/internal/engine"
	"ecommetl/internal/quality"
	"ecommetl/internal/table"
	"ecommetl/pkg/records"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	width      = 70
	topN       = 10
	topProfitN = 5
	untitled   = "(sin título)"
	uncategory = "(sin categoría)"
)

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.Spanish)
)

// number renders v rounded to an integer with thousands separators.
func number(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// money renders v with two decimals and thousands separators, e.g. $1,234.50.
func money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	frac := d.StringFixed(2)
	frac = frac[strings.IndexByte(frac, '.'):]
	return sign + "$" + printer.Sprintf("%d", d.IntPart()) + frac
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// checkLabel turns a check name such as precios_no_negativos into
// "Precios No Negativos".
func checkLabel(name string) string {
	return titler.String(strings.ReplaceAll(name, "_", " "))
}

func productName(r records.Record, n int) string {
	if r.IsNull(engine.ColTitle) {
		return "ID: " + records.Text(r[engine.ColProductID])
	}
	return clip(records.Text(r[engine.ColTitle]), n)
}

type textReport struct {
	strings.Builder
}

func (b *textReport) line(ch string) { b.WriteString(strings.Repeat(ch, width) + "\n") }

func (b *textReport) printf(format string, args ...any) { fmt.Fprintf(b, format, args...) }

func (b *textReport) section(title string) {
	b.line("-")
	b.WriteString(title + "\n")
	b.line("-")
	b.WriteString("\n")
}

func renderText(res *engine.Result, q quality.Report, info RunInfo, at time.Time, files Files) string {
	var b textReport
	merged := res.Merged

	b.line("=")
	b.WriteString("         REPORTE DE EJECUCIÓN - PIPELINE E-COMMERCE\n")
	b.line("=")
	b.printf("Fecha de ejecución: %s\n", at.Format(time.DateTime))
	b.printf("Timestamp: %s\n", at.Format(TimestampLayout))
	if info.Job != "" {
		b.printf("Job: %s\n", info.Job)
	}
	if info.RunID != "" {
		b.printf("Run ID: %s\n", info.RunID)
	}
	b.line("=")
	b.WriteString("\n")

	b.section("1. TESTS DE CALIDAD DE DATOS")
	if q.Passed() {
		b.WriteString("✓ ESTADO GENERAL: TODOS LOS TESTS PASARON\n\n")
	} else {
		b.WriteString("✗ ESTADO GENERAL: ALGUNOS TESTS FALLARON\n\n")
	}
	b.WriteString("Resultados detallados:\n")
	for _, r := range q.Results {
		if r.Passed {
			b.printf("    [OK] %s: ✓ PASÓ\n", checkLabel(r.Name))
		} else {
			b.printf("  [FALLO] %s: ✗ FALLÓ", checkLabel(r.Name))
			if r.Detail != "" {
				b.printf(" (%s)", r.Detail)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.section("2. ESTADÍSTICAS GENERALES DEL PIPELINE")
	sales := merged.Sum(engine.ColTotalSaleValue)
	profit := merged.Sum(engine.ColRentabilidad)
	b.printf("  Total de registros procesados: %s\n", number(float64(merged.Len())))
	b.printf("  Registros descartados: %s\n", number(float64(res.Dropped)))
	b.printf("  Productos únicos: %s\n", number(float64(merged.Distinct(engine.ColProductID))))
	b.printf("  Categorías distintas: %s\n", number(float64(merged.Distinct(engine.ColCategory))))
	b.printf("  Total de unidades vendidas: %s\n", number(merged.Sum(engine.ColQuantity)))
	b.printf("  Valor total de ventas: %s\n", money(sales))
	b.printf("  Rentabilidad total: %s\n", money(profit))
	if profit > 0 && sales > 0 {
		b.printf("  Margen promedio: %.2f%%\n", profit/sales*100)
	}
	b.WriteString("\n")

	b.section("3. ALERTA: PRODUCTOS CON STOCK CRÍTICO")
	writeCriticalStock(&b, res.CriticalStock)
	b.WriteString("\n")

	b.section(fmt.Sprintf("4. TOP %d PRODUCTOS MÁS VENDIDOS", topN))
	b.printf("%-4s %-45s %15s\n", "#", "Producto", "Unidades")
	b.line("-")
	for i := 0; i < res.TopProducts.Len() && i < topN; i++ {
		r := res.TopProducts.Row(i)
		units, _ := r.Float(engine.ColTotalVendido)
		b.printf("%-4d %-45s %15s\n", i+1, productName(r, 43), number(units))
	}
	b.WriteString("\n")

	b.section("5. ANÁLISIS DE VENTAS POR CATEGORÍA")
	writeCategories(&b, res.CategorySales)
	b.WriteString("\n")

	if merged.Has(engine.ColRentabilidad) {
		b.section("6. ANÁLISIS DE RENTABILIDAD")
		b.printf("Top %d productos más rentables:\n", topProfitN)
		b.printf("%-45s %20s\n", "Producto", "Rentabilidad")
		b.line("-")
		for _, p := range profitByTitle(merged, topProfitN) {
			b.printf("%-45s %20s\n", clip(p.title, 43), money(p.total))
		}
		b.WriteString("\n")
	}

	b.line("=")
	b.WriteString("FIN DEL REPORTE\n")
	b.line("=")
	b.WriteString("\nArchivos exportados:\n")
	b.printf("  - Reporte principal: %s\n", files.Report)
	if files.CriticalStock != "" {
		b.printf("  - Stock crítico: %s\n", files.CriticalStock)
	}
	b.printf("  - Top productos: %s\n", files.TopProducts)
	if files.CategorySales != "" {
		b.printf("  - Ventas por categoría: %s\n", files.CategorySales)
	}
	b.printf("  - Datos procesados: %s\n", files.Processed)
	if files.Workbook != "" {
		b.printf("  - Libro Excel: %s\n", files.Workbook)
	}
	b.WriteString("\n")
	return b.String()
}

func writeCriticalStock(b *textReport, t *table.Table) {
	if t.Len() == 0 {
		b.WriteString("✓ Excelente: No hay productos con stock crítico.\n")
		b.WriteString("  Todos los productos tienen inventario por encima del mínimo requerido.\n")
		return
	}
	b.printf("  ATENCIÓN: %d producto(s) con stock por debajo del mínimo\n\n", t.Len())
	b.printf("%-40s %12s %12s %10s\n", "Producto", "Stock Actual", "Stock Mínimo", "Déficit")
	b.line("-")
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		cur, _ := r.Float(engine.ColCurrentStock)
		floor, _ := r.Float(engine.ColMinStock)
		b.printf("%-40s %12s %12s %10s\n", productName(r, 38), number(cur), number(floor), number(floor-cur))
	}
	b.WriteString("\n RECOMENDACIÓN: Reabastecer estos productos urgentemente.\n")
}

func writeCategories(b *textReport, t *table.Table) {
	if t.Len() == 0 {
		b.WriteString("  Sin ventas registradas por categoría.\n")
		return
	}
	b.printf("%-25s %12s %15s %15s\n", "Categoría", "Unidades", "Valor Total", "Rentabilidad")
	b.line("-")
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		name := uncategory
		if !r.IsNull(engine.ColCategory) {
			name = records.Text(r[engine.ColCategory])
		}
		units, _ := r.Float(engine.ColUnidadesVendidas)
		sales, _ := r.Float(engine.ColVentasTotales)
		profit, _ := r.Float(engine.ColRentabilidadTotal)
		b.printf("%-25s %12s %15s %15s\n", clip(name, 23), number(units), money(sales), money(profit))
	}
}

type titleProfit struct {
	title string
	total float64
}

// profitByTitle sums rentabilidad per title and returns the n largest.
// Ties keep encounter order.
func profitByTitle(t *table.Table, n int) []titleProfit {
	groups := t.GroupBy(engine.ColTitle)
	out := make([]titleProfit, 0, len(groups))
	for _, g := range groups {
		name := untitled
		if g.Key[0] != nil {
			name = records.Text(g.Key[0])
		}
		out = append(out, titleProfit{title: name, total: t.SumRows(engine.ColRentabilidad, g.Rows)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].total > out[j].total })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
