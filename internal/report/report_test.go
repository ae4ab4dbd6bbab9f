package report

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"ecommetl/internal/engine"
	"ecommetl/internal/quality"
	"ecommetl/internal/table"
	"ecommetl/pkg/records"

	"github.com/xuri/excelize/v2"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func runEngine(t *testing.T, inventoryStock float64) *engine.Result {
	t.Helper()
	in := engine.Inputs{
		Catalog: table.New([]string{"id", "title", "price", "category"}, []records.Record{
			{"id": 1, "title": "Widget", "price": 1000.5, "category": "Tools"},
			{"id": 2, "title": "Gadget", "price": 2.0, "category": "Toys"},
		}),
		Sales: table.New([]string{"product_id", "quantity", "cost"}, []records.Record{
			{"product_id": "1", "quantity": "3", "cost": "100"},
			{"product_id": "2", "quantity": "1", "cost": "0"},
		}),
		Inventory: table.New([]string{"product_id", "current_stock"}, []records.Record{
			{"product_id": "1", "current_stock": inventoryStock},
			{"product_id": "2", "current_stock": 10.0},
		}),
	}
	res, err := engine.New(engine.DefaultDefaults()).Run(in)
	if err != nil {
		t.Fatalf("engine.Run: %v", err)
	}
	return res
}

func newWriter(t *testing.T, excel bool) *Writer {
	w := New(filepath.Join(t.TempDir(), "reports"), excel)
	w.Now = func() time.Time { return fixedNow }
	return w
}

func readBOMCSV(t *testing.T, path string) [][]string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	s := string(b)
	if !strings.HasPrefix(s, utf8BOM) {
		t.Fatalf("%s does not start with a UTF-8 BOM", path)
	}
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(s, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}

func TestWrite_FilesAndContents(t *testing.T) {
	res := runEngine(t, 2)
	q := quality.Run(res.Merged)
	w := newWriter(t, true)

	files, err := w.Write(res, q, RunInfo{RunID: "run-123", Job: "ecommerce"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := Files{
		Report:        filepath.Join(w.Dir, "pipeline_report_20240506_070809.txt"),
		CriticalStock: filepath.Join(w.Dir, "stock_critico_20240506_070809.csv"),
		TopProducts:   filepath.Join(w.Dir, "top_productos_20240506_070809.csv"),
		CategorySales: filepath.Join(w.Dir, "ventas_categoria_20240506_070809.csv"),
		Processed:     filepath.Join(w.Dir, "datos_procesados_20240506_070809.csv"),
		Workbook:      filepath.Join(w.Dir, "pipeline_20240506_070809.xlsx"),
	}
	if files != want {
		t.Fatalf("files = %+v\nwant %+v", files, want)
	}
	for _, p := range files.All() {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("stat %s: %v", p, err)
		}
	}

	stock := readBOMCSV(t, files.CriticalStock)
	wantHead := []string{"product_id", "title", "category", "current_stock", "min_stock", "deficit"}
	if !reflect.DeepEqual(stock[0], wantHead) {
		t.Fatalf("stock_critico header = %v, want %v", stock[0], wantHead)
	}
	if len(stock) != 2 || stock[1][1] != "Widget" || stock[1][5] != "3" {
		t.Fatalf("stock_critico rows = %v", stock)
	}

	top := readBOMCSV(t, files.TopProducts)
	if len(top) != 3 || top[1][1] != "Widget" || top[1][2] != "3" {
		t.Fatalf("top_productos rows = %v", top)
	}

	processed := readBOMCSV(t, files.Processed)
	if len(processed) != 1+res.Merged.Len() {
		t.Fatalf("datos_procesados rows = %d, want %d", len(processed), 1+res.Merged.Len())
	}

	text, err := os.ReadFile(files.Report)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{
		"REPORTE DE EJECUCIÓN - PIPELINE E-COMMERCE",
		"Fecha de ejecución: 2024-05-06 07:08:09",
		"Run ID: run-123",
		"✗ ESTADO GENERAL: ALGUNOS TESTS FALLARON",
		"[OK] Precios No Negativos",
		"[FALLO] Fechas Validas",
		"Total de registros procesados: 2",
		"Total de unidades vendidas: 4",
		"Valor total de ventas: $3,003.50",
		"Rentabilidad total: $2,703.50",
		"ATENCIÓN: 1 producto(s)",
		"4. TOP 10 PRODUCTOS MÁS VENDIDOS",
		"5. ANÁLISIS DE VENTAS POR CATEGORÍA",
		"6. ANÁLISIS DE RENTABILIDAD",
		"FIN DEL REPORTE",
		files.Workbook,
	} {
		if !strings.Contains(string(text), s) {
			t.Errorf("report missing %q", s)
		}
	}
}

func TestWrite_NoCriticalStock(t *testing.T) {
	res := runEngine(t, 50)
	files, err := newWriter(t, false).Write(res, quality.Run(res.Merged), RunInfo{})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if files.CriticalStock != "" || files.Workbook != "" {
		t.Fatalf("unexpected files %+v", files)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(files.Report), "stock_critico_*"))
	if len(matches) != 0 {
		t.Fatalf("stock_critico written: %v", matches)
	}
	text, _ := os.ReadFile(files.Report)
	if !strings.Contains(string(text), "No hay productos con stock crítico") {
		t.Errorf("report does not note the empty critical stock table")
	}
}

func TestWorkbookSheets(t *testing.T) {
	res := runEngine(t, 2)
	files, err := newWriter(t, true).Write(res, quality.Run(res.Merged), RunInfo{})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(files.Workbook)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, engine.TableNames) {
		t.Fatalf("sheets = %v, want %v", got, engine.TableNames)
	}
	rows, err := f.GetRows(engine.TableCategorySales)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != engine.ColCategory {
		t.Fatalf("%s rows = %v", engine.TableCategorySales, rows)
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"number", number(1234567.4), "1,234,567"},
		{"number rounds", number(2.5), "3"},
		{"money", money(1234567.891), "$1,234,567.89"},
		{"money small", money(3.5), "$3.50"},
		{"money negative", money(-1234.5), "-$1,234.50"},
		{"check label", checkLabel(quality.CheckStock), "Stock Entero Positivo"},
		{"clip runes", clip("Categoría larga", 9), "Categoría"},
		{"clip short", clip("abc", 10), "abc"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestProfitByTitle(t *testing.T) {
	tb := table.New([]string{"title", "rentabilidad"}, []records.Record{
		{"title": "a", "rentabilidad": 1.0},
		{"title": "b", "rentabilidad": 5.0},
		{"rentabilidad": 2.0},
		{"title": "a", "rentabilidad": 3.0},
	})
	got := profitByTitle(tb, 2)
	want := []titleProfit{{"b", 5}, {"a", 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("profitByTitle = %v, want %v", got, want)
	}
}
