package engine

import (
	"ecommetl/internal/table"
	"ecommetl/internal/transformer/builtin"
	"ecommetl/pkg/records"
)

// CriticalStock returns the merged rows whose current_stock is below
// min_stock, one row per product_id (first occurrence), in merged order.
func CriticalStock(merged *table.Table) *table.Table {
	low := merged.Filter(func(r records.Record) bool {
		cur, cok := r.Float(ColCurrentStock)
		floor, mok := r.Float(ColMinStock)
		return cok && mok && cur < floor
	})
	rows := builtin.DeDup{Keys: []string{ColProductID}, Policy: "keep-first"}.Apply(low.Rows())
	return table.New(low.Columns(), rows)
}

// TopProducts sums quantity per (product_id, title) into total_vendido,
// sorted descending. Ties keep group encounter order.
func TopProducts(merged *table.Table) *table.Table {
	groups := merged.GroupBy(ColProductID, ColTitle)
	rows := make([]records.Record, 0, len(groups))
	for _, g := range groups {
		r := records.Record{ColTotalVendido: merged.SumRows(ColQuantity, g.Rows)}
		setNonNil(r, ColProductID, g.Key[0])
		setNonNil(r, ColTitle, g.Key[1])
		rows = append(rows, r)
	}
	return table.New([]string{ColProductID, ColTitle, ColTotalVendido}, rows).SortDesc(ColTotalVendido)
}

// CategoryRollup sums quantity, total_sale_value and rentabilidad per
// category, sorted descending by unidades_vendidas. Ties keep group
// encounter order.
func CategoryRollup(merged *table.Table) *table.Table {
	groups := merged.GroupBy(ColCategory)
	rows := make([]records.Record, 0, len(groups))
	for _, g := range groups {
		r := records.Record{
			ColUnidadesVendidas:  merged.SumRows(ColQuantity, g.Rows),
			ColVentasTotales:     merged.SumRows(ColTotalSaleValue, g.Rows),
			ColRentabilidadTotal: merged.SumRows(ColRentabilidad, g.Rows),
		}
		setNonNil(r, ColCategory, g.Key[0])
		rows = append(rows, r)
	}
	cols := []string{ColCategory, ColUnidadesVendidas, ColVentasTotales, ColRentabilidadTotal}
	return table.New(cols, rows).SortDesc(ColUnidadesVendidas)
}

func setNonNil(r records.Record, k string, v any) {
	if v != nil {
		r[k] = v
	}
}
