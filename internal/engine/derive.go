package engine

import (
	"ecommetl/internal/table"
	"ecommetl/pkg/records"
)

// Derive adds total_sale_value, rentabilidad and ventas_totales_categoria to
// the merged table. Row count and order are preserved.
//
// rentabilidad is null when cost is null. Rows with a null category share one
// category group.
func Derive(merged *table.Table) *table.Table {
	out := merged.WithColumn(ColTotalSaleValue, func(r records.Record) any {
		q, qok := r.Float(ColQuantity)
		p, pok := r.Float(ColPrice)
		if !qok || !pok {
			return nil
		}
		return q * p
	})
	out = out.WithColumn(ColRentabilidad, func(r records.Record) any {
		v, vok := r.Float(ColTotalSaleValue)
		c, cok := r.Float(ColCost)
		q, qok := r.Float(ColQuantity)
		if !vok || !cok || !qok {
			return nil
		}
		return v - c*q
	})

	volume := make(map[string]float64)
	for _, r := range out.Rows() {
		if q, ok := r.Float(ColQuantity); ok {
			volume[categoryKey(r)] += q
		}
	}
	return out.WithColumn(ColCategoryVolume, func(r records.Record) any {
		return volume[categoryKey(r)]
	})
}

func categoryKey(r records.Record) string {
	if k, ok := records.Key(r[ColCategory]); ok {
		return "v" + k
	}
	return "\x00"
}
