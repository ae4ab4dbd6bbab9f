// Package engine normalizes, joins and aggregates the catalog, sales and
// inventory tables into the merged dataset and its three derived views.
//
// Stages run strictly forward: Normalize, Join, Derive, then the aggregates.
// Every stage returns new tables; inputs are never modified.
package engine

import (
	"log"

	"ecommetl/internal/table"
)

// Result is the output bundle of one run.
type Result struct {
	Merged        *table.Table
	CriticalStock *table.Table
	TopProducts   *table.Table
	CategorySales *table.Table

	Dropped int
	Stats   JoinStats
}

// Tables exposes the result under its fixed names.
func (r *Result) Tables() map[string]*table.Table {
	return map[string]*table.Table{
		TableMerged:        r.Merged,
		TableCriticalStock: r.CriticalStock,
		TableTopProducts:   r.TopProducts,
		TableCategorySales: r.CategorySales,
	}
}

// Engine runs the four stages with a fixed set of column defaults.
type Engine struct {
	Defaults Defaults
}

func New(d Defaults) *Engine { return &Engine{Defaults: d} }

// Run executes the full transformation. *SchemaError and *JoinIntegrityError
// are returned unwrapped.
func (e *Engine) Run(in Inputs) (*Result, error) {
	norm, err := Normalize(in, e.Defaults)
	if err != nil {
		return nil, err
	}
	log.Printf("normalize: catalog=%d sales=%d inventory=%d rows",
		norm.Catalog.Len(), norm.Sales.Len(), norm.Inventory.Len())

	joined, stats, err := Join(norm)
	if err != nil {
		return nil, err
	}
	if stats.InventoryFanout > 0 {
		log.Printf("join: WARNING duplicate inventory product_id keys added %d rows", stats.InventoryFanout)
	}
	if stats.CatalogFanout > 0 {
		log.Printf("join: WARNING duplicate catalog product_id keys added %d rows", stats.CatalogFanout)
	}
	log.Printf("join: merged=%d dropped_invalid=%d inventory_unmatched=%d catalog_unmatched=%d",
		joined.Len(), stats.Dropped, stats.InventoryUnmatched, stats.CatalogUnmatched)

	merged := Derive(joined)
	res := &Result{
		Merged:        merged,
		CriticalStock: CriticalStock(merged),
		TopProducts:   TopProducts(merged),
		CategorySales: CategoryRollup(merged),
		Dropped:       stats.Dropped,
		Stats:         stats,
	}
	log.Printf("aggregate: stock_critico=%d top_productos=%d ventas_categoria=%d",
		res.CriticalStock.Len(), res.TopProducts.Len(), res.CategorySales.Len())
	return res, nil
}
