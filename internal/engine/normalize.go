package engine

import (
	"strings"

	"ecommetl/internal/table"
	"ecommetl/internal/transformer"
	"ecommetl/internal/transformer/builtin"
)

// Defaults are the values injected for optional columns a source omits.
type Defaults struct {
	MinStock float64
	Cost     float64
}

// DefaultDefaults returns MinStock=5 and Cost=0.
func DefaultDefaults() Defaults {
	return Defaults{MinStock: 5, Cost: 0}
}

// Inputs bundles the three source tables.
type Inputs struct {
	Catalog   *table.Table
	Sales     *table.Table
	Inventory *table.Table
}

// NormalizeLabel lowercases and trims a column label.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalize gives the three inputs their canonical schema:
//
//   - labels lowercased and trimmed; catalog "id" becomes "product_id"
//   - mandatory columns checked (*SchemaError when absent)
//   - min_stock and cost injected from d when absent
//   - sales.price and inventory.category dropped (catalog is authoritative)
//   - string cells trimmed, product_id canonicalized, numeric columns
//     converted to float64 (unparseable values become null)
//
// The inputs are not modified. Normalize is idempotent.
func Normalize(in Inputs, d Defaults) (Inputs, error) {
	catalog := in.Catalog.RenameColumns(NormalizeLabel)
	sales := in.Sales.RenameColumns(NormalizeLabel)
	inventory := in.Inventory.RenameColumns(NormalizeLabel)

	if catalog.Has(ColID) && !catalog.Has(ColProductID) {
		catalog = catalog.Rename(ColID, ColProductID)
	}

	for _, c := range []struct {
		name string
		t    *table.Table
		want []string
	}{
		{"catalog", catalog, catalogRequired},
		{"sales", sales, salesRequired},
		{"inventory", inventory, inventoryRequired},
	} {
		if missing := c.t.Missing(c.want...); len(missing) > 0 {
			return Inputs{}, &SchemaError{Table: c.name, Missing: missing, Present: c.t.Columns()}
		}
	}

	if !inventory.Has(ColMinStock) {
		inventory = inventory.WithConstant(ColMinStock, d.MinStock)
	}
	if !sales.Has(ColCost) {
		sales = sales.WithConstant(ColCost, d.Cost)
	}
	sales = sales.Drop(ColPrice)
	inventory = inventory.Drop(ColCategory)

	return Inputs{
		Catalog:   canonicalize(catalog, ColPrice),
		Sales:     canonicalize(sales, ColQuantity, ColCost),
		Inventory: canonicalize(inventory, ColCurrentStock, ColMinStock),
	}, nil
}

// canonicalize runs the cell-level cleanup chain over copies of t's rows.
func canonicalize(t *table.Table, numeric ...string) *table.Table {
	types := map[string]string{ColProductID: "key"}
	for _, c := range numeric {
		types[c] = "float"
	}
	chain := transformer.Chain{
		builtin.Normalize{},
		builtin.Coerce{Types: types, NullOnError: true},
	}
	return table.New(t.Columns(), chain.Apply(transformer.CloneAll(t.Rows())))
}
