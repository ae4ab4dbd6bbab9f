package engine

import (
	"ecommetl/internal/table"
	"ecommetl/internal/transformer/builtin"
)

// JoinStats summarizes the two left joins and the validity filter.
type JoinStats struct {
	SalesIn            int // sales rows entering the join
	InventoryUnmatched int // sales rows without an inventory row
	InventoryFanout    int // extra rows from duplicate inventory keys
	CatalogUnmatched   int // rows without a catalog entry
	CatalogFanout      int // extra rows from duplicate catalog keys
	Dropped            int // rows removed for null price or quantity
}

// Suffixes given to labels present in both sales and inventory.
const (
	SalesSuffix     = "_x"
	InventorySuffix = "_y"
)

// Join left-joins sales with inventory, then with the catalog projection
// {product_id, title, category, price}, and drops rows whose price or
// quantity is null.
//
// Sales and inventory have no authoritative side: a shared non-key label is
// kept as label_x and label_y, so a shared quantity column surfaces as a
// *JoinIntegrityError. Catalog columns win over same-named columns from the
// first join.
func Join(in Inputs) (*table.Table, JoinStats, error) {
	stats := JoinStats{SalesIn: in.Sales.Len()}

	step1, inv := in.Sales.LeftJoinSuffix(in.Inventory, ColProductID, SalesSuffix, InventorySuffix)
	stats.InventoryUnmatched = inv.Unmatched
	stats.InventoryFanout = inv.Fanout

	step2, cat := step1.LeftJoin(in.Catalog.Project(catalogProjection...), ColProductID)
	stats.CatalogUnmatched = cat.Unmatched
	stats.CatalogFanout = cat.Fanout

	if missing := step2.Missing(ColPrice, ColQuantity); len(missing) > 0 {
		return nil, stats, &JoinIntegrityError{Missing: missing, Present: step2.Columns()}
	}

	kept := builtin.Require{Fields: []string{ColPrice, ColQuantity}}.Apply(step2.Rows())
	stats.Dropped = step2.Len() - len(kept)
	return table.New(step2.Columns(), kept), stats, nil
}
