package engine

// Input and canonical column labels.
const (
	ColID           = "id"
	ColProductID    = "product_id"
	ColTitle        = "title"
	ColPrice        = "price"
	ColCategory     = "category"
	ColQuantity     = "quantity"
	ColCost         = "cost"
	ColSaleDate     = "sale_date"
	ColCurrentStock = "current_stock"
	ColMinStock     = "min_stock"
)

// Derived column labels.
const (
	ColTotalSaleValue = "total_sale_value"
	ColRentabilidad   = "rentabilidad"
	ColCategoryVolume = "ventas_totales_categoria"

	ColTotalVendido      = "total_vendido"
	ColUnidadesVendidas  = "unidades_vendidas"
	ColVentasTotales     = "ventas_totales"
	ColRentabilidadTotal = "rentabilidad_total"
)

// Result table names.
const (
	TableMerged        = "merged"
	TableCriticalStock = "stock_critico"
	TableTopProducts   = "top_productos"
	TableCategorySales = "ventas_categoria"
)

// TableNames lists the result tables in report order.
var TableNames = []string{TableMerged, TableCriticalStock, TableTopProducts, TableCategorySales}

var (
	catalogRequired   = []string{ColProductID, ColTitle, ColPrice, ColCategory}
	salesRequired     = []string{ColProductID, ColQuantity}
	inventoryRequired = []string{ColProductID, ColCurrentStock}

	catalogProjection = []string{ColProductID, ColTitle, ColCategory, ColPrice}
)
