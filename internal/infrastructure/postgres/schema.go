package postgres

import "github.com/jhoicas/bodega-api/internal/domain/ledger"

// Schema tablas de un ledger. Ambos ledgers comparten estructura; cambian los nombres
// y las columnas opcionales.
type Schema struct {
	Movements         string
	Types             string
	Resources         string
	HasSKU            bool // products.sku
	HasIncreasesStock bool // product_movement_types.increases_stock
}

var (
	ProductSchema = Schema{
		Movements:         "product_movements",
		Types:             "product_movement_types",
		Resources:         "products",
		HasSKU:            true,
		HasIncreasesStock: true,
	}
	SupplySchema = Schema{
		Movements: "supply_movements",
		Types:     "supply_movement_types",
		Resources: "supplies",
	}
)

// SchemaFor devuelve el esquema del ledger.
func SchemaFor(kind ledger.Kind) Schema {
	if kind == ledger.KindSupplies {
		return SupplySchema
	}
	return ProductSchema
}

func (s Schema) skuColumn() string {
	if s.HasSKU {
		return "r.sku"
	}
	return "NULL::text"
}

func (s Schema) increasesStockColumn(alias string) string {
	if s.HasIncreasesStock {
		return alias + ".increases_stock"
	}
	return "NULL::boolean"
}
