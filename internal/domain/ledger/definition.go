package ledger

// Kind identifica cada uno de los dos ledgers paralelos.
type Kind string

const (
	KindProducts Kind = "products"
	KindSupplies Kind = "supplies"
)

// Definition describe un ledger: nombre de exportación, estrategia de polaridad y columnas CSV.
type Definition struct {
	Kind     Kind
	Name     string
	Polarity PolarityFunc
	Layout   Layout
}

var (
	// Products ledger de productos terminados: polaridad persistida en el catálogo.
	Products = Definition{
		Kind:     KindProducts,
		Name:     "movimientos_productos",
		Polarity: StoredPolarity,
		Layout:   ProductLayout,
	}
	// Supplies ledger de insumos: polaridad derivada de la clave del tipo.
	Supplies = Definition{
		Kind:     KindSupplies,
		Name:     "movimientos_insumos",
		Polarity: KeyPolarity,
		Layout:   SupplyLayout,
	}
)
