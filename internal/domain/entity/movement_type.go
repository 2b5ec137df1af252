package entity

// Claves de tipos de movimiento sembradas en los catálogos.
const (
	MovementKeyEntrada    = "entrada"
	MovementKeySalida     = "salida"
	MovementKeyAjuste     = "ajuste"
	MovementKeyPerdida    = "perdida"
	MovementKeyDevolucion = "devolucion"
	MovementKeyConsumo    = "consumo"
	MovementKeyVenta      = "venta"
	MovementKeyProduccion = "produccion"
)

// MovementType clasifica un movimiento del ledger (dato de referencia, solo lectura).
// IncreasesStock solo se persiste en el catálogo de productos; nil = neutro.
type MovementType struct {
	ID             int64
	Key            string // única dentro de su ledger
	Name           string
	IncreasesStock *bool
}
