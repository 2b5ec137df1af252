package entity

import "strings"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// User perfil del usuario que origina movimientos. El ledger solo lee nombre y apellido.
type User struct {
	ID       string // UUID del proveedor de identidad
	Name     string
	LastName string
}

// DisplayName "Nombre Apellido", sin espacios sobrantes.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}
