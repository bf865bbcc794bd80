package entity

import "time"

// Location representa una bodega o sucursal donde se almacena inventario (multi-ubicación).
type Location struct {
	ID        string
	TenantID  string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
