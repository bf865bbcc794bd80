package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance representa el stock actual de un producto en una ubicación.
// Única fuente de verdad de "cuánto hay aquí ahora"; solo el coordinador la modifica.
type Balance struct {
	TenantID       string
	ProductID      string
	LocationID     string
	CurrentStock   decimal.Decimal
	MinimumStock   decimal.Decimal
	MaximumStock   decimal.Decimal
	AverageCost    decimal.Decimal // costo promedio ponderado
	Active         bool
	LastMovementAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BalanceKey identifica una fila de saldo.
type BalanceKey struct {
	ProductID  string
	LocationID string
}

// Key devuelve la clave (producto, ubicación) del saldo.
func (b *Balance) Key() BalanceKey {
	return BalanceKey{ProductID: b.ProductID, LocationID: b.LocationID}
}

// Less ordena claves por ubicación y luego producto; es el orden en que se toman los bloqueos.
func (k BalanceKey) Less(o BalanceKey) bool {
	if k.LocationID != o.LocationID {
		return k.LocationID < o.LocationID
	}
	return k.ProductID < o.ProductID
}
