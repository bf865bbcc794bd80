package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Count conteo físico planificado de una ubicación.
type Count struct {
	ID             string
	TenantID       string
	LocationID     string
	DocumentNumber string
	Status         CountStatus
	CountDate      time.Time
	Notes          string
	CreatedBy      string
	StartedAt      *time.Time
	CompletedBy    string
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Lines          []CountLine
}

// CountLine cantidad del sistema (foto al crear) contra la contada físicamente.
type CountLine struct {
	ID              string
	CountID         string
	ProductID       string
	SystemQuantity  decimal.Decimal
	CountedQuantity *decimal.Decimal // nil hasta que se cuenta
	Difference      decimal.Decimal  // contado − sistema
	Notes           string
}

// SetCounted registra la cantidad contada y recalcula la diferencia.
func (l *CountLine) SetCounted(qty decimal.Decimal) {
	q := qty
	l.CountedQuantity = &q
	l.Difference = qty.Sub(l.SystemQuantity)
}

// NeedsReconciliation indica si la línea debe sobrescribir el saldo al completar el conteo.
func (l *CountLine) NeedsReconciliation() bool {
	return l.CountedQuantity != nil && !l.Difference.IsZero()
}

// LineByProduct busca la línea de un producto.
func (c *Count) LineByProduct(productID string) *CountLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// Line busca una línea por ID.
func (c *Count) Line(id string) *CountLine {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return &c.Lines[i]
		}
	}
	return nil
}
