package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerSource agregado que originó el asiento de kardex.
type LedgerSource string

const (
	SourceMovement LedgerSource = "movement"
	SourceTransfer LedgerSource = "transfer"
	SourceCount    LedgerSource = "count"
)

// LedgerEntry asiento inmutable del kardex: una fila por cada mutación de saldo.
// Quantity es siempre positiva; Direction indica si entró o salió stock.
type LedgerEntry struct {
	ID             string
	TenantID       string
	LocationID     string
	ProductID      string
	Source         LedgerSource
	HeaderID       string
	LineID         string
	Type           MovementType
	Reason         MovementReason
	Direction      LineDirection
	Quantity       decimal.Decimal
	UnitCost       decimal.Decimal
	TotalCost      decimal.Decimal
	PreviousStock  decimal.Decimal
	NewStock       decimal.Decimal
	AverageCost    decimal.Decimal // costo promedio vigente después del asiento
	DocumentNumber string
	BatchNumber    string
	ExpiryDate     *time.Time
	ActorID        string
	CreatedAt      time.Time
}
