package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer traslado de stock entre dos ubicaciones con aprobación, despacho y recepción parcial.
type Transfer struct {
	ID              string
	TenantID        string
	DocumentNumber  string
	FromLocationID  string
	ToLocationID    string
	Status          TransferStatus
	Notes           string
	RequestedBy     string
	RequestedAt     time.Time
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectedBy      string
	RejectedAt      *time.Time
	RejectionReason string
	ShippedBy       string
	ShippedAt       *time.Time
	ReceivedBy      string
	ReceivedAt      *time.Time
	CancelledBy     string
	CancelledAt     *time.Time
	Evidence        *ShippingEvidence
	TotalRequested  decimal.Decimal
	TotalShipped    decimal.Decimal
	TotalReceived   decimal.Decimal
	TotalCost       decimal.Decimal
	HasDifferences  bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Lines           []TransferLine
}

// ShippingEvidence datos del despacho (transportador, guía, bultos, soporte).
type ShippingEvidence struct {
	Carrier        string `json:"carrier,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Packages       int    `json:"packages,omitempty"`
	EvidenceURL    string `json:"evidence_url,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// TransferLine línea del traslado. Difference = recibido − despachado (negativa si faltó mercancía).
type TransferLine struct {
	ID                string
	TransferID        string
	ProductID         string
	QuantityRequested decimal.Decimal
	QuantityShipped   decimal.Decimal
	QuantityReceived  decimal.Decimal
	UnitCost          decimal.Decimal
	BatchNumber       string
	ExpiryDate        *time.Time
	Difference        decimal.Decimal
	Notes             string
}

// TransferShipment cantidad realmente despachada (o recibida) para una línea.
type TransferShipment struct {
	LineID   string
	Quantity decimal.Decimal
	Notes    string
}

// RecomputeTotals recalcula totales y la marca de diferencias del encabezado.
func (t *Transfer) RecomputeTotals() {
	t.TotalRequested = decimal.Zero
	t.TotalShipped = decimal.Zero
	t.TotalReceived = decimal.Zero
	t.TotalCost = decimal.Zero
	t.HasDifferences = false
	for i := range t.Lines {
		l := &t.Lines[i]
		t.TotalRequested = t.TotalRequested.Add(l.QuantityRequested)
		t.TotalShipped = t.TotalShipped.Add(l.QuantityShipped)
		t.TotalReceived = t.TotalReceived.Add(l.QuantityReceived)
		t.TotalCost = t.TotalCost.Add(l.QuantityShipped.Mul(l.UnitCost))
		if !l.Difference.IsZero() {
			t.HasDifferences = true
		}
	}
}

// Line busca una línea por ID.
func (t *Transfer) Line(id string) *TransferLine {
	for i := range t.Lines {
		if t.Lines[i].ID == id {
			return &t.Lines[i]
		}
	}
	return nil
}
