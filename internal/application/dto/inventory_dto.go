package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest línea de producto de una venta, compra, ajuste o consumo.
// En ventas unit_cost es el precio unitario.
type LineRequest struct {
	ProductID   string           `json:"product_id" validate:"required,uuid"`
	Quantity    decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitCost    decimal.Decimal  `json:"unit_cost" validate:"gte=0"`
	TotalCost   *decimal.Decimal `json:"total_cost,omitempty" validate:"omitempty,gte=0"`
	BatchNumber string           `json:"batch_number,omitempty" validate:"max=64"`
	ExpiryDate  *time.Time       `json:"expiry_date,omitempty"`
	Notes       string           `json:"notes,omitempty" validate:"max=500"`
}

// UpdateLinesRequest body para PUT /api/inventory/{sales|purchases}/{id}/lines.
type UpdateLinesRequest struct {
	Lines []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateSaleRequest body para POST /api/inventory/sales.
type CreateSaleRequest struct {
	LocationID       string        `json:"location_id" validate:"required,uuid"`
	DocumentNumber   string        `json:"document_number,omitempty" validate:"max=64"`
	OccurredAt       *time.Time    `json:"occurred_at,omitempty"`
	PaymentMethod    string        `json:"payment_method,omitempty" validate:"max=32"`
	CustomerName     string        `json:"customer_name,omitempty" validate:"max=200"`
	CustomerDocument string        `json:"customer_document,omitempty" validate:"max=32"`
	Lines            []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreatePurchaseRequest body para POST /api/inventory/purchases.
type CreatePurchaseRequest struct {
	LocationID       string        `json:"location_id" validate:"required,uuid"`
	DocumentNumber   string        `json:"document_number,omitempty" validate:"max=64"`
	OccurredAt       *time.Time    `json:"occurred_at,omitempty"`
	SupplierName     string        `json:"supplier_name,omitempty" validate:"max=200"`
	SupplierDocument string        `json:"supplier_document,omitempty" validate:"max=32"`
	Lines            []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// TransitionRequest estado destino explícito (compras).
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=draft ordered in_transit received cancelled"`
}

// CreateAdjustmentRequest body para POST /api/inventory/adjustments.
type CreateAdjustmentRequest struct {
	LocationID     string        `json:"location_id" validate:"required,uuid"`
	DocumentNumber string        `json:"document_number,omitempty" validate:"max=64"`
	OccurredAt     *time.Time    `json:"occurred_at,omitempty"`
	Direction      string        `json:"direction" validate:"required,oneof=increase decrease"`
	Reason         string        `json:"reason,omitempty" validate:"max=200"`
	Lines          []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateUsageRequest body para POST /api/inventory/usages.
type CreateUsageRequest struct {
	LocationID     string        `json:"location_id" validate:"required,uuid"`
	DocumentNumber string        `json:"document_number,omitempty" validate:"max=64"`
	OccurredAt     *time.Time    `json:"occurred_at,omitempty"`
	Requester      string        `json:"requester,omitempty" validate:"max=200"`
	Purpose        string        `json:"purpose,omitempty" validate:"max=200"`
	Lines          []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ProduceRequest body para POST /api/inventory/productions.
type ProduceRequest struct {
	ProductID      string          `json:"product_id" validate:"required,uuid"`
	Quantity       decimal.Decimal `json:"quantity" validate:"gt=0"`
	LocationID     string          `json:"location_id" validate:"required,uuid"`
	DocumentNumber string          `json:"document_number,omitempty" validate:"max=64"`
	Notes          string          `json:"notes,omitempty" validate:"max=500"`
}

// TransferLineRequest producto y cantidad solicitada en un traslado.
type TransferLineRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	BatchNumber string          `json:"batch_number,omitempty" validate:"max=64"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	Notes       string          `json:"notes,omitempty" validate:"max=500"`
}

// CreateTransferRequest body para POST /api/inventory/transfers.
type CreateTransferRequest struct {
	FromLocationID string                `json:"from_location_id" validate:"required,uuid"`
	ToLocationID   string                `json:"to_location_id" validate:"required,uuid,nefield=FromLocationID"`
	DocumentNumber string                `json:"document_number,omitempty" validate:"max=64"`
	Notes          string                `json:"notes,omitempty" validate:"max=500"`
	Lines          []TransferLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// RejectTransferRequest motivo del rechazo.
type RejectTransferRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ShipmentLineRequest cantidad despachada o recibida de una línea.
type ShipmentLineRequest struct {
	LineID   string          `json:"line_id" validate:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity" validate:"gte=0"`
	Notes    string          `json:"notes,omitempty" validate:"max=500"`
}

// ShipTransferRequest body para POST /api/inventory/transfers/{id}/ship. Sin líneas se despacha
// lo solicitado.
type ShipTransferRequest struct {
	Lines          []ShipmentLineRequest `json:"lines,omitempty" validate:"omitempty,dive"`
	Carrier        string                `json:"carrier,omitempty" validate:"max=100"`
	TrackingNumber string                `json:"tracking_number,omitempty" validate:"max=100"`
	Packages       int                   `json:"packages,omitempty" validate:"gte=0"`
	EvidenceURL    string                `json:"evidence_url,omitempty" validate:"omitempty,url"`
	Notes          string                `json:"notes,omitempty" validate:"max=500"`
}

// ReceiveTransferRequest body para POST /api/inventory/transfers/{id}/receive. Sin líneas se
// recibe todo lo despachado.
type ReceiveTransferRequest struct {
	Lines []ShipmentLineRequest `json:"lines,omitempty" validate:"omitempty,dive"`
}

// CreateCountRequest body para POST /api/inventory/counts.
type CreateCountRequest struct {
	LocationID     string     `json:"location_id" validate:"required,uuid"`
	DocumentNumber string     `json:"document_number,omitempty" validate:"max=64"`
	CountDate      *time.Time `json:"count_date,omitempty"`
	Notes          string     `json:"notes,omitempty" validate:"max=500"`
	ProductIDs     []string   `json:"product_ids,omitempty" validate:"omitempty,dive,uuid"`
}

// RecordCountRequest cantidad contada de una línea (line_id) o de un producto (product_id).
// Uno de los dos es obligatorio.
type RecordCountRequest struct {
	LineID    string          `json:"line_id,omitempty" validate:"omitempty,uuid"`
	ProductID string          `json:"product_id,omitempty" validate:"omitempty,uuid"`
	Counted   decimal.Decimal `json:"counted" validate:"gte=0"`
	Notes     string          `json:"notes,omitempty" validate:"max=500"`
}

// InitBalanceRequest body para POST /api/inventory/balances.
type InitBalanceRequest struct {
	ProductID    string          `json:"product_id" validate:"required,uuid"`
	LocationID   string          `json:"location_id" validate:"required,uuid"`
	MinimumStock decimal.Decimal `json:"minimum_stock" validate:"gte=0"`
	MaximumStock decimal.Decimal `json:"maximum_stock" validate:"gte=0"`
}

// MovementLineResponse línea de un encabezado con la foto de stock al aplicarse.
type MovementLineResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	Direction     string           `json:"direction"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      decimal.Decimal  `json:"unit_cost"`
	TotalCost     decimal.Decimal  `json:"total_cost"`
	BatchNumber   string           `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
	PreviousStock *decimal.Decimal `json:"previous_stock,omitempty"`
	NewStock      *decimal.Decimal `json:"new_stock,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// MovementResponse encabezado de venta, compra, ajuste, consumo o producción.
type MovementResponse struct {
	ID                    string                 `json:"id"`
	Process               string                 `json:"process"`
	Type                  string                 `json:"type"`
	Reason                string                 `json:"reason"`
	Status                string                 `json:"status"`
	DocumentNumber        string                 `json:"document_number"`
	OriginLocationID      *string                `json:"origin_location_id,omitempty"`
	DestinationLocationID *string                `json:"destination_location_id,omitempty"`
	TotalCost             decimal.Decimal        `json:"total_cost"`
	Metadata              any                    `json:"metadata"`
	OccurredAt            time.Time              `json:"occurred_at"`
	ActorID               string                 `json:"actor_id"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
	Lines                 []MovementLineResponse `json:"lines"`
}

// MovementListResponse listado paginado de encabezados.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BalanceResponse saldo de un producto en una ubicación.
type BalanceResponse struct {
	ProductID      string          `json:"product_id"`
	LocationID     string          `json:"location_id"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	MinimumStock   decimal.Decimal `json:"minimum_stock"`
	MaximumStock   decimal.Decimal `json:"maximum_stock"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	Active         bool            `json:"active"`
	LastMovementAt *time.Time      `json:"last_movement_at,omitempty"`
}

// LedgerEntryResponse asiento del kardex.
type LedgerEntryResponse struct {
	ID             string          `json:"id"`
	Source         string          `json:"source"`
	HeaderID       string          `json:"header_id"`
	LineID         string          `json:"line_id,omitempty"`
	Type           string          `json:"type"`
	Reason         string          `json:"reason"`
	Direction      string          `json:"direction"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	PreviousStock  decimal.Decimal `json:"previous_stock"`
	NewStock       decimal.Decimal `json:"new_stock"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	DocumentNumber string          `json:"document_number,omitempty"`
	ActorID        string          `json:"actor_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// KardexResponse asientos de un producto, más recientes primero.
type KardexResponse struct {
	ProductID  string                `json:"product_id"`
	LocationID string                `json:"location_id,omitempty"`
	Entries    []LedgerEntryResponse `json:"entries"`
	Page       PageResponse          `json:"page"`
}

// TransferLineResponse línea de un traslado.
type TransferLineResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	QuantityShipped   decimal.Decimal `json:"quantity_shipped"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Difference        decimal.Decimal `json:"difference"`
	BatchNumber       string          `json:"batch_number,omitempty"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// TransferResponse traslado con sus líneas y marcas de cada paso.
type TransferResponse struct {
	ID              string                 `json:"id"`
	DocumentNumber  string                 `json:"document_number"`
	FromLocationID  string                 `json:"from_location_id"`
	ToLocationID    string                 `json:"to_location_id"`
	Status          string                 `json:"status"`
	Notes           string                 `json:"notes,omitempty"`
	RequestedBy     string                 `json:"requested_by"`
	RequestedAt     time.Time              `json:"requested_at"`
	ApprovedAt      *time.Time             `json:"approved_at,omitempty"`
	RejectedAt      *time.Time             `json:"rejected_at,omitempty"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	ShippedAt       *time.Time             `json:"shipped_at,omitempty"`
	ReceivedAt      *time.Time             `json:"received_at,omitempty"`
	CancelledAt     *time.Time             `json:"cancelled_at,omitempty"`
	Evidence        any                    `json:"shipping_evidence,omitempty"`
	TotalRequested  decimal.Decimal        `json:"total_requested"`
	TotalShipped    decimal.Decimal        `json:"total_shipped"`
	TotalReceived   decimal.Decimal        `json:"total_received"`
	TotalCost       decimal.Decimal        `json:"total_cost"`
	HasDifferences  bool                   `json:"has_differences"`
	Lines           []TransferLineResponse `json:"lines"`
}

// CountLineResponse línea de conteo.
type CountLineResponse struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"product_id"`
	SystemQuantity  decimal.Decimal  `json:"system_quantity"`
	CountedQuantity *decimal.Decimal `json:"counted_quantity,omitempty"`
	Difference      decimal.Decimal  `json:"difference"`
	Notes           string           `json:"notes,omitempty"`
}

// CountResponse conteo físico.
type CountResponse struct {
	ID             string              `json:"id"`
	LocationID     string              `json:"location_id"`
	DocumentNumber string              `json:"document_number"`
	Status         string              `json:"status"`
	CountDate      time.Time           `json:"count_date"`
	Notes          string              `json:"notes,omitempty"`
	StartedAt      *time.Time          `json:"started_at,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
	Lines          []CountLineResponse `json:"lines"`
}

// ReplenishmentSuggestionDTO producto bajo su stock mínimo con la cantidad sugerida de pedido.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	LocationID         string          `json:"location_id"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinimumStock       decimal.Decimal `json:"minimum_stock"`
	TargetStock        decimal.Decimal `json:"target_stock"`        // máximo o 1.5 × mínimo
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"` // TargetStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`           // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
