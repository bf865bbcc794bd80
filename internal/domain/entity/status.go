package entity

// Estados de la venta.
const (
	SaleDraft     = "draft"
	SaleProcessed = "processed"
	SaleClosed    = "closed"
	SaleCancelled = "cancelled"
)

// Estados de la compra.
const (
	PurchaseDraft     = "draft"
	PurchaseOrdered   = "ordered"
	PurchaseInTransit = "in_transit"
	PurchaseReceived  = "received"
	PurchaseCancelled = "cancelled"
)

// Estados de ajustes, consumos y producción (se crean ya aplicados).
const (
	MovementClosed   = "closed"
	MovementReverted = "reverted"
)

// TransferStatus estado del traslado entre ubicaciones.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferApproved  TransferStatus = "approved"
	TransferRejected  TransferStatus = "rejected"
	TransferInTransit TransferStatus = "in_transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// CountStatus estado del conteo físico.
type CountStatus string

const (
	CountPlanning  CountStatus = "planning"
	CountCounting  CountStatus = "counting"
	CountCompleted CountStatus = "completed"
	CountCancelled CountStatus = "cancelled"
)
