package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo contable del encabezado.
type MovementType string

// Tipos de movimiento.
const (
	MovementTypeEntry      MovementType = "entry"
	MovementTypeExit       MovementType = "exit"
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeProduction MovementType = "production"
)

// MovementReason motivo de negocio del encabezado.
type MovementReason string

// Motivos de movimiento.
const (
	ReasonPurchase        MovementReason = "purchase"
	ReasonSale            MovementReason = "sale"
	ReasonTransfer        MovementReason = "transfer"
	ReasonAdjustment      MovementReason = "adjustment"
	ReasonUsage           MovementReason = "usage"
	ReasonProduction      MovementReason = "production"
	ReasonStockAdjustment MovementReason = "stock_adjustment"
)

// Process identifica el proceso dueño de un encabezado.
type Process string

// Procesos que comparten el encabezado genérico.
const (
	ProcessSale       Process = "sale"
	ProcessPurchase   Process = "purchase"
	ProcessAdjustment Process = "adjustment"
	ProcessUsage      Process = "usage"
	ProcessProduction Process = "production"
)

// Discriminant par (type, reason); fijo desde la creación del encabezado.
type Discriminant struct {
	Type   MovementType
	Reason MovementReason
}

// Discriminantes de cada proceso.
var (
	SaleDiscriminant       = Discriminant{Type: MovementTypeExit, Reason: ReasonSale}
	PurchaseDiscriminant   = Discriminant{Type: MovementTypeEntry, Reason: ReasonPurchase}
	AdjustmentDiscriminant = Discriminant{Type: MovementTypeAdjustment, Reason: ReasonAdjustment}
	UsageDiscriminant      = Discriminant{Type: MovementTypeExit, Reason: ReasonUsage}
	ProductionDiscriminant = Discriminant{Type: MovementTypeProduction, Reason: ReasonProduction}
)

// ProcessOf resuelve el proceso a partir del discriminante. ok=false si no corresponde a ninguno.
func ProcessOf(d Discriminant) (Process, bool) {
	switch d {
	case SaleDiscriminant:
		return ProcessSale, true
	case PurchaseDiscriminant:
		return ProcessPurchase, true
	case AdjustmentDiscriminant:
		return ProcessAdjustment, true
	case UsageDiscriminant:
		return ProcessUsage, true
	case ProductionDiscriminant:
		return ProcessProduction, true
	}
	return "", false
}

// Discriminant devuelve el discriminante del proceso.
func (p Process) Discriminant() Discriminant {
	switch p {
	case ProcessSale:
		return SaleDiscriminant
	case ProcessPurchase:
		return PurchaseDiscriminant
	case ProcessAdjustment:
		return AdjustmentDiscriminant
	case ProcessUsage:
		return UsageDiscriminant
	case ProcessProduction:
		return ProductionDiscriminant
	}
	return Discriminant{}
}

// LineDirection sentido de la línea respecto al stock.
type LineDirection string

const (
	DirectionIn  LineDirection = "in"
	DirectionOut LineDirection = "out"
)

// MovementHeader encabezado de una transacción de inventario (venta, compra, ajuste, consumo, producción).
type MovementHeader struct {
	ID                    string
	TenantID              string
	OriginLocationID      *string // ubicación que pierde stock (salidas)
	DestinationLocationID *string // ubicación que recibe stock (entradas)
	Type                  MovementType
	Reason                MovementReason
	Status                string
	DocumentNumber        string
	Metadata              MovementMetadata
	TotalCost             decimal.Decimal
	OccurredAt            time.Time
	ActorID               string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Lines                 []MovementLine
}

// Discriminant devuelve el par (type, reason).
func (h *MovementHeader) Discriminant() Discriminant {
	return Discriminant{Type: h.Type, Reason: h.Reason}
}

// Process devuelve el proceso dueño del encabezado (vacío si el discriminante es desconocido).
func (h *MovementHeader) Process() Process {
	p, _ := ProcessOf(h.Discriminant())
	return p
}

// RecomputeTotal recalcula el total del encabezado como la suma de los totales de línea.
func (h *MovementHeader) RecomputeTotal() {
	total := decimal.Zero
	for i := range h.Lines {
		total = total.Add(h.Lines[i].TotalCost)
	}
	h.TotalCost = total
}

// MovementLine una línea de producto dentro de un encabezado.
type MovementLine struct {
	ID            string
	HeaderID      string
	ProductID     string
	Direction     LineDirection
	Quantity      decimal.Decimal // siempre positiva; el sentido lo da Direction
	UnitCost      decimal.Decimal // en ventas es el precio unitario
	TotalCost     decimal.Decimal
	BatchNumber   string
	ExpiryDate    *time.Time
	PreviousStock *decimal.Decimal
	NewStock      *decimal.Decimal
	Notes         string
}

// NewMovementLine construye una línea calculando total = cantidad × costo unitario.
func NewMovementLine(productID string, dir LineDirection, qty, unitCost decimal.Decimal) MovementLine {
	return MovementLine{
		ProductID: productID,
		Direction: dir,
		Quantity:  qty,
		UnitCost:  unitCost,
		TotalCost: qty.Mul(unitCost),
	}
}

// MovementMetadata datos propios de cada proceso; solo uno de los sub-objetos viene informado.
type MovementMetadata struct {
	Sale       *SaleInfo       `json:"sale,omitempty"`
	Purchase   *PurchaseInfo   `json:"purchase,omitempty"`
	Adjustment *AdjustmentInfo `json:"adjustment,omitempty"`
	Usage      *UsageInfo      `json:"usage,omitempty"`
	Production *ProductionInfo `json:"production,omitempty"`
}

// SaleInfo datos de la venta (cliente, forma de pago, marcas de tiempo de cada paso).
type SaleInfo struct {
	PaymentMethod    string     `json:"payment_method,omitempty"`
	CustomerName     string     `json:"customer_name,omitempty"`
	CustomerDocument string     `json:"customer_document,omitempty"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
}

// PurchaseInfo datos del proveedor y de cada paso de la compra.
type PurchaseInfo struct {
	SupplierName     string     `json:"supplier_name,omitempty"`
	SupplierDocument string     `json:"supplier_document,omitempty"`
	OrderedAt        *time.Time `json:"ordered_at,omitempty"`
	ShippedAt        *time.Time `json:"shipped_at,omitempty"`
	ReceivedAt       *time.Time `json:"received_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
}

// AdjustmentDirection sentido del ajuste manual.
type AdjustmentDirection string

const (
	AdjustmentIncrease AdjustmentDirection = "increase"
	AdjustmentDecrease AdjustmentDirection = "decrease"
)

// AdjustmentInfo sentido y motivo del ajuste.
type AdjustmentInfo struct {
	Direction AdjustmentDirection `json:"direction"`
	Reason    string              `json:"reason,omitempty"`
}

// UsageInfo quién solicita el consumo interno y para qué.
type UsageInfo struct {
	Requester string `json:"requester,omitempty"`
	Purpose   string `json:"purpose,omitempty"`
}

// ProductionInfo producto terminado y cantidad fabricada.
type ProductionInfo struct {
	ProductID  string          `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	RevertedAt *time.Time      `json:"reverted_at,omitempty"`
	RevertedBy string          `json:"reverted_by,omitempty"`
}
