package inventory

import (
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// StockEffect efecto sobre el saldo de una transición.
type StockEffect int

const (
	EffectNone      StockEffect = iota
	EffectDecrement             // sale stock de la ubicación del proceso
	EffectIncrement             // entra stock a la ubicación del proceso
)

// Machine tabla de transiciones permitidas de un proceso.
type Machine struct {
	process string
	edges   map[string][]string
	effect  func(from, to string) StockEffect
}

// Can indica si la transición está en la tabla.
func (m Machine) Can(from, to string) bool {
	for _, s := range m.edges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Check devuelve InvalidTransitionError si la transición no está permitida.
func (m Machine) Check(from, to string) error {
	if !m.Can(from, to) {
		return domain.NewInvalidTransition(m.process, from, to)
	}
	return nil
}

// Effect efecto sobre stock de una transición ya validada.
func (m Machine) Effect(from, to string) StockEffect {
	if m.effect == nil {
		return EffectNone
	}
	return m.effect(from, to)
}

// Terminal indica que el estado no tiene salidas.
func (m Machine) Terminal(status string) bool {
	return len(m.edges[status]) == 0
}

// SaleMachine: draft → processed → closed; cancelled desde draft, processed o closed.
// Entrar a closed descuenta; salir de closed hacia cancelled devuelve lo descontado.
var SaleMachine = Machine{
	process: "venta",
	edges: map[string][]string{
		entity.SaleDraft:     {entity.SaleProcessed, entity.SaleClosed, entity.SaleCancelled},
		entity.SaleProcessed: {entity.SaleClosed, entity.SaleCancelled},
		entity.SaleClosed:    {entity.SaleCancelled},
	},
	effect: func(from, to string) StockEffect {
		switch {
		case to == entity.SaleClosed:
			return EffectDecrement
		case from == entity.SaleClosed:
			return EffectIncrement
		}
		return EffectNone
	},
}

// purchaseFlow orden de avance de la compra.
var purchaseFlow = []string{
	entity.PurchaseDraft,
	entity.PurchaseOrdered,
	entity.PurchaseInTransit,
	entity.PurchaseReceived,
}

// PurchaseMachine: avance y retroceso de a un paso; cancelled desde cualquier estado.
// Solo received suma stock; salir de received (retroceso o cancelación) revierte la entrada.
var PurchaseMachine = Machine{
	process: "compra",
	edges: map[string][]string{
		entity.PurchaseDraft:     {entity.PurchaseOrdered, entity.PurchaseCancelled},
		entity.PurchaseOrdered:   {entity.PurchaseInTransit, entity.PurchaseDraft, entity.PurchaseCancelled},
		entity.PurchaseInTransit: {entity.PurchaseReceived, entity.PurchaseOrdered, entity.PurchaseCancelled},
		entity.PurchaseReceived:  {entity.PurchaseInTransit, entity.PurchaseCancelled},
	},
	effect: func(from, to string) StockEffect {
		switch {
		case to == entity.PurchaseReceived:
			return EffectIncrement
		case from == entity.PurchaseReceived:
			return EffectDecrement
		}
		return EffectNone
	},
}

// NextPurchaseStatus estado siguiente en el flujo; ok=false si no hay.
func NextPurchaseStatus(status string) (string, bool) {
	for i, s := range purchaseFlow {
		if s == status && i+1 < len(purchaseFlow) {
			return purchaseFlow[i+1], true
		}
	}
	return "", false
}

// PrevPurchaseStatus estado anterior en el flujo; ok=false si no hay.
func PrevPurchaseStatus(status string) (string, bool) {
	for i, s := range purchaseFlow {
		if s == status && i > 0 {
			return purchaseFlow[i-1], true
		}
	}
	return "", false
}

// ProductionMachine: la producción nace cerrada y solo puede revertirse una vez.
var ProductionMachine = Machine{
	process: "producción",
	edges: map[string][]string{
		entity.MovementClosed: {entity.MovementReverted},
	},
}

// TransferMachine: pending → approved → in_transit → completed.
// rejected desde pending (o desde in_transit cuando la recepción suma cero).
var TransferMachine = Machine{
	process: "traslado",
	edges: map[string][]string{
		string(entity.TransferPending):   {string(entity.TransferApproved), string(entity.TransferRejected), string(entity.TransferCancelled)},
		string(entity.TransferApproved):  {string(entity.TransferInTransit), string(entity.TransferCancelled)},
		string(entity.TransferInTransit): {string(entity.TransferCompleted), string(entity.TransferRejected), string(entity.TransferCancelled)},
	},
}

// CountMachine: planning → counting → completed; cancelled desde planning o counting.
var CountMachine = Machine{
	process: "conteo",
	edges: map[string][]string{
		string(entity.CountPlanning): {string(entity.CountCounting), string(entity.CountCancelled)},
		string(entity.CountCounting): {string(entity.CountCompleted), string(entity.CountCancelled)},
	},
}
