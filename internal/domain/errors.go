package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrMissingLocation     = errors.New("se requiere una ubicación")
	ErrReferential         = errors.New("referencia inexistente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente")
	ErrDeleteForbidden     = errors.New("no se puede eliminar una transacción que ya afectó el stock")
)

// InvalidTransitionError detalla un cambio de estado rechazado por la máquina de estados.
type InvalidTransitionError struct {
	Process string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: no se puede pasar de %q a %q", e.Process, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// NewInvalidTransition construye el error de transición.
func NewInvalidTransition(process, from, to string) error {
	return &InvalidTransitionError{Process: process, From: from, To: to}
}

// InsufficientStockError indica qué producto y ubicación no alcanzan la cantidad pedida.
type InsufficientStockError struct {
	ProductID  string
	LocationID string
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s en ubicación %s: disponible %s, solicitado %s",
		e.ProductID, e.LocationID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ReferentialError indica que un producto, ubicación o receta referenciada no existe.
type ReferentialError struct {
	Entity string
	ID     string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s %s no existe", e.Entity, e.ID)
}

func (e *ReferentialError) Is(target error) bool { return target == ErrReferential }

// NewReferential construye el error referencial.
func NewReferential(entity, id string) error {
	return &ReferentialError{Entity: entity, ID: id}
}

// IsBusiness indica si el error es de negocio (mostrable al usuario) y no operativo.
func IsBusiness(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrDeleteForbidden) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingLocation)
}

// IsRetryable indica si el error es operativo y el cliente puede reintentar.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
