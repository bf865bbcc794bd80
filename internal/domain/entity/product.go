package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product lectura mínima del producto (lo administra la capa CRUD externa).
// Manufactured indica que se fabrica a partir de una receta (ProductIngredient).
type Product struct {
	ID           string
	TenantID     string
	SKU          string // código único por empresa
	Name         string
	Cost         decimal.Decimal // costo de referencia cuando no hay saldo
	Manufactured bool
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductIngredient línea de la receta (bill of materials) de un producto fabricado.
type ProductIngredient struct {
	ProductID       string // producto terminado
	IngredientID    string // insumo
	QuantityPerUnit decimal.Decimal
}
