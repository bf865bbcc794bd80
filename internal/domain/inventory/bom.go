package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// Requirement cantidad de un insumo necesaria para una orden de producción.
type Requirement struct {
	IngredientID    string
	QuantityPerUnit decimal.Decimal
	Quantity        decimal.Decimal
}

// ExpandBOM expande la receta de productID para fabricar qty unidades.
// Insumos repetidos en la receta se acumulan en un solo requerimiento; el resultado queda
// ordenado por insumo para que los bloqueos se tomen siempre en el mismo orden.
func ExpandBOM(productID string, qty decimal.Decimal, recipe []entity.ProductIngredient) ([]Requirement, error) {
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if len(recipe) == 0 {
		return nil, domain.NewReferential("receta", productID)
	}
	byID := make(map[string]*Requirement, len(recipe))
	order := make([]string, 0, len(recipe))
	for _, ing := range recipe {
		if ing.ProductID != productID || ing.IngredientID == "" || ing.IngredientID == productID {
			return nil, domain.ErrInvalidInput
		}
		if !ing.QuantityPerUnit.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		r, ok := byID[ing.IngredientID]
		if !ok {
			r = &Requirement{IngredientID: ing.IngredientID, QuantityPerUnit: decimal.Zero, Quantity: decimal.Zero}
			byID[ing.IngredientID] = r
			order = append(order, ing.IngredientID)
		}
		r.QuantityPerUnit = r.QuantityPerUnit.Add(ing.QuantityPerUnit)
		r.Quantity = r.Quantity.Add(ing.QuantityPerUnit.Mul(qty))
	}
	sort.Strings(order)
	out := make([]Requirement, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// UnitCostFromIngredients costo unitario del terminado = Σ costo promedio del insumo × cantidad por unidad.
func UnitCostFromIngredients(reqs []Requirement, avgCost map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range reqs {
		total = total.Add(avgCost[r.IngredientID].Mul(r.QuantityPerUnit))
	}
	return total
}
