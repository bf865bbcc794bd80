package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExpandBOM(t *testing.T) {
	recipe := []entity.ProductIngredient{
		{ProductID: "F", IngredientID: "H", QuantityPerUnit: d("0.5")},
		{ProductID: "F", IngredientID: "G", QuantityPerUnit: d("2")},
	}
	reqs, err := inventory.ExpandBOM("F", d("3"), recipe)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "G", reqs[0].IngredientID, "ordenado por insumo")
	assert.True(t, reqs[0].Quantity.Equal(d("6")))
	assert.Equal(t, "H", reqs[1].IngredientID)
	assert.True(t, reqs[1].Quantity.Equal(d("1.5")))
}

func TestExpandBOM_AcumulaInsumosRepetidos(t *testing.T) {
	recipe := []entity.ProductIngredient{
		{ProductID: "F", IngredientID: "G", QuantityPerUnit: d("1")},
		{ProductID: "F", IngredientID: "G", QuantityPerUnit: d("1")},
	}
	reqs, err := inventory.ExpandBOM("F", d("4"), recipe)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Quantity.Equal(d("8")))
	assert.True(t, reqs[0].QuantityPerUnit.Equal(d("2")))
}

func TestExpandBOM_Errores(t *testing.T) {
	_, err := inventory.ExpandBOM("F", d("1"), nil)
	assert.True(t, errors.Is(err, domain.ErrReferential))

	_, err = inventory.ExpandBOM("F", d("0"), []entity.ProductIngredient{{ProductID: "F", IngredientID: "G", QuantityPerUnit: d("1")}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = inventory.ExpandBOM("F", d("1"), []entity.ProductIngredient{{ProductID: "F", IngredientID: "F", QuantityPerUnit: d("1")}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "un producto no puede consumirse a sí mismo")
}

func TestUnitCostFromIngredients(t *testing.T) {
	reqs := []inventory.Requirement{
		{IngredientID: "G", QuantityPerUnit: d("2")},
		{IngredientID: "H", QuantityPerUnit: d("0.5")},
	}
	cost := inventory.UnitCostFromIngredients(reqs, map[string]decimal.Decimal{"G": d("100"), "H": d("40")})
	assert.True(t, cost.Equal(d("220")))
}
