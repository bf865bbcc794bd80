package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/memory"
)

const (
	tenant = "empresa-1"
	locA   = "bodega-a"
	locB   = "bodega-b"
	prodX  = "prod-x"
	prodY  = "prod-y"
	prodZ  = "prod-z"
	prodW  = "prod-w"
	prodF  = "prod-f" // terminado
	prodG  = "prod-g" // insumo
)

var actor = inventory.Actor{TenantID: tenant, UserID: "usuario-1"}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixture almacén en memoria con dos bodegas y el catálogo de prueba.
type fixture struct {
	store         *memory.Store
	sales         *inventory.SaleUseCase
	purchases     *inventory.PurchaseUseCase
	adjustments   *inventory.AdjustmentUseCase
	production    *inventory.ProductionUseCase
	transfers     *inventory.TransferUseCase
	counts        *inventory.CountUseCase
	queries       *inventory.MovementQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	for _, id := range []string{locA, locB} {
		st.AddLocation(entity.Location{ID: id, TenantID: tenant, Name: id, Active: true})
	}
	for _, id := range []string{prodX, prodY, prodZ, prodW, prodG} {
		st.AddProduct(entity.Product{ID: id, TenantID: tenant, SKU: id, Name: id, Active: true})
	}
	st.AddProduct(entity.Product{ID: prodF, TenantID: tenant, SKU: prodF, Name: prodF, Manufactured: true, Active: true})
	st.AddIngredient(entity.ProductIngredient{ProductID: prodF, IngredientID: prodG, QuantityPerUnit: d("2")})

	log := zerolog.Nop()
	return &fixture{
		store:         st,
		sales:         inventory.NewSaleUseCase(st, log),
		purchases:     inventory.NewPurchaseUseCase(st, log),
		adjustments:   inventory.NewAdjustmentUseCase(st, log),
		production:    inventory.NewProductionUseCase(st, log),
		transfers:     inventory.NewTransferUseCase(st, log),
		counts:        inventory.NewCountUseCase(st, log),
		queries:       inventory.NewMovementQueryUseCase(st),
		replenishment: inventory.NewReplenishmentUseCase(st),
	}
}

func (f *fixture) seed(productID, locationID, stock, avgCost string) {
	f.store.SetBalance(tenant, productID, locationID, d(stock), d(avgCost))
}

// stock saldo actual; 0 si la fila no existe.
func (f *fixture) stock(t *testing.T, productID, locationID string) decimal.Decimal {
	t.Helper()
	b, err := f.queries.GetBalance(context.Background(), actor, productID, locationID)
	if err != nil {
		return decimal.Zero
	}
	return b.CurrentStock
}

func (f *fixture) assertStock(t *testing.T, productID, locationID, want string) {
	t.Helper()
	got := f.stock(t, productID, locationID)
	assert.True(t, got.Equal(d(want)), "stock de %s en %s: esperado %s, obtenido %s", productID, locationID, want, got)
}

// assertLedgerChain verifica que cada asiento parte del saldo que dejó el anterior de la misma fila
// y que nuevo = anterior ± cantidad.
func (f *fixture) assertLedgerChain(t *testing.T) {
	t.Helper()
	last := map[entity.BalanceKey]decimal.Decimal{}
	for _, e := range f.store.Ledger() {
		k := entity.BalanceKey{ProductID: e.ProductID, LocationID: e.LocationID}
		if prev, ok := last[k]; ok {
			assert.True(t, e.PreviousStock.Equal(prev), "asiento %s no encadena con el anterior", e.ID)
		}
		want := e.PreviousStock.Add(e.Quantity)
		if e.Direction == entity.DirectionOut {
			want = e.PreviousStock.Sub(e.Quantity)
		}
		assert.True(t, e.NewStock.Equal(want), "asiento %s: nuevo saldo inconsistente", e.ID)
		assert.False(t, e.NewStock.IsNegative())
		last[k] = e.NewStock
	}
}

func line(productID, qty, cost string) inventory.LineInput {
	return inventory.LineInput{ProductID: productID, Quantity: d(qty), UnitCost: d(cost)}
}

func mustSale(t *testing.T, f *fixture, lines ...inventory.LineInput) *entity.MovementHeader {
	t.Helper()
	h, err := f.sales.Create(context.Background(), actor, inventory.CreateSaleInput{LocationID: locA, Lines: lines})
	require.NoError(t, err)
	return h
}

func createSale(locationID string, lines ...inventory.LineInput) inventory.CreateSaleInput {
	return inventory.CreateSaleInput{LocationID: locationID, Lines: lines}
}
