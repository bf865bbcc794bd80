package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

func mustPurchase(t *testing.T, f *fixture, lines ...inventory.LineInput) *entity.MovementHeader {
	t.Helper()
	h, err := f.purchases.Create(context.Background(), actor, inventory.CreatePurchaseInput{
		LocationID: locA,
		Info:       entity.PurchaseInfo{SupplierName: "Proveedor SAS"},
		Lines:      lines,
	})
	require.NoError(t, err)
	return h
}

func TestPurchase_RecepcionSumaConCostoPromedio(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "10", "5")
	ctx := context.Background()

	h := mustPurchase(t, f, line(prodX, "10", "7"))
	require.NotNil(t, h.DestinationLocationID)
	assert.Nil(t, h.OriginLocationID)

	for _, want := range []string{entity.PurchaseOrdered, entity.PurchaseInTransit} {
		got, err := f.purchases.Advance(ctx, actor, h.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
		f.assertStock(t, prodX, locA, "10")
	}

	received, err := f.purchases.Advance(ctx, actor, h.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseReceived, received.Status)
	require.NotNil(t, received.Metadata.Purchase.ReceivedAt)
	assert.Equal(t, "Proveedor SAS", received.Metadata.Purchase.SupplierName)

	b, err := f.queries.GetBalance(ctx, actor, prodX, locA)
	require.NoError(t, err)
	assert.True(t, b.CurrentStock.Equal(d("20")))
	assert.True(t, b.AverageCost.Equal(d("6")), "(10×5 + 10×7) / 20")

	_, err = f.purchases.Advance(ctx, actor, h.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "received es el último paso")
}

func TestPurchase_RecepcionCreaSaldoInexistente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := mustPurchase(t, f, line(prodY, "3", "4"))
	_, err := f.purchases.Transition(ctx, actor, h.ID, entity.PurchaseReceived)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "no se salta pasos")

	for i := 0; i < 3; i++ {
		_, err = f.purchases.Advance(ctx, actor, h.ID)
		require.NoError(t, err)
	}
	f.assertStock(t, prodY, locA, "3")

	ledger := f.store.Ledger()
	require.Len(t, ledger, 1)
	assert.True(t, ledger[0].PreviousStock.IsZero())
	assert.Equal(t, entity.DirectionIn, ledger[0].Direction)
	assert.Equal(t, entity.ReasonPurchase, ledger[0].Reason)
}

func TestPurchase_RetrocederDesdeRecibidaDescuenta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := mustPurchase(t, f, line(prodX, "10", "7"))
	for i := 0; i < 3; i++ {
		_, err := f.purchases.Advance(ctx, actor, h.ID)
		require.NoError(t, err)
	}
	f.assertStock(t, prodX, locA, "10")

	back, err := f.purchases.Revert(ctx, actor, h.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseInTransit, back.Status)
	assert.Nil(t, back.Metadata.Purchase.ReceivedAt)
	f.assertStock(t, prodX, locA, "0")
	f.assertLedgerChain(t)
}

func TestPurchase_RetrocederSinStockFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := mustPurchase(t, f, line(prodX, "10", "7"))
	for i := 0; i < 3; i++ {
		_, err := f.purchases.Advance(ctx, actor, h.ID)
		require.NoError(t, err)
	}
	sale := mustSale(t, f, line(prodX, "8", "12"))
	_, err := f.sales.Close(ctx, actor, sale.ID)
	require.NoError(t, err)

	_, err = f.purchases.Revert(ctx, actor, h.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	f.assertStock(t, prodX, locA, "2")

	got, err := f.queries.Get(ctx, actor, entity.ProcessPurchase, h.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseReceived, got.Status)
}

func TestPurchase_Cancelacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := mustPurchase(t, f, line(prodX, "1", "7"))
	_, err := f.purchases.Advance(ctx, actor, h.ID)
	require.NoError(t, err)
	cancelled, err := f.purchases.Cancel(ctx, actor, h.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.Metadata.Purchase.CancelledAt)

	received := mustPurchase(t, f, line(prodX, "1", "7"))
	for i := 0; i < 3; i++ {
		_, err = f.purchases.Advance(ctx, actor, received.ID)
		require.NoError(t, err)
	}
	assert.ErrorIs(t, f.queries.Delete(ctx, actor, entity.ProcessPurchase, received.ID), domain.ErrDeleteForbidden)
}

func TestPurchase_CancelarRecibidaDescuenta(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "5", "4")
	ctx := context.Background()

	h := mustPurchase(t, f, line(prodX, "3", "4"))
	for i := 0; i < 3; i++ {
		_, err := f.purchases.Advance(ctx, actor, h.ID)
		require.NoError(t, err)
	}
	f.assertStock(t, prodX, locA, "8")

	cancelled, err := f.purchases.Cancel(ctx, actor, h.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseCancelled, cancelled.Status)
	require.NotNil(t, cancelled.Metadata.Purchase.CancelledAt)
	assert.NotNil(t, cancelled.Metadata.Purchase.ReceivedAt, "la fecha de recepción queda como historia")
	f.assertStock(t, prodX, locA, "5")

	ledger := f.store.Ledger()
	require.Len(t, ledger, 2)
	assert.Equal(t, entity.DirectionOut, ledger[1].Direction)
	assert.True(t, ledger[1].Quantity.Equal(d("3")))
	f.assertLedgerChain(t)

	_, err = f.purchases.Revert(ctx, actor, h.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "cancelled es terminal")
}

func TestPurchase_RetrocesoRestauraCostoPromedio(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "10", "2")
	ctx := context.Background()

	h := mustPurchase(t, f, line(prodX, "10", "10"))
	for i := 0; i < 3; i++ {
		_, err := f.purchases.Advance(ctx, actor, h.ID)
		require.NoError(t, err)
	}
	b, err := f.queries.GetBalance(ctx, actor, prodX, locA)
	require.NoError(t, err)
	require.True(t, b.AverageCost.Equal(d("6")), "(10×2 + 10×10) / 20, obtenido %s", b.AverageCost)

	_, err = f.purchases.Revert(ctx, actor, h.ID)
	require.NoError(t, err)
	b, err = f.queries.GetBalance(ctx, actor, prodX, locA)
	require.NoError(t, err)
	assert.True(t, b.CurrentStock.Equal(d("10")))
	assert.True(t, b.AverageCost.Equal(d("2")), "el promedio vuelve al previo a la recepción, obtenido %s", b.AverageCost)

	ledger := f.store.Ledger()
	require.Len(t, ledger, 2)
	assert.True(t, ledger[1].UnitCost.Equal(d("10")), "la salida lleva el costo de la entrada que deshace")

	// recibir otra vez y volver a retroceder: solo se deshace la entrada vigente
	_, err = f.purchases.Advance(ctx, actor, h.ID)
	require.NoError(t, err)
	_, err = f.purchases.Revert(ctx, actor, h.ID)
	require.NoError(t, err)
	b, err = f.queries.GetBalance(ctx, actor, prodX, locA)
	require.NoError(t, err)
	assert.True(t, b.CurrentStock.Equal(d("10")))
	assert.True(t, b.AverageCost.Equal(d("2")))
	f.assertLedgerChain(t)
}

func TestPurchase_RetrocesoLimpiaFecha(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := mustPurchase(t, f, line(prodX, "1", "7"))
	ordered, err := f.purchases.Advance(ctx, actor, h.ID)
	require.NoError(t, err)
	require.NotNil(t, ordered.Metadata.Purchase.OrderedAt)

	draft, err := f.purchases.Revert(ctx, actor, h.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseDraft, draft.Status)
	assert.Nil(t, draft.Metadata.Purchase.OrderedAt)

	_, err = f.purchases.Revert(ctx, actor, h.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	list, err := f.queries.List(ctx, actor, entity.ProcessPurchase, entity.PurchaseDraft, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
