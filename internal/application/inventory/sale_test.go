package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// Saldo 10, venta de 4 cerrada → saldo 6 y un asiento {anterior 10, nuevo 6, cantidad 4}.
func TestSale_CierreDescuentaStock(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "10", "5")
	ctx := context.Background()

	h := mustSale(t, f, line(prodX, "4", "12"))
	assert.Equal(t, entity.SaleDraft, h.Status)
	assert.True(t, h.TotalCost.Equal(d("48")), "total = cantidad × precio")

	closed, err := f.sales.Close(ctx, actor, h.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleClosed, closed.Status)
	require.NotNil(t, closed.Metadata.Sale.ClosedAt)
	f.assertStock(t, prodX, locA, "6")

	ledger := f.store.Ledger()
	require.Len(t, ledger, 1)
	e := ledger[0]
	assert.True(t, e.PreviousStock.Equal(d("10")))
	assert.True(t, e.NewStock.Equal(d("6")))
	assert.True(t, e.Quantity.Equal(d("4")))
	assert.Equal(t, entity.DirectionOut, e.Direction)
	assert.Equal(t, entity.ReasonSale, e.Reason)
	assert.Equal(t, h.DocumentNumber, e.DocumentNumber)

	got, err := f.queries.Get(ctx, actor, entity.ProcessSale, h.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Lines[0].NewStock)
	assert.True(t, got.Lines[0].NewStock.Equal(d("6")))
}

// Saldo 3, venta de 5 → InsufficientStock{disponible 3, solicitado 5} y saldo intacto.
func TestSale_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "3", "5")
	ctx := context.Background()

	h := mustSale(t, f, line(prodX, "5", "12"))
	_, err := f.sales.Close(ctx, actor, h.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(d("3")))
	assert.True(t, ise.Requested.Equal(d("5")))

	f.assertStock(t, prodX, locA, "3")
	assert.Empty(t, f.store.Ledger())

	got, err := f.queries.Get(ctx, actor, entity.ProcessSale, h.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleDraft, got.Status, "el estado no cambia si falla la validación")
}

// Todas las líneas se validan antes de aplicar: si una falla, ninguna se aplica.
func TestSale_MultilineaTodoONada(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "10", "5")
	f.seed(prodY, locA, "1", "5")

	h := mustSale(t, f, line(prodX, "4", "12"), line(prodY, "2", "12"))
	_, err := f.sales.Close(context.Background(), actor, h.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	f.assertStock(t, prodX, locA, "10")
	f.assertStock(t, prodY, locA, "1")
	assert.Empty(t, f.store.Ledger())
}

// Líneas repetidas del mismo producto se validan contra el total pedido.
func TestSale_LineasRepetidasSeAcumulan(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "5", "5")

	h := mustSale(t, f, line(prodX, "3", "12"), line(prodX, "3", "12"))
	_, err := f.sales.Close(context.Background(), actor, h.ID)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Requested.Equal(d("6")))
	f.assertStock(t, prodX, locA, "5")
}

// Cerrar y cancelar deja el saldo (y el costo promedio) como estaba.
func TestSale_CierreYCancelacionIdaYVuelta(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "10", "5")
	ctx := context.Background()

	h := mustSale(t, f, line(prodX, "4", "12"))
	_, err := f.sales.Process(ctx, actor, h.ID)
	require.NoError(t, err)
	_, err = f.sales.Close(ctx, actor, h.ID)
	require.NoError(t, err)
	f.assertStock(t, prodX, locA, "6")

	cancelled, err := f.sales.Cancel(ctx, actor, h.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleCancelled, cancelled.Status)
	f.assertStock(t, prodX, locA, "10")

	b, err := f.queries.GetBalance(ctx, actor, prodX, locA)
	require.NoError(t, err)
	assert.True(t, b.AverageCost.Equal(d("5")), "el costo promedio no cambia")

	assert.Len(t, f.store.Ledger(), 2)
	f.assertLedgerChain(t)
}

func TestSale_TransicionesInvalidas(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "10", "5")
	ctx := context.Background()

	h := mustSale(t, f, line(prodX, "1", "12"))
	_, err := f.sales.Close(ctx, actor, h.ID)
	require.NoError(t, err)

	_, err = f.sales.Process(ctx, actor, h.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.sales.Close(ctx, actor, h.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "no se descuenta dos veces")
	f.assertStock(t, prodX, locA, "9")

	_, err = f.sales.UpdateLines(ctx, actor, h.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.sales.Cancel(ctx, actor, h.ID)
	require.NoError(t, err)
	_, err = f.sales.Cancel(ctx, actor, h.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "cancelled es terminal")
	f.assertStock(t, prodX, locA, "10")
}

func TestSale_EditarLineasEnBorrador(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := mustSale(t, f, line(prodX, "1", "12"))
	updated, err := f.sales.UpdateLines(ctx, actor, h.ID, []inventory.LineInput{line(prodY, "2", "10"), line(prodX, "1", "5")})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 2)
	assert.True(t, updated.TotalCost.Equal(d("25")))

	_, err = f.sales.UpdateLines(ctx, actor, h.ID, []inventory.LineInput{line("no-existe", "1", "1")})
	assert.ErrorIs(t, err, domain.ErrReferential)
}

func TestSale_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sales.Create(ctx, actor, createSale("", line(prodX, "1", "1")))
	assert.ErrorIs(t, err, domain.ErrMissingLocation)

	_, err = f.sales.Create(ctx, actor, createSale("bodega-z", line(prodX, "1", "1")))
	assert.ErrorIs(t, err, domain.ErrReferential)

	_, err = f.sales.Create(ctx, actor, createSale(locA, line(prodX, "0", "1")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.sales.Create(ctx, actor, createSale(locA, line(prodX, "1", "-1")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.sales.Close(ctx, actor, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSale_Eliminar(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "10", "5")
	ctx := context.Background()

	draft := mustSale(t, f, line(prodX, "1", "12"))
	require.NoError(t, f.queries.Delete(ctx, actor, entity.ProcessSale, draft.ID))
	_, err := f.queries.Get(ctx, actor, entity.ProcessSale, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	closed := mustSale(t, f, line(prodX, "1", "12"))
	_, err = f.sales.Close(ctx, actor, closed.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.queries.Delete(ctx, actor, entity.ProcessSale, closed.ID), domain.ErrDeleteForbidden)

	// cancelada después de cerrar: tiene asientos, no se borra
	_, err = f.sales.Cancel(ctx, actor, closed.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.queries.Delete(ctx, actor, entity.ProcessSale, closed.ID), domain.ErrDeleteForbidden)
}

// Una venta solo se encuentra con su propio discriminante.
func TestSale_DiscriminanteExplicito(t *testing.T) {
	f := newFixture(t)
	h := mustSale(t, f, line(prodX, "1", "12"))

	_, err := f.queries.Get(context.Background(), actor, entity.ProcessPurchase, h.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.purchases.Advance(context.Background(), actor, h.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Dos cierres simultáneos sobre la misma fila: solo uno cabe en el saldo.
func TestSale_CierresConcurrentes(t *testing.T) {
	f := newFixture(t)
	f.seed(prodX, locA, "10", "5")
	ctx := context.Background()

	sales := []*entity.MovementHeader{
		mustSale(t, f, line(prodX, "6", "9")),
		mustSale(t, f, line(prodX, "6", "9")),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(sales))
	start := make(chan struct{})
	for i, h := range sales {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			<-start
			_, errs[i] = f.sales.Close(ctx, actor, id)
		}(i, h.ID)
	}
	close(start)
	wg.Wait()

	var failed int
	for _, err := range errs {
		if err != nil {
			failed++
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, failed, "exactamente un cierre debe fallar")
	f.assertStock(t, prodX, locA, "4")
	require.Len(t, f.store.Ledger(), 1)
	f.assertLedgerChain(t)
}
