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

// Z sistema 50 contado 50 → sin cambio; W sistema 50 contado 47 → saldo 47.
func TestCount_ConciliacionAlCompletar(t *testing.T) {
	f := newFixture(t)
	f.seed(prodZ, locA, "50", "1")
	f.seed(prodW, locA, "50", "1")
	f.seed(prodX, locB, "9", "1")
	ctx := context.Background()

	c, err := f.counts.Create(ctx, actor, inventory.CreateCountInput{LocationID: locA})
	require.NoError(t, err)
	assert.Equal(t, entity.CountPlanning, c.Status)
	require.Len(t, c.Lines, 2, "solo los saldos de la ubicación")

	got, err := f.counts.RecordCount(ctx, actor, c.ID, inventory.RecordCountInput{ProductID: prodZ, Counted: d("50")})
	require.NoError(t, err)
	assert.Equal(t, entity.CountCounting, got.Status, "el primer registro inicia el conteo")
	assert.NotNil(t, got.StartedAt)

	got, err = f.counts.RecordCount(ctx, actor, c.ID, inventory.RecordCountInput{ProductID: prodW, Counted: d("47")})
	require.NoError(t, err)
	w := got.LineByProduct(prodW)
	require.NotNil(t, w)
	assert.True(t, w.Difference.Equal(d("-3")))

	done, err := f.counts.Complete(ctx, actor, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountCompleted, done.Status)
	assert.Equal(t, actor.UserID, done.CompletedBy)

	f.assertStock(t, prodZ, locA, "50")
	f.assertStock(t, prodW, locA, "47")
	f.assertStock(t, prodX, locB, "9")

	ledger := f.store.Ledger()
	require.Len(t, ledger, 1, "solo las líneas con diferencia dejan asiento")
	e := ledger[0]
	assert.Equal(t, prodW, e.ProductID)
	assert.Equal(t, entity.SourceCount, e.Source)
	assert.Equal(t, entity.ReasonStockAdjustment, e.Reason)
	assert.Equal(t, entity.DirectionOut, e.Direction)
	assert.True(t, e.Quantity.Equal(d("3")))
	assert.True(t, e.PreviousStock.Equal(d("50")))
	assert.True(t, e.NewStock.Equal(d("47")))

	assert.ErrorIs(t, f.counts.Delete(ctx, actor, c.ID), domain.ErrDeleteForbidden)
}

// La conciliación deja el saldo en lo contado aunque haya cambiado desde la foto.
func TestCount_CompletarSobrescribeConLoContado(t *testing.T) {
	f := newFixture(t)
	f.seed(prodW, locA, "10", "1")
	ctx := context.Background()

	c, err := f.counts.Create(ctx, actor, inventory.CreateCountInput{LocationID: locA, ProductIDs: []string{prodW, prodY}})
	require.NoError(t, err)
	require.Len(t, c.Lines, 2)
	y := c.LineByProduct(prodY)
	require.NotNil(t, y)
	assert.True(t, y.SystemQuantity.IsZero(), "sin saldo la foto es cero")

	_, err = f.counts.RecordCount(ctx, actor, c.ID, inventory.RecordCountInput{LineID: c.LineByProduct(prodW).ID, Counted: d("8")})
	require.NoError(t, err)
	_, err = f.counts.RecordCount(ctx, actor, c.ID, inventory.RecordCountInput{LineID: y.ID, Counted: d("4")})
	require.NoError(t, err)

	sale := mustSale(t, f, line(prodW, "1", "5"))
	_, err = f.sales.Close(ctx, actor, sale.ID)
	require.NoError(t, err)

	_, err = f.counts.Complete(ctx, actor, c.ID)
	require.NoError(t, err)
	f.assertStock(t, prodW, locA, "8")
	f.assertStock(t, prodY, locA, "4")
	f.assertLedgerChain(t)
}

func TestCount_LineasSinContarNoSeConcilian(t *testing.T) {
	f := newFixture(t)
	f.seed(prodZ, locA, "5", "1")
	f.seed(prodW, locA, "5", "1")
	ctx := context.Background()

	c, err := f.counts.Create(ctx, actor, inventory.CreateCountInput{LocationID: locA})
	require.NoError(t, err)
	_, err = f.counts.RecordCount(ctx, actor, c.ID, inventory.RecordCountInput{ProductID: prodZ, Counted: d("2")})
	require.NoError(t, err)

	// producto no planificado: se agrega con la cantidad del sistema
	got, err := f.counts.RecordCount(ctx, actor, c.ID, inventory.RecordCountInput{ProductID: prodX, Counted: d("1")})
	require.NoError(t, err)
	require.Len(t, got.Lines, 3)

	_, err = f.counts.Complete(ctx, actor, c.ID)
	require.NoError(t, err)
	f.assertStock(t, prodZ, locA, "2")
	f.assertStock(t, prodW, locA, "5")
	f.assertStock(t, prodX, locA, "1")
}

func TestCount_MaquinaDeEstados(t *testing.T) {
	f := newFixture(t)
	f.seed(prodZ, locA, "5", "1")
	ctx := context.Background()

	c, err := f.counts.Create(ctx, actor, inventory.CreateCountInput{LocationID: locA})
	require.NoError(t, err)

	_, err = f.counts.Complete(ctx, actor, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "no se completa sin contar")

	started, err := f.counts.Start(ctx, actor, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountCounting, started.Status)
	_, err = f.counts.Start(ctx, actor, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	cancelled, err := f.counts.Cancel(ctx, actor, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountCancelled, cancelled.Status)

	_, err = f.counts.RecordCount(ctx, actor, c.ID, inventory.RecordCountInput{ProductID: prodZ, Counted: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	f.assertStock(t, prodZ, locA, "5")

	require.NoError(t, f.counts.Delete(ctx, actor, c.ID))
	_, err = f.counts.Get(ctx, actor, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCount_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.counts.Create(ctx, actor, inventory.CreateCountInput{})
	assert.ErrorIs(t, err, domain.ErrMissingLocation)

	_, err = f.counts.Create(ctx, actor, inventory.CreateCountInput{LocationID: locA, ProductIDs: []string{prodX, prodX}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := f.counts.Create(ctx, actor, inventory.CreateCountInput{LocationID: locA, ProductIDs: []string{prodX}})
	require.NoError(t, err)
	_, err = f.counts.RecordCount(ctx, actor, c.ID, inventory.RecordCountInput{ProductID: prodX, Counted: d("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.counts.RecordCount(ctx, actor, c.ID, inventory.RecordCountInput{LineID: "otra", Counted: d("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.counts.List(ctx, actor, entity.CountPlanning, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
