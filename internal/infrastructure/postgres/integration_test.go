package postgres

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/pkg/config"
)

// testDB base PostgreSQL real con el esquema aplicado y un producto/ubicación sembrados.
type testDB struct {
	pool     *pgxpool.Pool
	tenant   string
	user     string
	product  string
	location string
}

func newTestDB(t *testing.T) *testDB {
	t.Helper()
	if testing.Short() {
		t.Skip("requiere Docker")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("kardex_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "levantar PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn}, "kardex-test")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "0001_inventory_ledger.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err, "aplicar migración")

	db := &testDB{
		pool:     pool,
		tenant:   uuid.NewString(),
		user:     uuid.NewString(),
		product:  uuid.NewString(),
		location: uuid.NewString(),
	}
	now := time.Now().UTC()
	require.NoError(t, NewLocationRepository(pool).Create(ctx, &entity.Location{
		ID: db.location, TenantID: db.tenant, Name: "Bodega", Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, NewProductRepository(pool).Create(ctx, &entity.Product{
		ID: db.product, TenantID: db.tenant, SKU: "X-1", Name: "Producto X", Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	return db
}

func (db *testDB) runner(lockTimeout time.Duration, retries int) *TxRunner {
	return NewTxRunner(db.pool, TxOptions{LockTimeout: lockTimeout, MaxRetries: retries}, zerolog.Nop())
}

func TestIntegration_GetOrCreateForUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.runner(0, 0).Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		b, err := repos.Balances.GetOrCreateForUpdate(ctx, db.tenant, db.product, db.location)
		require.NoError(t, err)
		assert.True(t, b.CurrentStock.IsZero())
		assert.True(t, b.AverageCost.IsZero())

		// segunda llamada en la misma tx: no duplica ni falla
		again, err := repos.Balances.GetOrCreateForUpdate(ctx, db.tenant, db.product, db.location)
		require.NoError(t, err)
		assert.Equal(t, b.ProductID, again.ProductID)
		return nil
	})
	require.NoError(t, err)

	b, err := NewBalanceRepository(db.pool).Get(ctx, db.tenant, db.product, db.location)
	require.NoError(t, err)
	require.NotNil(t, b, "la fila queda creada al confirmar")

	_, err = NewBalanceRepository(db.pool).GetOrCreateForUpdate(ctx, uuid.NewString(), db.product, db.location)
	assert.Error(t, err, "la fila pertenece a otro tenant")
}

func TestIntegration_CheckImpideSaldoNegativo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.runner(0, 0).Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		b, err := repos.Balances.GetOrCreateForUpdate(ctx, db.tenant, db.product, db.location)
		if err != nil {
			return err
		}
		b.CurrentStock = decimal.NewFromInt(-1)
		return repos.Balances.Save(ctx, b)
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestIntegration_BloqueoAgotaReintentos(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	holder, err := db.pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = holder.Rollback(ctx) }()
	_, err = NewBalanceRepository(holder).GetOrCreateForUpdate(ctx, db.tenant, db.product, db.location)
	require.NoError(t, err)
	require.NoError(t, holder.Commit(ctx))

	holder, err = db.pool.Begin(ctx)
	require.NoError(t, err)
	_, err = NewBalanceRepository(holder).GetForUpdate(ctx, db.tenant, db.product, db.location)
	require.NoError(t, err)

	attempts := 0
	err = db.runner(100*time.Millisecond, 2).Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		attempts++
		_, err := repos.Balances.GetForUpdate(ctx, db.tenant, db.product, db.location)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 3, attempts, "intento inicial más dos reintentos")

	require.NoError(t, holder.Rollback(ctx))
	err = db.runner(100*time.Millisecond, 0).Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		_, err := repos.Balances.GetForUpdate(ctx, db.tenant, db.product, db.location)
		return err
	})
	assert.NoError(t, err, "liberado el bloqueo la tx pasa")
}

func TestIntegration_KardexSoloInsercion(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedgerRepository(db.pool)

	header := uuid.NewString()
	entry := &entity.LedgerEntry{
		ID:            uuid.NewString(),
		TenantID:      db.tenant,
		LocationID:    db.location,
		ProductID:     db.product,
		Source:        entity.SourceMovement,
		HeaderID:      header,
		Type:          entity.MovementTypeEntry,
		Reason:        entity.ReasonPurchase,
		Direction:     entity.DirectionIn,
		Quantity:      decimal.NewFromInt(5),
		UnitCost:      decimal.NewFromInt(3),
		TotalCost:     decimal.NewFromInt(15),
		PreviousStock: decimal.Zero,
		NewStock:      decimal.NewFromInt(5),
		AverageCost:   decimal.NewFromInt(3),
		ActorID:       db.user,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, ledger.Append(ctx, entry))

	tag, err := db.pool.Exec(ctx, `UPDATE ledger_entries SET quantity = 99 WHERE id = $1`, entry.ID)
	require.NoError(t, err)
	assert.Zero(t, tag.RowsAffected())
	tag, err = db.pool.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, entry.ID)
	require.NoError(t, err)
	assert.Zero(t, tag.RowsAffected())

	got, err := ledger.ListBySource(ctx, db.tenant, entity.SourceMovement, header)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Quantity.Equal(decimal.NewFromInt(5)))

	exists, err := ledger.ExistsForSource(ctx, db.tenant, entity.SourceMovement, header)
	require.NoError(t, err)
	assert.True(t, exists)
}

// Dos cierres de venta simultáneos sobre PostgreSQL: el bloqueo de fila deja pasar solo uno.
func TestIntegration_CierresConcurrentes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		b, err := NewBalanceRepository(tx).GetOrCreateForUpdate(ctx, db.tenant, db.product, db.location)
		if err != nil {
			return err
		}
		b.CurrentStock = decimal.NewFromInt(10)
		b.AverageCost = decimal.NewFromInt(5)
		b.UpdatedAt = time.Now().UTC()
		return NewBalanceRepository(tx).Save(ctx, b)
	}))

	actor := inventory.Actor{TenantID: db.tenant, UserID: db.user}
	sales := inventory.NewSaleUseCase(db.runner(2*time.Second, 3), zerolog.Nop())
	ids := make([]string, 2)
	for i := range ids {
		h, err := sales.Create(ctx, actor, inventory.CreateSaleInput{
			LocationID: db.location,
			Lines:      []inventory.LineInput{{ProductID: db.product, Quantity: decimal.NewFromInt(6), UnitCost: decimal.NewFromInt(9)}},
		})
		require.NoError(t, err)
		ids[i] = h.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = sales.Close(ctx, actor, id)
		}(i, id)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, failed)

	b, err := NewBalanceRepository(db.pool).Get(ctx, db.tenant, db.product, db.location)
	require.NoError(t, err)
	assert.True(t, b.CurrentStock.Equal(decimal.NewFromInt(4)), "obtenido %s", b.CurrentStock)
}
