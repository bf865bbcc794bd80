package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Conflictos de serialización, deadlocks y lock timeouts se reintentan con la tx completa.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
	maxRetries  int
	log         zerolog.Logger
}

// TxOptions parámetros de bloqueo y reintento.
type TxOptions struct {
	LockTimeout time.Duration
	MaxRetries  int
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, opts TxOptions, log zerolog.Logger) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: opts.LockTimeout, maxRetries: opts.MaxRetries, log: log}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Agotados los reintentos devuelve domain.ErrConcurrencyConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			r.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("reintentando transacción de inventario")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return mapError(err)
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		// SET no admite parámetros: el valor es un entero formateado por nosotros.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(ctx, Repos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repos repositorios de inventario atados a q (pool para lecturas sueltas, tx dentro de Run).
func Repos(q Querier) inventory.Repos {
	return inventory.Repos{
		Balances:  NewBalanceRepository(q),
		Ledger:    NewLedgerRepository(q),
		Movements: NewMovementRepository(q),
		Transfers: NewTransferRepository(q),
		Counts:    NewCountRepository(q),
		Products:  NewProductRepository(q),
		Locations: NewLocationRepository(q),
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * 20 * time.Millisecond
}
