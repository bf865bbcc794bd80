package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Acepta pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const balanceColumns = `
	tenant_id, product_id, location_id, current_stock, minimum_stock, maximum_stock,
	average_cost, active, last_movement_at, created_at, updated_at`

func scanBalance(row pgx.Row) (*entity.Balance, error) {
	var b entity.Balance
	err := row.Scan(
		&b.TenantID, &b.ProductID, &b.LocationID, &b.CurrentStock, &b.MinimumStock, &b.MaximumStock,
		&b.AverageCost, &b.Active, &b.LastMovementAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BalanceRepo) get(ctx context.Context, tenantID, productID, locationID string, forUpdate bool) (*entity.Balance, error) {
	query := `SELECT` + balanceColumns + `
		FROM balances
		WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	b, err := scanBalance(r.q.QueryRow(ctx, query, tenantID, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

func (r *BalanceRepo) Get(ctx context.Context, tenantID, productID, locationID string) (*entity.Balance, error) {
	return r.get(ctx, tenantID, productID, locationID, false)
}

func (r *BalanceRepo) GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.Balance, error) {
	return r.get(ctx, tenantID, productID, locationID, true)
}

// GetOrCreateForUpdate inserta la fila en cero si falta y luego la bloquea. Dos tx que crean la
// misma fila a la vez se serializan en el índice de la PK.
func (r *BalanceRepo) GetOrCreateForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.Balance, error) {
	insert := `
		INSERT INTO balances (tenant_id, product_id, location_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, tenantID, productID, locationID); err != nil {
		return nil, fmt.Errorf("create balance: %w", mapError(err))
	}
	b, err := r.get(ctx, tenantID, productID, locationID, true)
	if err != nil {
		return nil, err
	}
	if b == nil {
		// la fila existe pero es de otro tenant
		return nil, fmt.Errorf("balance %s/%s fuera del tenant", productID, locationID)
	}
	return b, nil
}

func (r *BalanceRepo) Create(ctx context.Context, b *entity.Balance) error {
	query := `
		INSERT INTO balances (
			tenant_id, product_id, location_id, current_stock, minimum_stock, maximum_stock,
			average_cost, active, last_movement_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		b.TenantID, b.ProductID, b.LocationID, b.CurrentStock, b.MinimumStock, b.MaximumStock,
		b.AverageCost, b.Active, b.LastMovementAt, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create balance: %w", mapError(err))
	}
	return nil
}

func (r *BalanceRepo) Save(ctx context.Context, b *entity.Balance) error {
	query := `
		UPDATE balances
		SET current_stock = $4, average_cost = $5, last_movement_at = $6, updated_at = $7
		WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3`
	tag, err := r.q.Exec(ctx, query,
		b.TenantID, b.ProductID, b.LocationID, b.CurrentStock, b.AverageCost, b.LastMovementAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save balance: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save balance %s/%s: fila inexistente", b.ProductID, b.LocationID)
	}
	return nil
}

func (r *BalanceRepo) ListByLocation(ctx context.Context, tenantID, locationID string) ([]*entity.Balance, error) {
	query := `SELECT` + balanceColumns + `
		FROM balances
		WHERE tenant_id = $1 AND location_id = $2
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, tenantID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list balances by location: %w", err)
	}
	defer rows.Close()
	var list []*entity.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
