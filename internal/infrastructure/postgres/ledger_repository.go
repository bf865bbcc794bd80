package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo kardex sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por reglas.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador.
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `
	id, tenant_id, location_id, product_id, source, header_id, line_id, type, reason, direction,
	quantity, unit_cost, total_cost, previous_stock, new_stock, average_cost,
	document_number, batch_number, expiry_date, actor_id, created_at`

func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.TenantID, e.LocationID, e.ProductID, e.Source, e.HeaderID, nullIfEmpty(e.LineID),
		e.Type, e.Reason, e.Direction, e.Quantity, e.UnitCost, e.TotalCost, e.PreviousStock, e.NewStock,
		e.AverageCost, e.DocumentNumber, e.BatchNumber, e.ExpiryDate, e.ActorID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", mapError(err))
	}
	return nil
}

func (r *LedgerRepo) ListBySource(ctx context.Context, tenantID string, source entity.LedgerSource, headerID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT` + ledgerColumns + `
		FROM ledger_entries
		WHERE tenant_id = $1 AND source = $2 AND header_id = $3
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, tenantID, source, headerID)
	if err != nil {
		return nil, fmt.Errorf("list ledger by source: %w", err)
	}
	return collectLedger(rows)
}

// ListByProduct kardex más reciente primero. locationID vacío incluye todas las ubicaciones.
func (r *LedgerRepo) ListByProduct(ctx context.Context, tenantID, productID, locationID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `SELECT` + ledgerColumns + `
		FROM ledger_entries
		WHERE tenant_id = $1 AND product_id = $2 AND ($3::uuid IS NULL OR location_id = $3)
		ORDER BY seq DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, tenantID, productID, nullIfEmpty(locationID), limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger by product: %w", err)
	}
	return collectLedger(rows)
}

func (r *LedgerRepo) ExistsForSource(ctx context.Context, tenantID string, source entity.LedgerSource, headerID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ledger_entries WHERE tenant_id = $1 AND source = $2 AND header_id = $3
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, tenantID, source, headerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ledger exists for source: %w", err)
	}
	return exists, nil
}

func collectLedger(rows pgx.Rows) ([]*entity.LedgerEntry, error) {
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var (
			e      entity.LedgerEntry
			lineID *string
		)
		err := rows.Scan(
			&e.ID, &e.TenantID, &e.LocationID, &e.ProductID, &e.Source, &e.HeaderID, &lineID,
			&e.Type, &e.Reason, &e.Direction, &e.Quantity, &e.UnitCost, &e.TotalCost, &e.PreviousStock, &e.NewStock,
			&e.AverageCost, &e.DocumentNumber, &e.BatchNumber, &e.ExpiryDate, &e.ActorID, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.LineID = deref(lineID)
		list = append(list, &e)
	}
	return list, rows.Err()
}
