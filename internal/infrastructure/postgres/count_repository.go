package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.CountRepository = (*CountRepo)(nil)

// CountRepo conteos físicos sobre PostgreSQL.
type CountRepo struct {
	q Querier
}

// NewCountRepository construye el adaptador.
func NewCountRepository(q Querier) *CountRepo {
	return &CountRepo{q: q}
}

const countColumns = `
	id, tenant_id, location_id, document_number, status, count_date, notes,
	created_by, started_at, completed_by, completed_at, cancelled_at, created_at, updated_at`

func (r *CountRepo) Create(ctx context.Context, c *entity.Count) error {
	query := `
		INSERT INTO inventory_counts (` + countColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.TenantID, c.LocationID, c.DocumentNumber, c.Status, c.CountDate, c.Notes,
		c.CreatedBy, c.StartedAt, nullIfEmpty(c.CompletedBy), c.CompletedAt, c.CancelledAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create count: %w", mapError(err))
	}
	for i := range c.Lines {
		if err := r.SaveLine(ctx, &c.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *CountRepo) get(ctx context.Context, tenantID, id string, forUpdate bool) (*entity.Count, error) {
	query := `SELECT` + countColumns + `
		FROM inventory_counts
		WHERE tenant_id = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	c, err := scanCount(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get count: %w", err)
	}
	if c.Lines, err = r.lines(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CountRepo) Get(ctx context.Context, tenantID, id string) (*entity.Count, error) {
	return r.get(ctx, tenantID, id, false)
}

func (r *CountRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Count, error) {
	return r.get(ctx, tenantID, id, true)
}

func (r *CountRepo) Update(ctx context.Context, c *entity.Count) error {
	query := `
		UPDATE inventory_counts
		SET status = $3, notes = $4, started_at = $5, completed_by = $6, completed_at = $7,
		    cancelled_at = $8, updated_at = $9
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		c.TenantID, c.ID, c.Status, c.Notes, c.StartedAt, nullIfEmpty(c.CompletedBy), c.CompletedAt,
		c.CancelledAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update count: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update count %s: no encontrado", c.ID)
	}
	return nil
}

func (r *CountRepo) SaveLine(ctx context.Context, l *entity.CountLine) error {
	query := `
		INSERT INTO inventory_count_lines (id, count_id, product_id, system_quantity, counted_quantity, difference, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET counted_quantity = EXCLUDED.counted_quantity,
		    difference = EXCLUDED.difference,
		    notes = EXCLUDED.notes`
	_, err := r.q.Exec(ctx, query, l.ID, l.CountID, l.ProductID, l.SystemQuantity, l.CountedQuantity, l.Difference, l.Notes)
	if err != nil {
		return fmt.Errorf("save count line: %w", mapError(err))
	}
	return nil
}

func (r *CountRepo) List(ctx context.Context, tenantID string, status entity.CountStatus, limit, offset int) ([]*entity.Count, error) {
	query := `SELECT` + countColumns + `
		FROM inventory_counts
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, string(status), limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list counts: %w", err)
	}
	var list []*entity.Count
	for rows.Next() {
		c, err := scanCount(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan count: %w", err)
		}
		list = append(list, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range list {
		if c.Lines, err = r.lines(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *CountRepo) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_counts WHERE tenant_id = $1 AND id = $2`, tenantID, id); err != nil {
		return fmt.Errorf("delete count: %w", mapError(err))
	}
	return nil
}

func (r *CountRepo) lines(ctx context.Context, countID string) ([]entity.CountLine, error) {
	query := `
		SELECT id, count_id, product_id, system_quantity, counted_quantity, difference, notes
		FROM inventory_count_lines
		WHERE count_id = $1
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, countID)
	if err != nil {
		return nil, fmt.Errorf("list count lines: %w", err)
	}
	defer rows.Close()
	var list []entity.CountLine
	for rows.Next() {
		var l entity.CountLine
		if err := rows.Scan(&l.ID, &l.CountID, &l.ProductID, &l.SystemQuantity, &l.CountedQuantity, &l.Difference, &l.Notes); err != nil {
			return nil, fmt.Errorf("scan count line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanCount(row pgx.Row) (*entity.Count, error) {
	var (
		c           entity.Count
		completedBy *string
	)
	err := row.Scan(
		&c.ID, &c.TenantID, &c.LocationID, &c.DocumentNumber, &c.Status, &c.CountDate, &c.Notes,
		&c.CreatedBy, &c.StartedAt, &completedBy, &c.CompletedAt, &c.CancelledAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CompletedBy = deref(completedBy)
	return &c, nil
}
