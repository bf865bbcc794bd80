package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo encabezados y líneas genéricos. Toda lectura filtra por (type, reason).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const headerColumns = `
	id, tenant_id, origin_location_id, destination_location_id, type, reason, status,
	document_number, metadata, total_cost, occurred_at, actor_id, created_at, updated_at`

const lineColumns = `
	id, header_id, product_id, direction, quantity, unit_cost, total_cost,
	batch_number, expiry_date, previous_stock, new_stock, notes`

// Create inserta encabezado y líneas; la metadata se guarda como JSONB.
func (r *MovementRepo) Create(ctx context.Context, h *entity.MovementHeader) error {
	query := `
		INSERT INTO movement_headers (` + headerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		h.ID, h.TenantID, h.OriginLocationID, h.DestinationLocationID, h.Type, h.Reason, h.Status,
		h.DocumentNumber, h.Metadata, h.TotalCost, h.OccurredAt, h.ActorID, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement header: %w", mapError(err))
	}
	return r.insertLines(ctx, h.ID, h.Lines)
}

func (r *MovementRepo) insertLines(ctx context.Context, headerID string, lines []entity.MovementLine) error {
	query := `
		INSERT INTO movement_lines (position,` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for i := range lines {
		l := &lines[i]
		_, err := r.q.Exec(ctx, query, i,
			l.ID, headerID, l.ProductID, l.Direction, l.Quantity, l.UnitCost, l.TotalCost,
			l.BatchNumber, l.ExpiryDate, l.PreviousStock, l.NewStock, l.Notes,
		)
		if err != nil {
			return fmt.Errorf("create movement line: %w", mapError(err))
		}
	}
	return nil
}

func (r *MovementRepo) get(ctx context.Context, tenantID, id string, d entity.Discriminant, forUpdate bool) (*entity.MovementHeader, error) {
	query := `SELECT` + headerColumns + `
		FROM movement_headers
		WHERE tenant_id = $1 AND id = $2 AND type = $3 AND reason = $4`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	h, err := scanHeader(r.q.QueryRow(ctx, query, tenantID, id, d.Type, d.Reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if h.Lines, err = r.lines(ctx, h.ID); err != nil {
		return nil, err
	}
	return h, nil
}

func (r *MovementRepo) Get(ctx context.Context, tenantID, id string, d entity.Discriminant) (*entity.MovementHeader, error) {
	return r.get(ctx, tenantID, id, d, false)
}

func (r *MovementRepo) GetForUpdate(ctx context.Context, tenantID, id string, d entity.Discriminant) (*entity.MovementHeader, error) {
	return r.get(ctx, tenantID, id, d, true)
}

// Update no toca type ni reason: el discriminante es fijo desde la creación.
func (r *MovementRepo) Update(ctx context.Context, h *entity.MovementHeader) error {
	query := `
		UPDATE movement_headers
		SET status = $3, metadata = $4, total_cost = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, h.TenantID, h.ID, h.Status, h.Metadata, h.TotalCost, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update movement: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update movement %s: no encontrado", h.ID)
	}
	return nil
}

func (r *MovementRepo) ReplaceLines(ctx context.Context, headerID string, lines []entity.MovementLine) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM movement_lines WHERE header_id = $1`, headerID); err != nil {
		return fmt.Errorf("delete movement lines: %w", err)
	}
	return r.insertLines(ctx, headerID, lines)
}

func (r *MovementRepo) UpdateLineSnapshot(ctx context.Context, l *entity.MovementLine) error {
	query := `UPDATE movement_lines SET previous_stock = $2, new_stock = $3 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, l.ID, l.PreviousStock, l.NewStock); err != nil {
		return fmt.Errorf("update line snapshot: %w", err)
	}
	return nil
}

// List encabezados del discriminante, más recientes primero. status vacío no filtra.
func (r *MovementRepo) List(ctx context.Context, tenantID string, d entity.Discriminant, status string, limit, offset int) ([]*entity.MovementHeader, error) {
	query := `SELECT` + headerColumns + `
		FROM movement_headers
		WHERE tenant_id = $1 AND type = $2 AND reason = $3 AND ($4 = '' OR status = $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query, tenantID, d.Type, d.Reason, status, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	var list []*entity.MovementHeader
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Las líneas se cargan después de cerrar el cursor: la conexión de la tx es una sola.
	for _, h := range list {
		if h.Lines, err = r.lines(ctx, h.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *MovementRepo) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM movement_headers WHERE tenant_id = $1 AND id = $2`, tenantID, id); err != nil {
		return fmt.Errorf("delete movement: %w", mapError(err))
	}
	return nil
}

func (r *MovementRepo) lines(ctx context.Context, headerID string) ([]entity.MovementLine, error) {
	query := `SELECT` + lineColumns + `
		FROM movement_lines
		WHERE header_id = $1
		ORDER BY position`
	rows, err := r.q.Query(ctx, query, headerID)
	if err != nil {
		return nil, fmt.Errorf("list movement lines: %w", err)
	}
	defer rows.Close()
	var list []entity.MovementLine
	for rows.Next() {
		var l entity.MovementLine
		err := rows.Scan(
			&l.ID, &l.HeaderID, &l.ProductID, &l.Direction, &l.Quantity, &l.UnitCost, &l.TotalCost,
			&l.BatchNumber, &l.ExpiryDate, &l.PreviousStock, &l.NewStock, &l.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan movement line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanHeader(row pgx.Row) (*entity.MovementHeader, error) {
	var h entity.MovementHeader
	err := row.Scan(
		&h.ID, &h.TenantID, &h.OriginLocationID, &h.DestinationLocationID, &h.Type, &h.Reason, &h.Status,
		&h.DocumentNumber, &h.Metadata, &h.TotalCost, &h.OccurredAt, &h.ActorID, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
