package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados y sus líneas sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `
	id, tenant_id, document_number, from_location_id, to_location_id, status, notes,
	requested_by, requested_at, approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	shipped_by, shipped_at, received_by, received_at, cancelled_by, cancelled_at, shipping_evidence,
	total_requested, total_shipped, total_received, total_cost, has_differences, created_at, updated_at`

const transferLineColumns = `
	id, transfer_id, product_id, quantity_requested, quantity_shipped, quantity_received,
	unit_cost, batch_number, expiry_date, difference, notes`

func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		        $21, $22, $23, $24, $25, $26, $27, $28)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TenantID, t.DocumentNumber, t.FromLocationID, t.ToLocationID, t.Status, t.Notes,
		t.RequestedBy, t.RequestedAt, nullIfEmpty(t.ApprovedBy), t.ApprovedAt, nullIfEmpty(t.RejectedBy), t.RejectedAt, t.RejectionReason,
		nullIfEmpty(t.ShippedBy), t.ShippedAt, nullIfEmpty(t.ReceivedBy), t.ReceivedAt, nullIfEmpty(t.CancelledBy), t.CancelledAt, t.Evidence,
		t.TotalRequested, t.TotalShipped, t.TotalReceived, t.TotalCost, t.HasDifferences, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transfer: %w", mapError(err))
	}
	lineQuery := `
		INSERT INTO transfer_lines (position,` + transferLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for i := range t.Lines {
		l := &t.Lines[i]
		_, err := r.q.Exec(ctx, lineQuery, i,
			l.ID, t.ID, l.ProductID, l.QuantityRequested, l.QuantityShipped, l.QuantityReceived,
			l.UnitCost, l.BatchNumber, l.ExpiryDate, l.Difference, l.Notes,
		)
		if err != nil {
			return fmt.Errorf("create transfer line: %w", mapError(err))
		}
	}
	return nil
}

func (r *TransferRepo) get(ctx context.Context, tenantID, id string, forUpdate bool) (*entity.Transfer, error) {
	query := `SELECT` + transferColumns + `
		FROM transfers
		WHERE tenant_id = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	t, err := scanTransfer(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if t.Lines, err = r.lines(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransferRepo) Get(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	return r.get(ctx, tenantID, id, false)
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	return r.get(ctx, tenantID, id, true)
}

func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	query := `
		UPDATE transfers SET
			status = $3, notes = $4,
			approved_by = $5, approved_at = $6, rejected_by = $7, rejected_at = $8, rejection_reason = $9,
			shipped_by = $10, shipped_at = $11, received_by = $12, received_at = $13,
			cancelled_by = $14, cancelled_at = $15, shipping_evidence = $16,
			total_requested = $17, total_shipped = $18, total_received = $19, total_cost = $20,
			has_differences = $21, updated_at = $22
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		t.TenantID, t.ID, t.Status, t.Notes,
		nullIfEmpty(t.ApprovedBy), t.ApprovedAt, nullIfEmpty(t.RejectedBy), t.RejectedAt, t.RejectionReason,
		nullIfEmpty(t.ShippedBy), t.ShippedAt, nullIfEmpty(t.ReceivedBy), t.ReceivedAt,
		nullIfEmpty(t.CancelledBy), t.CancelledAt, t.Evidence,
		t.TotalRequested, t.TotalShipped, t.TotalReceived, t.TotalCost,
		t.HasDifferences, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update transfer %s: no encontrado", t.ID)
	}
	lineQuery := `
		UPDATE transfer_lines
		SET quantity_shipped = $3, quantity_received = $4, unit_cost = $5, difference = $6, notes = $7
		WHERE transfer_id = $1 AND id = $2`
	for i := range t.Lines {
		l := &t.Lines[i]
		_, err := r.q.Exec(ctx, lineQuery, t.ID, l.ID, l.QuantityShipped, l.QuantityReceived, l.UnitCost, l.Difference, l.Notes)
		if err != nil {
			return fmt.Errorf("update transfer line: %w", mapError(err))
		}
	}
	return nil
}

func (r *TransferRepo) List(ctx context.Context, tenantID string, status entity.TransferStatus, limit, offset int) ([]*entity.Transfer, error) {
	query := `SELECT` + transferColumns + `
		FROM transfers
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, string(status), limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range list {
		if t.Lines, err = r.lines(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *TransferRepo) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM transfers WHERE tenant_id = $1 AND id = $2`, tenantID, id); err != nil {
		return fmt.Errorf("delete transfer: %w", mapError(err))
	}
	return nil
}

func (r *TransferRepo) lines(ctx context.Context, transferID string) ([]entity.TransferLine, error) {
	query := `SELECT` + transferLineColumns + `
		FROM transfer_lines
		WHERE transfer_id = $1
		ORDER BY position`
	rows, err := r.q.Query(ctx, query, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer lines: %w", err)
	}
	defer rows.Close()
	var list []entity.TransferLine
	for rows.Next() {
		var l entity.TransferLine
		err := rows.Scan(
			&l.ID, &l.TransferID, &l.ProductID, &l.QuantityRequested, &l.QuantityShipped, &l.QuantityReceived,
			&l.UnitCost, &l.BatchNumber, &l.ExpiryDate, &l.Difference, &l.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transfer line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var (
		t                                                       entity.Transfer
		approvedBy, rejectedBy, shippedBy, receivedBy, cancelBy *string
	)
	err := row.Scan(
		&t.ID, &t.TenantID, &t.DocumentNumber, &t.FromLocationID, &t.ToLocationID, &t.Status, &t.Notes,
		&t.RequestedBy, &t.RequestedAt, &approvedBy, &t.ApprovedAt, &rejectedBy, &t.RejectedAt, &t.RejectionReason,
		&shippedBy, &t.ShippedAt, &receivedBy, &t.ReceivedAt, &cancelBy, &t.CancelledAt, &t.Evidence,
		&t.TotalRequested, &t.TotalShipped, &t.TotalReceived, &t.TotalCost, &t.HasDifferences, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ApprovedBy = deref(approvedBy)
	t.RejectedBy = deref(rejectedBy)
	t.ShippedBy = deref(shippedBy)
	t.ReceivedBy = deref(receivedBy)
	t.CancelledBy = deref(cancelBy)
	return &t, nil
}
