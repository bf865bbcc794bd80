package repository

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// LedgerRepository puerto del kardex. Solo inserción: no existe Update ni Delete.
type LedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	ListBySource(ctx context.Context, tenantID string, source entity.LedgerSource, headerID string) ([]*entity.LedgerEntry, error)
	ListByProduct(ctx context.Context, tenantID, productID, locationID string, limit, offset int) ([]*entity.LedgerEntry, error)
	ExistsForSource(ctx context.Context, tenantID string, source entity.LedgerSource, headerID string) (bool, error)
}
