package repository

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// TransferRepository puerto de persistencia de traslados (encabezado + líneas propias).
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	Get(ctx context.Context, tenantID, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transfer, error)
	// Update persiste encabezado y cantidades de todas las líneas.
	Update(ctx context.Context, transfer *entity.Transfer) error
	List(ctx context.Context, tenantID string, status entity.TransferStatus, limit, offset int) ([]*entity.Transfer, error)
	Delete(ctx context.Context, tenantID, id string) error
}
