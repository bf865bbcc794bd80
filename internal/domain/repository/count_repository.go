package repository

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// CountRepository puerto de persistencia de conteos físicos.
type CountRepository interface {
	Create(ctx context.Context, count *entity.Count) error
	Get(ctx context.Context, tenantID, id string) (*entity.Count, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Count, error)
	// Update persiste solo el encabezado.
	Update(ctx context.Context, count *entity.Count) error
	// SaveLine inserta o actualiza una línea del conteo.
	SaveLine(ctx context.Context, line *entity.CountLine) error
	List(ctx context.Context, tenantID string, status entity.CountStatus, limit, offset int) ([]*entity.Count, error)
	Delete(ctx context.Context, tenantID, id string) error
}
