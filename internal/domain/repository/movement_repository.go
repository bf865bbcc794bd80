package repository

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// MovementRepository puerto de persistencia del encabezado/línea genérico.
// Toda lectura recibe el discriminante de forma explícita; no hay filtro implícito.
type MovementRepository interface {
	Create(ctx context.Context, header *entity.MovementHeader) error
	Get(ctx context.Context, tenantID, id string, d entity.Discriminant) (*entity.MovementHeader, error)
	GetForUpdate(ctx context.Context, tenantID, id string, d entity.Discriminant) (*entity.MovementHeader, error)
	// Update persiste estado, metadatos, total y fecha de actualización del encabezado.
	Update(ctx context.Context, header *entity.MovementHeader) error
	// ReplaceLines reemplaza todas las líneas del encabezado.
	ReplaceLines(ctx context.Context, headerID string, lines []entity.MovementLine) error
	// UpdateLineSnapshot guarda stock anterior/nuevo de una línea ya aplicada.
	UpdateLineSnapshot(ctx context.Context, line *entity.MovementLine) error
	List(ctx context.Context, tenantID string, d entity.Discriminant, status string, limit, offset int) ([]*entity.MovementHeader, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// ProcessMovements vista de MovementRepository atada al discriminante de un proceso.
type ProcessMovements struct {
	repo MovementRepository
	d    entity.Discriminant
}

// Sales repositorio de ventas (exit, sale).
func Sales(r MovementRepository) ProcessMovements {
	return ProcessMovements{repo: r, d: entity.SaleDiscriminant}
}

// Purchases repositorio de compras (entry, purchase).
func Purchases(r MovementRepository) ProcessMovements {
	return ProcessMovements{repo: r, d: entity.PurchaseDiscriminant}
}

// Adjustments repositorio de ajustes manuales.
func Adjustments(r MovementRepository) ProcessMovements {
	return ProcessMovements{repo: r, d: entity.AdjustmentDiscriminant}
}

// Usages repositorio de consumos internos.
func Usages(r MovementRepository) ProcessMovements {
	return ProcessMovements{repo: r, d: entity.UsageDiscriminant}
}

// Productions repositorio de órdenes de producción.
func Productions(r MovementRepository) ProcessMovements {
	return ProcessMovements{repo: r, d: entity.ProductionDiscriminant}
}

// ForProcess devuelve la vista del proceso indicado.
func ForProcess(r MovementRepository, p entity.Process) ProcessMovements {
	return ProcessMovements{repo: r, d: p.Discriminant()}
}

// Discriminant discriminante que filtra esta vista.
func (p ProcessMovements) Discriminant() entity.Discriminant { return p.d }

func (p ProcessMovements) Find(ctx context.Context, tenantID, id string) (*entity.MovementHeader, error) {
	return p.repo.Get(ctx, tenantID, id, p.d)
}

func (p ProcessMovements) FindForUpdate(ctx context.Context, tenantID, id string) (*entity.MovementHeader, error) {
	return p.repo.GetForUpdate(ctx, tenantID, id, p.d)
}

func (p ProcessMovements) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.MovementHeader, error) {
	return p.repo.List(ctx, tenantID, p.d, status, limit, offset)
}
