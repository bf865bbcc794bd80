package repository

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// BalanceRepository puerto del almacén de saldos (producto × ubicación).
// Los métodos ForUpdate bloquean la fila hasta el fin de la transacción.
type BalanceRepository interface {
	// Get devuelve nil, nil si el saldo no existe; nunca lo crea.
	Get(ctx context.Context, tenantID, productID, locationID string) (*entity.Balance, error)
	// GetForUpdate igual que Get pero con bloqueo de fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.Balance, error)
	// GetOrCreateForUpdate crea la fila en cero si no existe y la devuelve bloqueada.
	GetOrCreateForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.Balance, error)
	// Create inicializa un saldo explícitamente; domain.ErrConflict si ya existe.
	Create(ctx context.Context, balance *entity.Balance) error
	// Save persiste stock, costo promedio y fecha del último movimiento de una fila existente.
	Save(ctx context.Context, balance *entity.Balance) error
	ListByLocation(ctx context.Context, tenantID, locationID string) ([]*entity.Balance, error)
}
