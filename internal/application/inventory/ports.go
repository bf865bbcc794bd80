package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción de BD.
type Repos struct {
	Balances  repository.BalanceRepository
	Ledger    repository.LedgerRepository
	Movements repository.MovementRepository
	Transfers repository.TransferRepository
	Counts    repository.CountRepository
	Products  repository.ProductRepository
	Locations repository.LocationRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback completo: ningún saldo ni asiento queda a medias.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// Actor contexto explícito de cada operación: empresa (tenant) y usuario que la ejecuta.
type Actor struct {
	TenantID string
	UserID   string
}

func (a Actor) valid() bool { return a.TenantID != "" && a.UserID != "" }
