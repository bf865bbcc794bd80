package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	inv "github.com/jhoicas/Inventario-kardex/internal/domain/inventory"
)

// CountUseCase conteos físicos y su conciliación contra el saldo del sistema.
type CountUseCase struct {
	txRunner TxRunner
	log      zerolog.Logger
}

// NewCountUseCase construye el caso de uso.
func NewCountUseCase(txRunner TxRunner, log zerolog.Logger) *CountUseCase {
	return &CountUseCase{txRunner: txRunner, log: log}
}

// CreateCountInput planificación del conteo. Sin ProductIDs se toman todos los saldos activos
// de la ubicación.
type CreateCountInput struct {
	LocationID     string
	DocumentNumber string
	CountDate      time.Time
	Notes          string
	ProductIDs     []string
}

// RecordCountInput cantidad contada para una línea (LineID) o un producto (ProductID).
type RecordCountInput struct {
	LineID    string
	ProductID string
	Counted   decimal.Decimal
	Notes     string
}

// Create crea el conteo en planning con la foto de las cantidades del sistema.
func (uc *CountUseCase) Create(ctx context.Context, actor Actor, in CreateCountInput) (*entity.Count, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Count
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		if err := checkLocation(ctx, repos, actor.TenantID, in.LocationID); err != nil {
			return err
		}
		now := time.Now().UTC()
		countDate := in.CountDate
		if countDate.IsZero() {
			countDate = now
		}
		c := &entity.Count{
			ID:             uuid.New().String(),
			TenantID:       actor.TenantID,
			LocationID:     in.LocationID,
			DocumentNumber: documentNumber("CNT", in.DocumentNumber, now),
			Status:         entity.CountPlanning,
			CountDate:      countDate,
			Notes:          strings.TrimSpace(in.Notes),
			CreatedBy:      actor.UserID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if len(in.ProductIDs) == 0 {
			balances, err := repos.Balances.ListByLocation(ctx, actor.TenantID, in.LocationID)
			if err != nil {
				return err
			}
			for _, b := range balances {
				if !b.Active {
					continue
				}
				c.Lines = append(c.Lines, newCountLine(c.ID, b.ProductID, b.CurrentStock))
			}
		} else {
			seen := make(map[string]bool, len(in.ProductIDs))
			for _, pid := range in.ProductIDs {
				if pid == "" || seen[pid] {
					return domain.ErrInvalidInput
				}
				seen[pid] = true
				line, err := snapshotLine(ctx, repos, actor.TenantID, c, pid)
				if err != nil {
					return err
				}
				c.Lines = append(c.Lines, line)
			}
		}

		if err := repos.Counts.Create(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("document", out.DocumentNumber).
		Int("lines", len(out.Lines)).
		Msg("conteo planificado")
	return out, nil
}

// Start pasa el conteo de planning a counting.
func (uc *CountUseCase) Start(ctx context.Context, actor Actor, id string) (*entity.Count, error) {
	return uc.step(ctx, actor, id, entity.CountCounting, func(ctx context.Context, repos Repos, c *entity.Count, now time.Time) error {
		c.StartedAt = &now
		return nil
	})
}

// RecordCount registra la cantidad contada. El primer registro pasa el conteo a counting.
// Un producto que no estaba planificado se agrega con la cantidad actual del sistema.
func (uc *CountUseCase) RecordCount(ctx context.Context, actor Actor, id string, in RecordCountInput) (*entity.Count, error) {
	if !actor.valid() || in.Counted.IsNegative() || (in.LineID == "" && in.ProductID == "") {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Count
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		c, err := uc.load(ctx, repos, actor.TenantID, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		switch c.Status {
		case entity.CountPlanning:
			c.Status = entity.CountCounting
			c.StartedAt = &now
		case entity.CountCounting:
		default:
			return domain.NewInvalidTransition("conteo", string(c.Status), "registro")
		}

		var line *entity.CountLine
		if in.LineID != "" {
			line = c.Line(in.LineID)
			if line == nil {
				return domain.ErrNotFound
			}
		} else if line = c.LineByProduct(in.ProductID); line == nil {
			nl, err := snapshotLine(ctx, repos, actor.TenantID, c, in.ProductID)
			if err != nil {
				return err
			}
			c.Lines = append(c.Lines, nl)
			line = &c.Lines[len(c.Lines)-1]
		}
		line.SetCounted(in.Counted)
		if in.Notes != "" {
			line.Notes = in.Notes
		}
		if err := repos.Counts.SaveLine(ctx, line); err != nil {
			return err
		}
		c.UpdatedAt = now
		if err := repos.Counts.Update(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// Complete concilia: cada línea contada con diferencia deja el saldo en la cantidad contada.
func (uc *CountUseCase) Complete(ctx context.Context, actor Actor, id string) (*entity.Count, error) {
	return uc.step(ctx, actor, id, entity.CountCompleted, func(ctx context.Context, repos Repos, c *entity.Count, now time.Time) error {
		keeper := newStockKeeper(repos, actor, now)
		ref := ledgerRef{
			Source:         entity.SourceCount,
			HeaderID:       c.ID,
			Type:           entity.MovementTypeAdjustment,
			Reason:         entity.ReasonStockAdjustment,
			DocumentNumber: c.DocumentNumber,
		}
		for i := range c.Lines {
			l := &c.Lines[i]
			if !l.NeedsReconciliation() {
				continue
			}
			if _, err := keeper.setAbsolute(ctx, ref, l.ProductID, c.LocationID, l.ID, *l.CountedQuantity); err != nil {
				return err
			}
		}
		c.CompletedBy = actor.UserID
		c.CompletedAt = &now
		return nil
	})
}

// Cancel anula un conteo no completado; no toca saldos.
func (uc *CountUseCase) Cancel(ctx context.Context, actor Actor, id string) (*entity.Count, error) {
	return uc.step(ctx, actor, id, entity.CountCancelled, func(ctx context.Context, repos Repos, c *entity.Count, now time.Time) error {
		c.CancelledAt = &now
		return nil
	})
}

// Delete borra un conteo que no se ha completado.
func (uc *CountUseCase) Delete(ctx context.Context, actor Actor, id string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		c, err := uc.load(ctx, repos, actor.TenantID, id)
		if err != nil {
			return err
		}
		if c.Status == entity.CountCompleted {
			return domain.ErrDeleteForbidden
		}
		return repos.Counts.Delete(ctx, actor.TenantID, c.ID)
	})
}

// Get devuelve el conteo con sus líneas.
func (uc *CountUseCase) Get(ctx context.Context, actor Actor, id string) (*entity.Count, error) {
	var out *entity.Count
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		c, err := repos.Counts.Get(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		out = c
		return nil
	})
	return out, err
}

// List lista conteos, opcionalmente por estado.
func (uc *CountUseCase) List(ctx context.Context, actor Actor, status entity.CountStatus, limit, offset int) ([]*entity.Count, error) {
	var out []*entity.Count
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		out, err = repos.Counts.List(ctx, actor.TenantID, status, limit, offset)
		return err
	})
	return out, err
}

func (uc *CountUseCase) step(
	ctx context.Context,
	actor Actor,
	id string,
	to entity.CountStatus,
	effect func(ctx context.Context, repos Repos, c *entity.Count, now time.Time) error,
) (*entity.Count, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var (
		out  *entity.Count
		from entity.CountStatus
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		c, err := uc.load(ctx, repos, actor.TenantID, id)
		if err != nil {
			return err
		}
		from = c.Status
		if err := inv.CountMachine.Check(string(from), string(to)); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := effect(ctx, repos, c, now); err != nil {
			return err
		}
		c.Status = to
		c.UpdatedAt = now
		if err := repos.Counts.Update(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("document", out.DocumentNumber).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("conteo actualizado")
	return out, nil
}

func (uc *CountUseCase) load(ctx context.Context, repos Repos, tenantID, id string) (*entity.Count, error) {
	c, err := repos.Counts.GetForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// snapshotLine línea nueva con la cantidad actual del sistema (0 si no hay saldo).
func snapshotLine(ctx context.Context, repos Repos, tenantID string, c *entity.Count, productID string) (entity.CountLine, error) {
	if _, err := loadProduct(ctx, repos, tenantID, productID); err != nil {
		return entity.CountLine{}, err
	}
	b, err := repos.Balances.Get(ctx, tenantID, productID, c.LocationID)
	if err != nil {
		return entity.CountLine{}, err
	}
	system := decimal.Zero
	if b != nil {
		system = b.CurrentStock
	}
	return newCountLine(c.ID, productID, system), nil
}

func newCountLine(countID, productID string, system decimal.Decimal) entity.CountLine {
	return entity.CountLine{
		ID:             uuid.New().String(),
		CountID:        countID,
		ProductID:      productID,
		SystemQuantity: system,
		Difference:     decimal.Zero,
	}
}
