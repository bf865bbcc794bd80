package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	inv "github.com/jhoicas/Inventario-kardex/internal/domain/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

// SaleUseCase ciclo de vida de la venta: draft → processed → closed, cancelled.
// Cerrar descuenta el stock del origen; cancelar una venta cerrada lo devuelve completo.
type SaleUseCase struct {
	txRunner TxRunner
	log      zerolog.Logger
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(txRunner TxRunner, log zerolog.Logger) *SaleUseCase {
	return &SaleUseCase{txRunner: txRunner, log: log}
}

// CreateSaleInput datos para crear una venta en borrador.
type CreateSaleInput struct {
	LocationID     string
	DocumentNumber string
	OccurredAt     time.Time
	Info           entity.SaleInfo
	Lines          []LineInput
}

// Create crea la venta (exit, sale) en draft con total = Σ cantidad × precio unitario.
func (uc *SaleUseCase) Create(ctx context.Context, actor Actor, in CreateSaleInput) (*entity.MovementHeader, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.MovementHeader
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		if err := checkLocation(ctx, repos, actor.TenantID, in.LocationID); err != nil {
			return err
		}
		lines, err := buildLines(ctx, repos, actor.TenantID, entity.DirectionOut, in.Lines)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		occurred := in.OccurredAt
		if occurred.IsZero() {
			occurred = now
		}
		info := in.Info
		loc := in.LocationID
		h := &entity.MovementHeader{
			ID:               uuid.New().String(),
			TenantID:         actor.TenantID,
			OriginLocationID: &loc,
			Type:             entity.SaleDiscriminant.Type,
			Reason:           entity.SaleDiscriminant.Reason,
			Status:           entity.SaleDraft,
			DocumentNumber:   documentNumber("VTA", in.DocumentNumber, now),
			Metadata:         entity.MovementMetadata{Sale: &info},
			OccurredAt:       occurred,
			ActorID:          actor.UserID,
			CreatedAt:        now,
			UpdatedAt:        now,
			Lines:            lines,
		}
		for i := range h.Lines {
			h.Lines[i].HeaderID = h.ID
		}
		h.RecomputeTotal()
		if err := repos.Movements.Create(ctx, h); err != nil {
			return err
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("document", out.DocumentNumber).Msg("venta creada")
	return out, nil
}

// UpdateLines reemplaza todas las líneas de una venta que sigue en borrador.
func (uc *SaleUseCase) UpdateLines(ctx context.Context, actor Actor, id string, lines []LineInput) (*entity.MovementHeader, error) {
	var out *entity.MovementHeader
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		h, err := findForUpdate(ctx, repository.Sales(repos.Movements), actor.TenantID, id)
		if err != nil {
			return err
		}
		if h.Status != entity.SaleDraft {
			return domain.NewInvalidTransition("venta", h.Status, "edición")
		}
		newLines, err := buildLines(ctx, repos, actor.TenantID, entity.DirectionOut, lines)
		if err != nil {
			return err
		}
		for i := range newLines {
			newLines[i].HeaderID = h.ID
		}
		if err := repos.Movements.ReplaceLines(ctx, h.ID, newLines); err != nil {
			return err
		}
		h.Lines = newLines
		h.RecomputeTotal()
		h.UpdatedAt = time.Now().UTC()
		if err := repos.Movements.Update(ctx, h); err != nil {
			return err
		}
		out = h
		return nil
	})
	return out, err
}

// Process marca la venta como procesada (sin efecto en stock).
func (uc *SaleUseCase) Process(ctx context.Context, actor Actor, id string) (*entity.MovementHeader, error) {
	return uc.transition(ctx, actor, id, entity.SaleProcessed)
}

// Close cierra la venta: valida stock de todas las líneas y luego descuenta.
func (uc *SaleUseCase) Close(ctx context.Context, actor Actor, id string) (*entity.MovementHeader, error) {
	return uc.transition(ctx, actor, id, entity.SaleClosed)
}

// Cancel anula la venta; si estaba cerrada devuelve exactamente lo descontado.
func (uc *SaleUseCase) Cancel(ctx context.Context, actor Actor, id string) (*entity.MovementHeader, error) {
	return uc.transition(ctx, actor, id, entity.SaleCancelled)
}

func (uc *SaleUseCase) transition(ctx context.Context, actor Actor, id, to string) (*entity.MovementHeader, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var (
		out  *entity.MovementHeader
		from string
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		h, err := findForUpdate(ctx, repository.Sales(repos.Movements), actor.TenantID, id)
		if err != nil {
			return err
		}
		from = h.Status
		if err := inv.SaleMachine.Check(from, to); err != nil {
			return err
		}
		now := time.Now().UTC()
		keeper := newStockKeeper(repos, actor, now)

		switch inv.SaleMachine.Effect(from, to) {
		case inv.EffectDecrement:
			if h.OriginLocationID == nil || *h.OriginLocationID == "" {
				return domain.ErrMissingLocation
			}
			res, err := keeper.apply(ctx, movementRef(h), linesToMutations(h.Lines, *h.OriginLocationID, false))
			if err != nil {
				return err
			}
			if err := saveSnapshots(ctx, repos, h.Lines, res); err != nil {
				return err
			}
		case inv.EffectIncrement:
			if _, err := reverseFromLedger(ctx, repos, keeper, movementRef(h)); err != nil {
				return err
			}
		}

		if h.Metadata.Sale == nil {
			h.Metadata.Sale = &entity.SaleInfo{}
		}
		switch to {
		case entity.SaleProcessed:
			h.Metadata.Sale.ProcessedAt = &now
		case entity.SaleClosed:
			h.Metadata.Sale.ClosedAt = &now
		case entity.SaleCancelled:
			h.Metadata.Sale.CancelledAt = &now
		}
		h.Status = to
		h.UpdatedAt = now
		if err := repos.Movements.Update(ctx, h); err != nil {
			return err
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("document", out.DocumentNumber).
		Str("from", from).
		Str("to", to).
		Msg("venta actualizada")
	return out, nil
}
