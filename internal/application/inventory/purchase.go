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

// PurchaseUseCase ciclo de vida de la compra: draft → ordered → in_transit → received.
// Solo received suma stock en el destino; salir de received lo revierte.
type PurchaseUseCase struct {
	txRunner TxRunner
	log      zerolog.Logger
}

// NewPurchaseUseCase construye el caso de uso.
func NewPurchaseUseCase(txRunner TxRunner, log zerolog.Logger) *PurchaseUseCase {
	return &PurchaseUseCase{txRunner: txRunner, log: log}
}

// CreatePurchaseInput datos para crear una compra en borrador.
type CreatePurchaseInput struct {
	LocationID     string
	DocumentNumber string
	OccurredAt     time.Time
	Info           entity.PurchaseInfo
	Lines          []LineInput
}

// Create crea la compra (entry, purchase) en draft.
func (uc *PurchaseUseCase) Create(ctx context.Context, actor Actor, in CreatePurchaseInput) (*entity.MovementHeader, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.MovementHeader
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		if err := checkLocation(ctx, repos, actor.TenantID, in.LocationID); err != nil {
			return err
		}
		lines, err := buildLines(ctx, repos, actor.TenantID, entity.DirectionIn, in.Lines)
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
			ID:                    uuid.New().String(),
			TenantID:              actor.TenantID,
			DestinationLocationID: &loc,
			Type:                  entity.PurchaseDiscriminant.Type,
			Reason:                entity.PurchaseDiscriminant.Reason,
			Status:                entity.PurchaseDraft,
			DocumentNumber:        documentNumber("CMP", in.DocumentNumber, now),
			Metadata:              entity.MovementMetadata{Purchase: &info},
			OccurredAt:            occurred,
			ActorID:               actor.UserID,
			CreatedAt:             now,
			UpdatedAt:             now,
			Lines:                 lines,
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
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("document", out.DocumentNumber).Msg("compra creada")
	return out, nil
}

// UpdateLines reemplaza las líneas de una compra en borrador.
func (uc *PurchaseUseCase) UpdateLines(ctx context.Context, actor Actor, id string, lines []LineInput) (*entity.MovementHeader, error) {
	var out *entity.MovementHeader
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		h, err := findForUpdate(ctx, repository.Purchases(repos.Movements), actor.TenantID, id)
		if err != nil {
			return err
		}
		if h.Status != entity.PurchaseDraft {
			return domain.NewInvalidTransition("compra", h.Status, "edición")
		}
		newLines, err := buildLines(ctx, repos, actor.TenantID, entity.DirectionIn, lines)
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

// Advance avanza un paso en el flujo de la compra.
func (uc *PurchaseUseCase) Advance(ctx context.Context, actor Actor, id string) (*entity.MovementHeader, error) {
	return uc.move(ctx, actor, id, func(status string) (string, error) {
		next, ok := inv.NextPurchaseStatus(status)
		if !ok {
			return "", domain.NewInvalidTransition("compra", status, "siguiente")
		}
		return next, nil
	})
}

// Revert retrocede un paso en el flujo de la compra.
func (uc *PurchaseUseCase) Revert(ctx context.Context, actor Actor, id string) (*entity.MovementHeader, error) {
	return uc.move(ctx, actor, id, func(status string) (string, error) {
		prev, ok := inv.PrevPurchaseStatus(status)
		if !ok {
			return "", domain.NewInvalidTransition("compra", status, "anterior")
		}
		return prev, nil
	})
}

// Cancel anula la compra. Desde received revierte la entrada de stock como un retroceso.
func (uc *PurchaseUseCase) Cancel(ctx context.Context, actor Actor, id string) (*entity.MovementHeader, error) {
	return uc.Transition(ctx, actor, id, entity.PurchaseCancelled)
}

// Transition lleva la compra al estado indicado si la tabla de transiciones lo permite.
func (uc *PurchaseUseCase) Transition(ctx context.Context, actor Actor, id, to string) (*entity.MovementHeader, error) {
	return uc.move(ctx, actor, id, func(string) (string, error) { return to, nil })
}

func (uc *PurchaseUseCase) move(ctx context.Context, actor Actor, id string, target func(status string) (string, error)) (*entity.MovementHeader, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var (
		out      *entity.MovementHeader
		from, to string
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		h, err := findForUpdate(ctx, repository.Purchases(repos.Movements), actor.TenantID, id)
		if err != nil {
			return err
		}
		from = h.Status
		if to, err = target(from); err != nil {
			return err
		}
		if err := inv.PurchaseMachine.Check(from, to); err != nil {
			return err
		}
		now := time.Now().UTC()

		if effect := inv.PurchaseMachine.Effect(from, to); effect != inv.EffectNone {
			if h.DestinationLocationID == nil || *h.DestinationLocationID == "" {
				return domain.ErrMissingLocation
			}
			keeper := newStockKeeper(repos, actor, now)
			if effect == inv.EffectDecrement {
				// Deshace lo que asentó la recepción, con su costo, para restaurar el promedio.
				if _, err := reverseFromLedger(ctx, repos, keeper, movementRef(h)); err != nil {
					return err
				}
			} else {
				res, err := keeper.apply(ctx, movementRef(h), linesToMutations(h.Lines, *h.DestinationLocationID, false))
				if err != nil {
					return err
				}
				if err := saveSnapshots(ctx, repos, h.Lines, res); err != nil {
					return err
				}
			}
		}

		stampPurchase(h, from, to, now)
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
		Msg("compra actualizada")
	return out, nil
}

// stampPurchase registra la fecha del paso alcanzado y limpia la del paso abandonado al retroceder.
func stampPurchase(h *entity.MovementHeader, from, to string, now time.Time) {
	if h.Metadata.Purchase == nil {
		h.Metadata.Purchase = &entity.PurchaseInfo{}
	}
	p := h.Metadata.Purchase
	set := func(status string, v *time.Time) {
		switch status {
		case entity.PurchaseOrdered:
			p.OrderedAt = v
		case entity.PurchaseInTransit:
			p.ShippedAt = v
		case entity.PurchaseReceived:
			p.ReceivedAt = v
		case entity.PurchaseCancelled:
			p.CancelledAt = v
		}
	}
	if prev, ok := inv.PrevPurchaseStatus(from); ok && prev == to {
		set(from, nil)
		return
	}
	set(to, &now)
}
