package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// AdjustmentUseCase ajustes manuales y consumos internos. Ambos nacen cerrados y afectan stock
// en la misma transacción en que se crean.
type AdjustmentUseCase struct {
	txRunner TxRunner
	log      zerolog.Logger
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(txRunner TxRunner, log zerolog.Logger) *AdjustmentUseCase {
	return &AdjustmentUseCase{txRunner: txRunner, log: log}
}

// CreateAdjustmentInput ajuste manual; Info.Direction define si suma o resta.
type CreateAdjustmentInput struct {
	LocationID     string
	DocumentNumber string
	OccurredAt     time.Time
	Info           entity.AdjustmentInfo
	Lines          []LineInput
}

// CreateUsageInput consumo interno; siempre descuenta.
type CreateUsageInput struct {
	LocationID     string
	DocumentNumber string
	OccurredAt     time.Time
	Info           entity.UsageInfo
	Lines          []LineInput
}

// CreateAdjustment registra el ajuste y aplica su efecto.
func (uc *AdjustmentUseCase) CreateAdjustment(ctx context.Context, actor Actor, in CreateAdjustmentInput) (*entity.MovementHeader, error) {
	var dir entity.LineDirection
	switch in.Info.Direction {
	case entity.AdjustmentIncrease:
		dir = entity.DirectionIn
	case entity.AdjustmentDecrease:
		dir = entity.DirectionOut
	default:
		return nil, domain.ErrInvalidInput
	}
	info := in.Info
	return uc.create(ctx, actor, closedMovement{
		discriminant:   entity.AdjustmentDiscriminant,
		prefix:         "AJU",
		direction:      dir,
		locationID:     in.LocationID,
		documentNumber: in.DocumentNumber,
		occurredAt:     in.OccurredAt,
		metadata:       entity.MovementMetadata{Adjustment: &info},
		lines:          in.Lines,
	})
}

// CreateUsage registra el consumo y descuenta el stock de la ubicación.
func (uc *AdjustmentUseCase) CreateUsage(ctx context.Context, actor Actor, in CreateUsageInput) (*entity.MovementHeader, error) {
	info := in.Info
	return uc.create(ctx, actor, closedMovement{
		discriminant:   entity.UsageDiscriminant,
		prefix:         "CON",
		direction:      entity.DirectionOut,
		locationID:     in.LocationID,
		documentNumber: in.DocumentNumber,
		occurredAt:     in.OccurredAt,
		metadata:       entity.MovementMetadata{Usage: &info},
		lines:          in.Lines,
	})
}

type closedMovement struct {
	discriminant   entity.Discriminant
	prefix         string
	direction      entity.LineDirection
	locationID     string
	documentNumber string
	occurredAt     time.Time
	metadata       entity.MovementMetadata
	lines          []LineInput
}

func (uc *AdjustmentUseCase) create(ctx context.Context, actor Actor, cm closedMovement) (*entity.MovementHeader, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.MovementHeader
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		if err := checkLocation(ctx, repos, actor.TenantID, cm.locationID); err != nil {
			return err
		}
		lines, err := buildLines(ctx, repos, actor.TenantID, cm.direction, cm.lines)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		occurred := cm.occurredAt
		if occurred.IsZero() {
			occurred = now
		}
		loc := cm.locationID
		h := &entity.MovementHeader{
			ID:             uuid.New().String(),
			TenantID:       actor.TenantID,
			Type:           cm.discriminant.Type,
			Reason:         cm.discriminant.Reason,
			Status:         entity.MovementClosed,
			DocumentNumber: documentNumber(cm.prefix, cm.documentNumber, now),
			Metadata:       cm.metadata,
			OccurredAt:     occurred,
			ActorID:        actor.UserID,
			CreatedAt:      now,
			UpdatedAt:      now,
			Lines:          lines,
		}
		if cm.direction == entity.DirectionIn {
			h.DestinationLocationID = &loc
		} else {
			h.OriginLocationID = &loc
		}
		for i := range h.Lines {
			h.Lines[i].HeaderID = h.ID
		}
		h.RecomputeTotal()
		if err := repos.Movements.Create(ctx, h); err != nil {
			return err
		}

		keeper := newStockKeeper(repos, actor, now)
		res, err := keeper.apply(ctx, movementRef(h), linesToMutations(h.Lines, loc, false))
		if err != nil {
			return err
		}
		if err := saveSnapshots(ctx, repos, h.Lines, res); err != nil {
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
		Str("reason", string(out.Reason)).
		Msg("movimiento registrado")
	return out, nil
}
