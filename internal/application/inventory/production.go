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
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

// ProductionUseCase fabrica productos terminados consumiendo los insumos de su receta.
type ProductionUseCase struct {
	txRunner TxRunner
	log      zerolog.Logger
}

// NewProductionUseCase construye el caso de uso.
func NewProductionUseCase(txRunner TxRunner, log zerolog.Logger) *ProductionUseCase {
	return &ProductionUseCase{txRunner: txRunner, log: log}
}

// ProduceInput orden de producción.
type ProduceInput struct {
	ProductID      string
	Quantity       decimal.Decimal
	LocationID     string
	DocumentNumber string
	Notes          string
}

// Produce expande la receta, valida todos los insumos y solo entonces descuenta insumos y
// suma el terminado, todo en la misma transacción.
func (uc *ProductionUseCase) Produce(ctx context.Context, actor Actor, in ProduceInput) (*entity.MovementHeader, error) {
	if !actor.valid() || in.ProductID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.MovementHeader
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		if err := checkLocation(ctx, repos, actor.TenantID, in.LocationID); err != nil {
			return err
		}
		product, err := loadProduct(ctx, repos, actor.TenantID, in.ProductID)
		if err != nil {
			return err
		}
		if !product.Manufactured || !product.Active {
			return domain.ErrInvalidInput
		}
		recipe, err := repos.Products.ListIngredients(ctx, product.ID)
		if err != nil {
			return err
		}
		reqs, err := inv.ExpandBOM(product.ID, in.Quantity, recipe)
		if err != nil {
			return err
		}
		for _, r := range reqs {
			if _, err := loadProduct(ctx, repos, actor.TenantID, r.IngredientID); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		keeper := newStockKeeper(repos, actor, now)
		muts := make([]mutation, 0, len(reqs)+1)
		for _, r := range reqs {
			muts = append(muts, mutation{ProductID: r.IngredientID, LocationID: in.LocationID, Direction: entity.DirectionOut, Quantity: r.Quantity})
		}
		muts = append(muts, mutation{ProductID: product.ID, LocationID: in.LocationID, Direction: entity.DirectionIn, Quantity: in.Quantity})

		// El costo del terminado sale del promedio vigente de los insumos bloqueados.
		locked, err := keeper.lock(ctx, muts)
		if err != nil {
			return err
		}
		avg := make(map[string]decimal.Decimal, len(reqs))
		for i, r := range reqs {
			c := decimal.Zero
			if b := locked[muts[i].key()]; b != nil {
				c = b.AverageCost
			}
			avg[r.IngredientID] = c
			muts[i].UnitCost = c
		}
		finishedCost := inv.UnitCostFromIngredients(reqs, avg)
		muts[len(muts)-1].UnitCost = finishedCost

		loc := in.LocationID
		qty := in.Quantity
		h := &entity.MovementHeader{
			ID:                    uuid.New().String(),
			TenantID:              actor.TenantID,
			OriginLocationID:      &loc,
			DestinationLocationID: &loc,
			Type:                  entity.ProductionDiscriminant.Type,
			Reason:                entity.ProductionDiscriminant.Reason,
			Status:                entity.MovementClosed,
			DocumentNumber:        documentNumber("PRD", in.DocumentNumber, now),
			Metadata:              entity.MovementMetadata{Production: &entity.ProductionInfo{ProductID: product.ID, Quantity: qty}},
			OccurredAt:            now,
			ActorID:               actor.UserID,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		h.Lines = make([]entity.MovementLine, 0, len(muts))
		for i := range muts {
			line := entity.NewMovementLine(muts[i].ProductID, muts[i].Direction, muts[i].Quantity, muts[i].UnitCost)
			line.ID = uuid.New().String()
			line.HeaderID = h.ID
			line.Notes = strings.TrimSpace(in.Notes)
			muts[i].LineID = line.ID
			h.Lines = append(h.Lines, line)
		}
		// El total de la orden es el costo del terminado, no la suma de entradas y salidas.
		h.TotalCost = finishedCost.Mul(qty)
		if err := repos.Movements.Create(ctx, h); err != nil {
			return err
		}

		res, err := keeper.apply(ctx, movementRef(h), muts)
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
		Str("product_id", in.ProductID).
		Str("quantity", in.Quantity.String()).
		Msg("producción registrada")
	return out, nil
}

// RevertProduction descuenta el terminado y devuelve los insumos al mismo costo con que salieron.
func (uc *ProductionUseCase) RevertProduction(ctx context.Context, actor Actor, id string) (*entity.MovementHeader, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.MovementHeader
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		h, err := findForUpdate(ctx, repository.Productions(repos.Movements), actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := inv.ProductionMachine.Check(h.Status, entity.MovementReverted); err != nil {
			return err
		}
		now := time.Now().UTC()
		keeper := newStockKeeper(repos, actor, now)
		if _, err := reverseFromLedger(ctx, repos, keeper, movementRef(h)); err != nil {
			return err
		}
		if h.Metadata.Production == nil {
			h.Metadata.Production = &entity.ProductionInfo{}
		}
		h.Metadata.Production.RevertedAt = &now
		h.Metadata.Production.RevertedBy = actor.UserID
		h.Status = entity.MovementReverted
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
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("document", out.DocumentNumber).Msg("producción revertida")
	return out, nil
}
