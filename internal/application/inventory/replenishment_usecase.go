package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
)

// ReplenishmentSuggestion producto bajo su stock mínimo con la cantidad sugerida de pedido.
type ReplenishmentSuggestion struct {
	ProductID     string
	LocationID    string
	CurrentStock  decimal.Decimal
	MinimumStock  decimal.Decimal
	TargetStock   decimal.Decimal
	SuggestedQty  decimal.Decimal
	AverageCost   decimal.Decimal
	EstimatedCost decimal.Decimal
	Priority      int
}

// ReplenishmentUseCase lista de reposición de una ubicación a partir de los saldos.
type ReplenishmentUseCase struct {
	txRunner TxRunner
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(txRunner TxRunner) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{txRunner: txRunner}
}

// GenerateReplenishmentList devuelve los saldos activos con stock < mínimo.
// El objetivo es el máximo configurado o, si no hay, 1.5 × mínimo.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, actor Actor, locationID string) ([]ReplenishmentSuggestion, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var suggestions []ReplenishmentSuggestion
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		if err := checkLocation(ctx, repos, actor.TenantID, locationID); err != nil {
			return err
		}
		balances, err := repos.Balances.ListByLocation(ctx, actor.TenantID, locationID)
		if err != nil {
			return err
		}
		factor := decimal.NewFromFloat(1.5)
		suggestions = make([]ReplenishmentSuggestion, 0)
		for _, b := range balances {
			if !b.Active || !b.MinimumStock.IsPositive() || !b.CurrentStock.LessThan(b.MinimumStock) {
				continue
			}
			target := b.MaximumStock
			if !target.IsPositive() {
				target = b.MinimumStock.Mul(factor)
			}
			qty := target.Sub(b.CurrentStock)
			if qty.IsNegative() {
				qty = decimal.Zero
			}
			suggestions = append(suggestions, ReplenishmentSuggestion{
				ProductID:     b.ProductID,
				LocationID:    b.LocationID,
				CurrentStock:  b.CurrentStock,
				MinimumStock:  b.MinimumStock,
				TargetStock:   target,
				SuggestedQty:  qty,
				AverageCost:   b.AverageCost,
				EstimatedCost: qty.Mul(b.AverageCost),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Mayor déficit relativo primero; desempate por producto para un orden estable.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra := a.MinimumStock.Sub(a.CurrentStock).Div(a.MinimumStock)
		rb := b.MinimumStock.Sub(b.CurrentStock).Div(b.MinimumStock)
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return a.ProductID < b.ProductID
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
