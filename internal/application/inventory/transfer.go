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

// TransferUseCase flujo de traslados: solicitud, aprobación, despacho y recepción.
// Despachar descuenta el origen; recibir suma al destino lo realmente recibido.
type TransferUseCase struct {
	txRunner TxRunner
	log      zerolog.Logger
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(txRunner TxRunner, log zerolog.Logger) *TransferUseCase {
	return &TransferUseCase{txRunner: txRunner, log: log}
}

// TransferLineInput producto y cantidad solicitada.
type TransferLineInput struct {
	ProductID   string
	Quantity    decimal.Decimal
	BatchNumber string
	ExpiryDate  *time.Time
	Notes       string
}

// CreateTransferInput solicitud de traslado.
type CreateTransferInput struct {
	FromLocationID string
	ToLocationID   string
	DocumentNumber string
	Notes          string
	Lines          []TransferLineInput
}

// Create registra la solicitud en pending.
func (uc *TransferUseCase) Create(ctx context.Context, actor Actor, in CreateTransferInput) (*entity.Transfer, error) {
	if !actor.valid() || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.FromLocationID == "" || in.ToLocationID == "" {
		return nil, domain.ErrMissingLocation
	}
	if in.FromLocationID == in.ToLocationID {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Transfer
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		if err := checkLocation(ctx, repos, actor.TenantID, in.FromLocationID); err != nil {
			return err
		}
		if err := checkLocation(ctx, repos, actor.TenantID, in.ToLocationID); err != nil {
			return err
		}
		now := time.Now().UTC()
		t := &entity.Transfer{
			ID:             uuid.New().String(),
			TenantID:       actor.TenantID,
			DocumentNumber: documentNumber("TRA", in.DocumentNumber, now),
			FromLocationID: in.FromLocationID,
			ToLocationID:   in.ToLocationID,
			Status:         entity.TransferPending,
			Notes:          strings.TrimSpace(in.Notes),
			RequestedBy:    actor.UserID,
			RequestedAt:    now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		for _, li := range in.Lines {
			if li.ProductID == "" || !li.Quantity.IsPositive() {
				return domain.ErrInvalidInput
			}
			if _, err := loadProduct(ctx, repos, actor.TenantID, li.ProductID); err != nil {
				return err
			}
			t.Lines = append(t.Lines, entity.TransferLine{
				ID:                uuid.New().String(),
				TransferID:        t.ID,
				ProductID:         li.ProductID,
				QuantityRequested: li.Quantity,
				QuantityShipped:   decimal.Zero,
				QuantityReceived:  decimal.Zero,
				UnitCost:          decimal.Zero,
				BatchNumber:       li.BatchNumber,
				ExpiryDate:        li.ExpiryDate,
				Difference:        decimal.Zero,
				Notes:             li.Notes,
			})
		}
		t.RecomputeTotals()
		if err := repos.Transfers.Create(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("document", out.DocumentNumber).Msg("traslado solicitado")
	return out, nil
}

// Approve aprueba un traslado pendiente.
func (uc *TransferUseCase) Approve(ctx context.Context, actor Actor, id string) (*entity.Transfer, error) {
	return uc.step(ctx, actor, id, entity.TransferApproved, func(ctx context.Context, repos Repos, t *entity.Transfer, now time.Time) error {
		t.ApprovedBy = actor.UserID
		t.ApprovedAt = &now
		return nil
	})
}

// Reject rechaza un traslado pendiente. El motivo es obligatorio.
func (uc *TransferUseCase) Reject(ctx context.Context, actor Actor, id, reason string) (*entity.Transfer, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.step(ctx, actor, id, entity.TransferRejected, func(ctx context.Context, repos Repos, t *entity.Transfer, now time.Time) error {
		// in_transit → rejected queda reservado a la recepción en cero.
		if t.Status != entity.TransferPending {
			return domain.NewInvalidTransition("traslado", string(t.Status), string(entity.TransferRejected))
		}
		t.RejectedBy = actor.UserID
		t.RejectedAt = &now
		t.RejectionReason = reason
		return nil
	})
}

// Ship despacha el traslado. Sin shipments se despacha lo solicitado en cada línea; las líneas
// no mencionadas salen en cero. Cada línea despacha como máximo lo solicitado.
func (uc *TransferUseCase) Ship(ctx context.Context, actor Actor, id string, shipments []entity.TransferShipment, evidence *entity.ShippingEvidence) (*entity.Transfer, error) {
	return uc.step(ctx, actor, id, entity.TransferInTransit, func(ctx context.Context, repos Repos, t *entity.Transfer, now time.Time) error {
		shipped, err := quantitiesByLine(t, shipments, func(l *entity.TransferLine) decimal.Decimal { return l.QuantityRequested })
		if err != nil {
			return err
		}
		total := decimal.Zero
		muts := make([]mutation, 0, len(t.Lines))
		idx := make([]int, 0, len(t.Lines))
		for i := range t.Lines {
			l := &t.Lines[i]
			qty := shipped[l.ID]
			if qty.GreaterThan(l.QuantityRequested) {
				return domain.ErrInvalidInput
			}
			l.QuantityShipped = qty
			total = total.Add(qty)
			if qty.IsPositive() {
				muts = append(muts, mutation{
					ProductID:   l.ProductID,
					LocationID:  t.FromLocationID,
					Direction:   entity.DirectionOut,
					Quantity:    qty,
					LineID:      l.ID,
					BatchNumber: l.BatchNumber,
					ExpiryDate:  l.ExpiryDate,
				})
				idx = append(idx, i)
			}
		}
		if !total.IsPositive() {
			return domain.ErrInvalidInput
		}
		res, err := newStockKeeper(repos, actor, now).apply(ctx, transferRef(t), muts)
		if err != nil {
			return err
		}
		// El costo del traslado es el promedio del origen al momento del despacho.
		for j, i := range idx {
			t.Lines[i].UnitCost = res[j].UnitCost
		}
		t.ShippedBy = actor.UserID
		t.ShippedAt = &now
		t.Evidence = evidence
		return nil
	})
}

// Receive registra la recepción. Sin lines se recibe todo lo despachado; las líneas no mencionadas
// se reciben en cero. Una recepción total en cero deja el traslado rechazado.
func (uc *TransferUseCase) Receive(ctx context.Context, actor Actor, id string, received []entity.TransferShipment) (*entity.Transfer, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Transfer
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		t, err := uc.load(ctx, repos, actor.TenantID, id)
		if err != nil {
			return err
		}
		if t.Status != entity.TransferInTransit {
			return domain.NewInvalidTransition("traslado", string(t.Status), string(entity.TransferCompleted))
		}
		qtys, err := quantitiesByLine(t, received, func(l *entity.TransferLine) decimal.Decimal { return l.QuantityShipped })
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		total := decimal.Zero
		muts := make([]mutation, 0, len(t.Lines))
		for i := range t.Lines {
			l := &t.Lines[i]
			qty := qtys[l.ID]
			if qty.GreaterThan(l.QuantityShipped) {
				return domain.ErrInvalidInput
			}
			l.QuantityReceived = qty
			l.Difference = qty.Sub(l.QuantityShipped)
			total = total.Add(qty)
			if qty.IsPositive() {
				muts = append(muts, mutation{
					ProductID:   l.ProductID,
					LocationID:  t.ToLocationID,
					Direction:   entity.DirectionIn,
					Quantity:    qty,
					UnitCost:    l.UnitCost,
					LineID:      l.ID,
					BatchNumber: l.BatchNumber,
					ExpiryDate:  l.ExpiryDate,
				})
			}
		}

		to := entity.TransferCompleted
		keeper := newStockKeeper(repos, actor, now)
		if total.IsZero() {
			// nada llegó: lo despachado vuelve al origen
			if _, err := reverseFromLedger(ctx, repos, keeper, transferRef(t)); err != nil {
				return err
			}
			to = entity.TransferRejected
			t.RejectedBy = actor.UserID
			t.RejectedAt = &now
			t.RejectionReason = "recepción en cero"
		} else if _, err := keeper.apply(ctx, transferRef(t), muts); err != nil {
			return err
		}
		if err := inv.TransferMachine.Check(string(t.Status), string(to)); err != nil {
			return err
		}
		t.ReceivedBy = actor.UserID
		t.ReceivedAt = &now
		t.Status = to
		t.UpdatedAt = now
		t.RecomputeTotals()
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("document", out.DocumentNumber).
		Str("to", string(out.Status)).
		Bool("has_differences", out.HasDifferences).
		Msg("traslado recibido")
	return out, nil
}

// Cancel anula el traslado; si ya se había despachado devuelve al origen lo descontado.
func (uc *TransferUseCase) Cancel(ctx context.Context, actor Actor, id string) (*entity.Transfer, error) {
	return uc.step(ctx, actor, id, entity.TransferCancelled, func(ctx context.Context, repos Repos, t *entity.Transfer, now time.Time) error {
		if t.Status == entity.TransferInTransit {
			if _, err := reverseFromLedger(ctx, repos, newStockKeeper(repos, actor, now), transferRef(t)); err != nil {
				return err
			}
		}
		t.CancelledBy = actor.UserID
		t.CancelledAt = &now
		return nil
	})
}

// Delete borra un traslado pendiente, o rechazado antes de despachar.
func (uc *TransferUseCase) Delete(ctx context.Context, actor Actor, id string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		t, err := uc.load(ctx, repos, actor.TenantID, id)
		if err != nil {
			return err
		}
		if t.Status != entity.TransferPending && t.Status != entity.TransferRejected {
			return domain.ErrDeleteForbidden
		}
		touched, err := repos.Ledger.ExistsForSource(ctx, actor.TenantID, entity.SourceTransfer, t.ID)
		if err != nil {
			return err
		}
		if touched {
			return domain.ErrDeleteForbidden
		}
		return repos.Transfers.Delete(ctx, actor.TenantID, t.ID)
	})
}

// Get devuelve el traslado con sus líneas.
func (uc *TransferUseCase) Get(ctx context.Context, actor Actor, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		t, err := repos.Transfers.Get(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		out = t
		return nil
	})
	return out, err
}

// List lista traslados, opcionalmente por estado.
func (uc *TransferUseCase) List(ctx context.Context, actor Actor, status entity.TransferStatus, limit, offset int) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		out, err = repos.Transfers.List(ctx, actor.TenantID, status, limit, offset)
		return err
	})
	return out, err
}

// step transición genérica: bloquea el traslado, valida la tabla, ejecuta el efecto y persiste.
func (uc *TransferUseCase) step(
	ctx context.Context,
	actor Actor,
	id string,
	to entity.TransferStatus,
	effect func(ctx context.Context, repos Repos, t *entity.Transfer, now time.Time) error,
) (*entity.Transfer, error) {
	if !actor.valid() {
		return nil, domain.ErrInvalidInput
	}
	var (
		out  *entity.Transfer
		from entity.TransferStatus
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		t, err := uc.load(ctx, repos, actor.TenantID, id)
		if err != nil {
			return err
		}
		from = t.Status
		if err := inv.TransferMachine.Check(string(from), string(to)); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := effect(ctx, repos, t, now); err != nil {
			return err
		}
		t.Status = to
		t.UpdatedAt = now
		t.RecomputeTotals()
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		out = t
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
		Msg("traslado actualizado")
	return out, nil
}

func (uc *TransferUseCase) load(ctx context.Context, repos Repos, tenantID, id string) (*entity.Transfer, error) {
	t, err := repos.Transfers.GetForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// quantitiesByLine arma la cantidad por línea. Sin entradas usa def(línea) para todas.
// Líneas desconocidas, repetidas o cantidades negativas son ErrInvalidInput.
func quantitiesByLine(t *entity.Transfer, in []entity.TransferShipment, def func(*entity.TransferLine) decimal.Decimal) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(t.Lines))
	if len(in) == 0 {
		for i := range t.Lines {
			out[t.Lines[i].ID] = def(&t.Lines[i])
		}
		return out, nil
	}
	for i := range t.Lines {
		out[t.Lines[i].ID] = decimal.Zero
	}
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		l := t.Line(s.LineID)
		if l == nil || seen[s.LineID] || s.Quantity.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		seen[s.LineID] = true
		out[s.LineID] = s.Quantity
		if s.Notes != "" {
			l.Notes = s.Notes
		}
	}
	return out, nil
}

func transferRef(t *entity.Transfer) ledgerRef {
	return ledgerRef{
		Source:         entity.SourceTransfer,
		HeaderID:       t.ID,
		Type:           entity.MovementTypeTransfer,
		Reason:         entity.ReasonTransfer,
		DocumentNumber: t.DocumentNumber,
	}
}
