package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	inv "github.com/jhoicas/Inventario-kardex/internal/domain/inventory"
)

// ledgerRef documento que origina un grupo de mutaciones.
type ledgerRef struct {
	Source         entity.LedgerSource
	HeaderID       string
	Type           entity.MovementType
	Reason         entity.MovementReason
	DocumentNumber string
}

// mutation una entrada o salida de stock sobre una fila de saldo.
type mutation struct {
	ProductID   string
	LocationID  string
	Direction   entity.LineDirection
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal // costo de la entrada; en salidas manda el promedio vigente
	Reversal    bool            // deshace un asiento previo con su mismo costo
	LineID      string
	BatchNumber string
	ExpiryDate  *time.Time
}

func (m mutation) key() entity.BalanceKey {
	return entity.BalanceKey{ProductID: m.ProductID, LocationID: m.LocationID}
}

// applied resultado de una mutación: saldo antes/después y el asiento escrito.
type applied struct {
	Previous decimal.Decimal
	New      decimal.Decimal
	UnitCost decimal.Decimal
	Entry    *entity.LedgerEntry
}

// stockKeeper aplica mutaciones de saldo dentro de la transacción del caller.
// Cada mutación escribe exactamente un asiento de kardex con el saldo previo y el nuevo.
type stockKeeper struct {
	repos    Repos
	tenantID string
	actorID  string
	now      time.Time
}

func newStockKeeper(repos Repos, actor Actor, now time.Time) *stockKeeper {
	return &stockKeeper{repos: repos, tenantID: actor.TenantID, actorID: actor.UserID, now: now}
}

// apply bloquea todas las filas involucradas (en orden ubicación, producto), valida que ninguna
// salida deje saldo negativo y solo entonces aplica las mutaciones en el orden recibido.
func (s *stockKeeper) apply(ctx context.Context, ref ledgerRef, muts []mutation) ([]applied, error) {
	if len(muts) == 0 {
		return nil, nil
	}
	for _, m := range muts {
		if m.ProductID == "" || !m.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		if m.LocationID == "" {
			return nil, domain.ErrMissingLocation
		}
	}

	balances, err := s.lock(ctx, muts)
	if err != nil {
		return nil, err
	}

	// Fase 1: validar todo contra el saldo bloqueado.
	running := make(map[entity.BalanceKey]decimal.Decimal, len(balances))
	requested := make(map[entity.BalanceKey]decimal.Decimal, len(balances))
	for k, b := range balances {
		if b != nil {
			running[k] = b.CurrentStock
		} else {
			running[k] = decimal.Zero
		}
	}
	for _, m := range muts {
		k := m.key()
		if m.Direction == entity.DirectionIn {
			running[k] = running[k].Add(m.Quantity)
			continue
		}
		requested[k] = requested[k].Add(m.Quantity)
		running[k] = running[k].Sub(m.Quantity)
		if running[k].IsNegative() {
			available := decimal.Zero
			if b := balances[k]; b != nil {
				available = b.CurrentStock
			}
			return nil, &domain.InsufficientStockError{
				ProductID:  m.ProductID,
				LocationID: m.LocationID,
				Requested:  requested[k],
				Available:  available,
			}
		}
	}

	// Fase 2: aplicar.
	out := make([]applied, len(muts))
	for i, m := range muts {
		res, err := s.mutate(ctx, ref, balances[m.key()], m)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

// lock toma el bloqueo de fila de cada saldo una sola vez. Las filas que reciben entradas se crean
// si no existen; las que solo tienen salidas nunca se crean (la validación las rechaza).
func (s *stockKeeper) lock(ctx context.Context, muts []mutation) (map[entity.BalanceKey]*entity.Balance, error) {
	needsRow := make(map[entity.BalanceKey]bool)
	for _, m := range muts {
		k := m.key()
		needsRow[k] = needsRow[k] || m.Direction == entity.DirectionIn
	}
	keys := make([]entity.BalanceKey, 0, len(needsRow))
	for k := range needsRow {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	balances := make(map[entity.BalanceKey]*entity.Balance, len(keys))
	for _, k := range keys {
		var (
			b   *entity.Balance
			err error
		)
		if needsRow[k] {
			b, err = s.repos.Balances.GetOrCreateForUpdate(ctx, s.tenantID, k.ProductID, k.LocationID)
		} else {
			b, err = s.repos.Balances.GetForUpdate(ctx, s.tenantID, k.ProductID, k.LocationID)
		}
		if err != nil {
			return nil, err
		}
		balances[k] = b
	}
	return balances, nil
}

func (s *stockKeeper) mutate(ctx context.Context, ref ledgerRef, b *entity.Balance, m mutation) (applied, error) {
	if b == nil {
		// solo llega aquí una salida sobre una fila inexistente, ya descartada en la validación
		return applied{}, &domain.InsufficientStockError{ProductID: m.ProductID, LocationID: m.LocationID, Requested: m.Quantity, Available: decimal.Zero}
	}
	prev := b.CurrentStock
	var next, unitCost, avg decimal.Decimal
	if m.Direction == entity.DirectionIn {
		unitCost = m.UnitCost
		avg = inv.EntryAverage(prev, b.AverageCost, m.Quantity, unitCost)
		next = prev.Add(m.Quantity)
	} else if m.Reversal {
		unitCost = m.UnitCost
		avg = inv.ReverseEntryCost(prev, b.AverageCost, m.Quantity, unitCost)
		next = prev.Sub(m.Quantity)
	} else {
		unitCost = b.AverageCost
		if unitCost.IsZero() {
			unitCost = m.UnitCost
		}
		avg = b.AverageCost
		next = prev.Sub(m.Quantity)
	}
	if next.IsNegative() {
		return applied{}, &domain.InsufficientStockError{ProductID: m.ProductID, LocationID: m.LocationID, Requested: m.Quantity, Available: prev}
	}

	now := s.now
	b.CurrentStock = next
	b.AverageCost = avg
	b.LastMovementAt = &now
	b.UpdatedAt = now
	if err := s.repos.Balances.Save(ctx, b); err != nil {
		return applied{}, err
	}
	entry, err := s.appendEntry(ctx, ref, b, m.LineID, m.Direction, m.Quantity, unitCost, prev, m.BatchNumber, m.ExpiryDate)
	if err != nil {
		return applied{}, err
	}
	return applied{Previous: prev, New: next, UnitCost: unitCost, Entry: entry}, nil
}

// setAbsolute sobrescribe el saldo con la cantidad contada (solo conciliación de conteos).
// El asiento registra la diferencia como entrada o salida.
func (s *stockKeeper) setAbsolute(ctx context.Context, ref ledgerRef, productID, locationID, lineID string, qty decimal.Decimal) (applied, error) {
	if qty.IsNegative() {
		return applied{}, domain.ErrInvalidInput
	}
	b, err := s.repos.Balances.GetOrCreateForUpdate(ctx, s.tenantID, productID, locationID)
	if err != nil {
		return applied{}, err
	}
	prev := b.CurrentStock
	diff := qty.Sub(prev)
	if diff.IsZero() {
		return applied{Previous: prev, New: prev, UnitCost: b.AverageCost}, nil
	}
	dir := entity.DirectionIn
	if diff.IsNegative() {
		dir = entity.DirectionOut
	}
	now := s.now
	b.CurrentStock = qty
	b.LastMovementAt = &now
	b.UpdatedAt = now
	if err := s.repos.Balances.Save(ctx, b); err != nil {
		return applied{}, err
	}
	entry, err := s.appendEntry(ctx, ref, b, lineID, dir, diff.Abs(), b.AverageCost, prev, "", nil)
	if err != nil {
		return applied{}, err
	}
	return applied{Previous: prev, New: qty, UnitCost: b.AverageCost, Entry: entry}, nil
}

func (s *stockKeeper) appendEntry(
	ctx context.Context,
	ref ledgerRef,
	b *entity.Balance,
	lineID string,
	dir entity.LineDirection,
	qty, unitCost, prev decimal.Decimal,
	batch string, expiry *time.Time,
) (*entity.LedgerEntry, error) {
	entry := &entity.LedgerEntry{
		ID:             uuid.New().String(),
		TenantID:       s.tenantID,
		LocationID:     b.LocationID,
		ProductID:      b.ProductID,
		Source:         ref.Source,
		HeaderID:       ref.HeaderID,
		LineID:         lineID,
		Type:           ref.Type,
		Reason:         ref.Reason,
		Direction:      dir,
		Quantity:       qty,
		UnitCost:       unitCost,
		TotalCost:      qty.Mul(unitCost),
		PreviousStock:  prev,
		NewStock:       b.CurrentStock,
		AverageCost:    b.AverageCost,
		DocumentNumber: ref.DocumentNumber,
		BatchNumber:    batch,
		ExpiryDate:     expiry,
		ActorID:        s.actorID,
		CreatedAt:      s.now,
	}
	if err := s.repos.Ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// documentNumber genera un consecutivo legible si el caller no envió uno.
func documentNumber(prefix, given string, now time.Time) string {
	if strings.TrimSpace(given) != "" {
		return strings.TrimSpace(given)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), strings.ToUpper(uuid.New().String()[:8]))
}

// checkLocation verifica que la ubicación exista, esté activa y sea de la empresa.
func checkLocation(ctx context.Context, repos Repos, tenantID, locationID string) error {
	if locationID == "" {
		return domain.ErrMissingLocation
	}
	loc, err := repos.Locations.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	if loc == nil || loc.TenantID != tenantID || !loc.Active {
		return domain.NewReferential("ubicación", locationID)
	}
	return nil
}

// loadProduct verifica que el producto exista y sea de la empresa.
func loadProduct(ctx context.Context, repos Repos, tenantID, productID string) (*entity.Product, error) {
	p, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.TenantID != tenantID {
		return nil, domain.NewReferential("producto", productID)
	}
	return p, nil
}
