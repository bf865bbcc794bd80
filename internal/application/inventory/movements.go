package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

// LineInput línea de producto recibida desde la capa externa.
// En ventas UnitCost es el precio unitario; TotalCost permite sobrescribir cantidad × costo.
type LineInput struct {
	ProductID   string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	TotalCost   *decimal.Decimal
	BatchNumber string
	ExpiryDate  *time.Time
	Notes       string
}

// buildLines valida las líneas (cantidad > 0, costo >= 0, producto de la empresa) y las convierte.
func buildLines(ctx context.Context, repos Repos, tenantID string, dir entity.LineDirection, in []LineInput) ([]entity.MovementLine, error) {
	if len(in) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines := make([]entity.MovementLine, 0, len(in))
	for _, li := range in {
		if li.ProductID == "" || !li.Quantity.IsPositive() || li.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if _, err := loadProduct(ctx, repos, tenantID, li.ProductID); err != nil {
			return nil, err
		}
		line := entity.NewMovementLine(li.ProductID, dir, li.Quantity, li.UnitCost)
		line.ID = uuid.New().String()
		if li.TotalCost != nil {
			if li.TotalCost.IsNegative() {
				return nil, domain.ErrInvalidInput
			}
			line.TotalCost = *li.TotalCost
		}
		line.BatchNumber = li.BatchNumber
		line.ExpiryDate = li.ExpiryDate
		line.Notes = li.Notes
		lines = append(lines, line)
	}
	return lines, nil
}

// linesToMutations convierte las líneas del encabezado en mutaciones sobre locationID.
// invert=true invierte el sentido de cada línea (reversa de una aplicación previa).
func linesToMutations(lines []entity.MovementLine, locationID string, invert bool) []mutation {
	muts := make([]mutation, 0, len(lines))
	for _, l := range lines {
		dir := l.Direction
		if invert {
			dir = flip(dir)
		}
		muts = append(muts, mutation{
			ProductID:   l.ProductID,
			LocationID:  locationID,
			Direction:   dir,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			LineID:      l.ID,
			BatchNumber: l.BatchNumber,
			ExpiryDate:  l.ExpiryDate,
		})
	}
	return muts
}

func flip(dir entity.LineDirection) entity.LineDirection {
	if dir == entity.DirectionIn {
		return entity.DirectionOut
	}
	return entity.DirectionIn
}

// saveSnapshots guarda en cada línea el stock anterior y nuevo de su mutación.
func saveSnapshots(ctx context.Context, repos Repos, lines []entity.MovementLine, res []applied) error {
	for i := range lines {
		if i >= len(res) {
			break
		}
		prev, next := res[i].Previous, res[i].New
		lines[i].PreviousStock = &prev
		lines[i].NewStock = &next
		if err := repos.Movements.UpdateLineSnapshot(ctx, &lines[i]); err != nil {
			return err
		}
	}
	return nil
}

// reverseFromLedger deshace lo que sigue vigente de los asientos de ref: por cada línea y saldo
// se neta lo ya aplicado y revertido, y el saldo neto vuelve con el costo del último asiento en
// ese sentido. Así el costo promedio regresa al valor previo y una compra recibida varias veces
// solo revierte la última recepción.
func reverseFromLedger(ctx context.Context, repos Repos, keeper *stockKeeper, ref ledgerRef) ([]applied, error) {
	entries, err := repos.Ledger.ListBySource(ctx, keeper.tenantID, ref.Source, ref.HeaderID)
	if err != nil {
		return nil, err
	}
	type openEntry struct {
		net  decimal.Decimal // entradas positivas, salidas negativas
		last map[entity.LineDirection]*entity.LedgerEntry
	}
	type entryKey struct {
		lineID string
		key    entity.BalanceKey
	}
	var order []entryKey
	open := make(map[entryKey]*openEntry)
	for _, e := range entries {
		k := entryKey{lineID: e.LineID, key: entity.BalanceKey{ProductID: e.ProductID, LocationID: e.LocationID}}
		o := open[k]
		if o == nil {
			o = &openEntry{last: make(map[entity.LineDirection]*entity.LedgerEntry, 2)}
			open[k] = o
			order = append(order, k)
		}
		if e.Direction == entity.DirectionIn {
			o.net = o.net.Add(e.Quantity)
		} else {
			o.net = o.net.Sub(e.Quantity)
		}
		o.last[e.Direction] = e
	}

	muts := make([]mutation, 0, len(order))
	for _, k := range order {
		o := open[k]
		if o.net.IsZero() {
			continue
		}
		dir := entity.DirectionIn
		if o.net.IsNegative() {
			dir = entity.DirectionOut
		}
		src := o.last[dir]
		muts = append(muts, mutation{
			ProductID:   src.ProductID,
			LocationID:  src.LocationID,
			Direction:   flip(dir),
			Quantity:    o.net.Abs(),
			UnitCost:    src.UnitCost,
			LineID:      src.LineID,
			BatchNumber: src.BatchNumber,
			ExpiryDate:  src.ExpiryDate,
			Reversal:    true,
		})
	}
	return keeper.apply(ctx, ref, muts)
}

// movementRef referencia de kardex para un encabezado genérico.
func movementRef(h *entity.MovementHeader) ledgerRef {
	return ledgerRef{
		Source:         entity.SourceMovement,
		HeaderID:       h.ID,
		Type:           h.Type,
		Reason:         h.Reason,
		DocumentNumber: h.DocumentNumber,
	}
}

// findForUpdate carga el encabezado del proceso bloqueando su fila; ErrNotFound si no existe.
func findForUpdate(ctx context.Context, pm repository.ProcessMovements, tenantID, id string) (*entity.MovementHeader, error) {
	h, err := pm.FindForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, domain.ErrNotFound
	}
	return h, nil
}

// deleteMovement borra un encabezado solo si nunca afectó stock.
// Ajustes, consumos y producciones nunca se borran: siempre tienen asientos.
func deleteMovement(ctx context.Context, repos Repos, actor Actor, pm repository.ProcessMovements, id string) error {
	h, err := findForUpdate(ctx, pm, actor.TenantID, id)
	if err != nil {
		return err
	}
	switch h.Process() {
	case entity.ProcessAdjustment, entity.ProcessUsage, entity.ProcessProduction:
		return domain.ErrDeleteForbidden
	}
	touched, err := repos.Ledger.ExistsForSource(ctx, actor.TenantID, entity.SourceMovement, h.ID)
	if err != nil {
		return err
	}
	if touched || h.Status == entity.SaleClosed || h.Status == entity.PurchaseReceived {
		return domain.ErrDeleteForbidden
	}
	return repos.Movements.Delete(ctx, actor.TenantID, h.ID)
}

// MovementQueryUseCase lecturas de encabezados genéricos, saldos y kardex.
type MovementQueryUseCase struct {
	txRunner TxRunner
}

// NewMovementQueryUseCase construye el caso de uso de consultas.
func NewMovementQueryUseCase(txRunner TxRunner) *MovementQueryUseCase {
	return &MovementQueryUseCase{txRunner: txRunner}
}

// Get devuelve el encabezado del proceso indicado.
func (uc *MovementQueryUseCase) Get(ctx context.Context, actor Actor, process entity.Process, id string) (*entity.MovementHeader, error) {
	var out *entity.MovementHeader
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		h, err := repository.ForProcess(repos.Movements, process).Find(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if h == nil {
			return domain.ErrNotFound
		}
		out = h
		return nil
	})
	return out, err
}

// List lista encabezados de un proceso, opcionalmente filtrados por estado.
func (uc *MovementQueryUseCase) List(ctx context.Context, actor Actor, process entity.Process, status string, limit, offset int) ([]*entity.MovementHeader, error) {
	var out []*entity.MovementHeader
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		out, err = repository.ForProcess(repos.Movements, process).List(ctx, actor.TenantID, status, limit, offset)
		return err
	})
	return out, err
}

// Delete borra un encabezado que nunca afectó stock.
func (uc *MovementQueryUseCase) Delete(ctx context.Context, actor Actor, process entity.Process, id string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		return deleteMovement(ctx, repos, actor, repository.ForProcess(repos.Movements, process), id)
	})
}

// GetBalance devuelve el saldo de un producto en una ubicación; ErrNotFound si nunca se inicializó.
func (uc *MovementQueryUseCase) GetBalance(ctx context.Context, actor Actor, productID, locationID string) (*entity.Balance, error) {
	var out *entity.Balance
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		b, err := repos.Balances.Get(ctx, actor.TenantID, productID, locationID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		out = b
		return nil
	})
	return out, err
}

// InitBalanceInput inicialización explícita de un saldo (stock inicial, mínimos y máximos).
type InitBalanceInput struct {
	ProductID    string
	LocationID   string
	MinimumStock decimal.Decimal
	MaximumStock decimal.Decimal
}

// InitBalance crea el saldo en cero; el stock inicial entra luego por un ajuste para dejar asiento.
func (uc *MovementQueryUseCase) InitBalance(ctx context.Context, actor Actor, in InitBalanceInput) (*entity.Balance, error) {
	if !actor.valid() || in.ProductID == "" || in.MinimumStock.IsNegative() || in.MaximumStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if !in.MaximumStock.IsZero() && in.MaximumStock.LessThan(in.MinimumStock) {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Balance
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		if err := checkLocation(ctx, repos, actor.TenantID, in.LocationID); err != nil {
			return err
		}
		if _, err := loadProduct(ctx, repos, actor.TenantID, in.ProductID); err != nil {
			return err
		}
		now := time.Now().UTC()
		b := &entity.Balance{
			TenantID:     actor.TenantID,
			ProductID:    in.ProductID,
			LocationID:   in.LocationID,
			CurrentStock: decimal.Zero,
			MinimumStock: in.MinimumStock,
			MaximumStock: in.MaximumStock,
			AverageCost:  decimal.Zero,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repos.Balances.Create(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// Kardex lista los asientos de un producto en una ubicación, más recientes primero.
func (uc *MovementQueryUseCase) Kardex(ctx context.Context, actor Actor, productID, locationID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		out, err = repos.Ledger.ListByProduct(ctx, actor.TenantID, productID, locationID, limit, offset)
		return err
	})
	return out, err
}
