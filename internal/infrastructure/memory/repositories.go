package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

type balanceRepo struct{ st *state }

func (r *balanceRepo) Get(_ context.Context, tenantID, productID, locationID string) (*entity.Balance, error) {
	b, ok := r.st.balances[balanceKey{tenantID, productID, locationID}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *balanceRepo) GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.Balance, error) {
	return r.Get(ctx, tenantID, productID, locationID)
}

func (r *balanceRepo) GetOrCreateForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.Balance, error) {
	k := balanceKey{tenantID, productID, locationID}
	if _, ok := r.st.balances[k]; !ok {
		now := time.Now().UTC()
		r.st.balances[k] = entity.Balance{
			TenantID:     tenantID,
			ProductID:    productID,
			LocationID:   locationID,
			CurrentStock: decimal.Zero,
			MinimumStock: decimal.Zero,
			MaximumStock: decimal.Zero,
			AverageCost:  decimal.Zero,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}
	return r.Get(ctx, tenantID, productID, locationID)
}

func (r *balanceRepo) Create(_ context.Context, b *entity.Balance) error {
	k := balanceKey{b.TenantID, b.ProductID, b.LocationID}
	if _, ok := r.st.balances[k]; ok {
		return domain.ErrConflict
	}
	r.st.balances[k] = *b
	return nil
}

func (r *balanceRepo) Save(_ context.Context, b *entity.Balance) error {
	k := balanceKey{b.TenantID, b.ProductID, b.LocationID}
	if _, ok := r.st.balances[k]; !ok {
		return domain.ErrNotFound
	}
	if b.CurrentStock.IsNegative() {
		// equivalente al CHECK (current_stock >= 0) de la tabla
		return domain.ErrInsufficientStock
	}
	r.st.balances[k] = *b
	return nil
}

func (r *balanceRepo) ListByLocation(_ context.Context, tenantID, locationID string) ([]*entity.Balance, error) {
	out := make([]*entity.Balance, 0)
	for k, b := range r.st.balances {
		if k.tenantID == tenantID && k.locationID == locationID {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

type ledgerRepo struct{ st *state }

func (r *ledgerRepo) Append(_ context.Context, e *entity.LedgerEntry) error {
	r.st.ledger = append(r.st.ledger, *e)
	return nil
}

func (r *ledgerRepo) ListBySource(_ context.Context, tenantID string, source entity.LedgerSource, headerID string) ([]*entity.LedgerEntry, error) {
	out := make([]*entity.LedgerEntry, 0)
	for i := range r.st.ledger {
		e := r.st.ledger[i]
		if e.TenantID == tenantID && e.Source == source && e.HeaderID == headerID {
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *ledgerRepo) ListByProduct(_ context.Context, tenantID, productID, locationID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	matched := make([]*entity.LedgerEntry, 0)
	for i := len(r.st.ledger) - 1; i >= 0; i-- {
		e := r.st.ledger[i]
		if e.TenantID != tenantID || e.ProductID != productID {
			continue
		}
		if locationID != "" && e.LocationID != locationID {
			continue
		}
		matched = append(matched, &e)
	}
	from, to := page(len(matched), limit, offset)
	return matched[from:to], nil
}

func (r *ledgerRepo) ExistsForSource(_ context.Context, tenantID string, source entity.LedgerSource, headerID string) (bool, error) {
	for _, e := range r.st.ledger {
		if e.TenantID == tenantID && e.Source == source && e.HeaderID == headerID {
			return true, nil
		}
	}
	return false, nil
}

type movementRepo struct{ st *state }

func (r *movementRepo) Create(_ context.Context, h *entity.MovementHeader) error {
	if _, ok := r.st.movements[h.ID]; ok {
		return domain.ErrConflict
	}
	r.st.movements[h.ID] = copyHeader(*h)
	return nil
}

func (r *movementRepo) Get(_ context.Context, tenantID, id string, d entity.Discriminant) (*entity.MovementHeader, error) {
	h, ok := r.st.movements[id]
	if !ok || h.TenantID != tenantID || h.Discriminant() != d {
		return nil, nil
	}
	out := copyHeader(h)
	return &out, nil
}

func (r *movementRepo) GetForUpdate(ctx context.Context, tenantID, id string, d entity.Discriminant) (*entity.MovementHeader, error) {
	return r.Get(ctx, tenantID, id, d)
}

func (r *movementRepo) Update(_ context.Context, h *entity.MovementHeader) error {
	cur, ok := r.st.movements[h.ID]
	if !ok || cur.TenantID != h.TenantID {
		return domain.ErrNotFound
	}
	next := copyHeader(*h)
	next.Lines = cur.Lines
	next.Type, next.Reason = cur.Type, cur.Reason
	r.st.movements[h.ID] = next
	return nil
}

func (r *movementRepo) ReplaceLines(_ context.Context, headerID string, lines []entity.MovementLine) error {
	cur, ok := r.st.movements[headerID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Lines = append([]entity.MovementLine(nil), lines...)
	r.st.movements[headerID] = cur
	return nil
}

func (r *movementRepo) UpdateLineSnapshot(_ context.Context, line *entity.MovementLine) error {
	cur, ok := r.st.movements[line.HeaderID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range cur.Lines {
		if cur.Lines[i].ID == line.ID {
			cur.Lines[i].PreviousStock = line.PreviousStock
			cur.Lines[i].NewStock = line.NewStock
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *movementRepo) List(_ context.Context, tenantID string, d entity.Discriminant, status string, limit, offset int) ([]*entity.MovementHeader, error) {
	items := make([]entity.MovementHeader, 0)
	for _, h := range r.st.movements {
		if h.TenantID != tenantID || h.Discriminant() != d {
			continue
		}
		if status != "" && h.Status != status {
			continue
		}
		items = append(items, copyHeader(h))
	}
	sortByCreated(items,
		func(h entity.MovementHeader) time.Time { return h.CreatedAt },
		func(h entity.MovementHeader) string { return h.ID })
	from, to := page(len(items), limit, offset)
	out := make([]*entity.MovementHeader, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, &items[i])
	}
	return out, nil
}

func (r *movementRepo) Delete(_ context.Context, tenantID, id string) error {
	h, ok := r.st.movements[id]
	if !ok || h.TenantID != tenantID {
		return domain.ErrNotFound
	}
	delete(r.st.movements, id)
	return nil
}

type transferRepo struct{ st *state }

func (r *transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	if _, ok := r.st.transfers[t.ID]; ok {
		return domain.ErrConflict
	}
	r.st.transfers[t.ID] = copyTransfer(*t)
	return nil
}

func (r *transferRepo) Get(_ context.Context, tenantID, id string) (*entity.Transfer, error) {
	t, ok := r.st.transfers[id]
	if !ok || t.TenantID != tenantID {
		return nil, nil
	}
	out := copyTransfer(t)
	return &out, nil
}

func (r *transferRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	return r.Get(ctx, tenantID, id)
}

func (r *transferRepo) Update(_ context.Context, t *entity.Transfer) error {
	cur, ok := r.st.transfers[t.ID]
	if !ok || cur.TenantID != t.TenantID {
		return domain.ErrNotFound
	}
	r.st.transfers[t.ID] = copyTransfer(*t)
	return nil
}

func (r *transferRepo) List(_ context.Context, tenantID string, status entity.TransferStatus, limit, offset int) ([]*entity.Transfer, error) {
	items := make([]entity.Transfer, 0)
	for _, t := range r.st.transfers {
		if t.TenantID != tenantID || (status != "" && t.Status != status) {
			continue
		}
		items = append(items, copyTransfer(t))
	}
	sortByCreated(items,
		func(t entity.Transfer) time.Time { return t.CreatedAt },
		func(t entity.Transfer) string { return t.ID })
	from, to := page(len(items), limit, offset)
	out := make([]*entity.Transfer, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, &items[i])
	}
	return out, nil
}

func (r *transferRepo) Delete(_ context.Context, tenantID, id string) error {
	t, ok := r.st.transfers[id]
	if !ok || t.TenantID != tenantID {
		return domain.ErrNotFound
	}
	delete(r.st.transfers, id)
	return nil
}

type countRepo struct{ st *state }

func (r *countRepo) Create(_ context.Context, c *entity.Count) error {
	if _, ok := r.st.counts[c.ID]; ok {
		return domain.ErrConflict
	}
	r.st.counts[c.ID] = copyCount(*c)
	return nil
}

func (r *countRepo) Get(_ context.Context, tenantID, id string) (*entity.Count, error) {
	c, ok := r.st.counts[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	out := copyCount(c)
	return &out, nil
}

func (r *countRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Count, error) {
	return r.Get(ctx, tenantID, id)
}

func (r *countRepo) Update(_ context.Context, c *entity.Count) error {
	cur, ok := r.st.counts[c.ID]
	if !ok || cur.TenantID != c.TenantID {
		return domain.ErrNotFound
	}
	next := copyCount(*c)
	next.Lines = cur.Lines
	r.st.counts[c.ID] = next
	return nil
}

func (r *countRepo) SaveLine(_ context.Context, line *entity.CountLine) error {
	cur, ok := r.st.counts[line.CountID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range cur.Lines {
		if cur.Lines[i].ID == line.ID {
			cur.Lines[i] = *line
			return nil
		}
	}
	cur.Lines = append(cur.Lines, *line)
	r.st.counts[line.CountID] = cur
	return nil
}

func (r *countRepo) List(_ context.Context, tenantID string, status entity.CountStatus, limit, offset int) ([]*entity.Count, error) {
	items := make([]entity.Count, 0)
	for _, c := range r.st.counts {
		if c.TenantID != tenantID || (status != "" && c.Status != status) {
			continue
		}
		items = append(items, copyCount(c))
	}
	sortByCreated(items,
		func(c entity.Count) time.Time { return c.CreatedAt },
		func(c entity.Count) string { return c.ID })
	from, to := page(len(items), limit, offset)
	out := make([]*entity.Count, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, &items[i])
	}
	return out, nil
}

func (r *countRepo) Delete(_ context.Context, tenantID, id string) error {
	c, ok := r.st.counts[id]
	if !ok || c.TenantID != tenantID {
		return domain.ErrNotFound
	}
	delete(r.st.counts, id)
	return nil
}

type productRepo struct{ st *state }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) ListIngredients(_ context.Context, productID string) ([]entity.ProductIngredient, error) {
	return append([]entity.ProductIngredient(nil), r.st.ingredients[productID]...), nil
}

type locationRepo struct{ st *state }

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	l, ok := r.st.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}
