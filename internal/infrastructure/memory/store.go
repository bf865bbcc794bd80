// Package memory implementa los repositorios de inventario en memoria con semántica transaccional.
// Cada Run trabaja sobre una copia del estado y la publica solo si fn no devuelve error.
// Las transacciones se serializan con un mutex, equivalente a tener todas las filas bloqueadas.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

type balanceKey struct {
	tenantID   string
	productID  string
	locationID string
}

type state struct {
	products    map[string]entity.Product
	ingredients map[string][]entity.ProductIngredient
	locations   map[string]entity.Location
	balances    map[balanceKey]entity.Balance
	ledger      []entity.LedgerEntry
	movements   map[string]entity.MovementHeader
	transfers   map[string]entity.Transfer
	counts      map[string]entity.Count
}

func newState() *state {
	return &state{
		products:    make(map[string]entity.Product),
		ingredients: make(map[string][]entity.ProductIngredient),
		locations:   make(map[string]entity.Location),
		balances:    make(map[balanceKey]entity.Balance),
		movements:   make(map[string]entity.MovementHeader),
		transfers:   make(map[string]entity.Transfer),
		counts:      make(map[string]entity.Count),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.ingredients {
		c.ingredients[k] = append([]entity.ProductIngredient(nil), v...)
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	c.ledger = append([]entity.LedgerEntry(nil), s.ledger...)
	for k, v := range s.movements {
		c.movements[k] = copyHeader(v)
	}
	for k, v := range s.transfers {
		c.transfers[k] = copyTransfer(v)
	}
	for k, v := range s.counts {
		c.counts[k] = copyCount(v)
	}
	return c
}

// Store almacén en memoria; implementa inventory.TxRunner.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn sobre una copia del estado y la confirma si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.data.clone()
	if err := fn(ctx, reposFor(tx)); err != nil {
		return err
	}
	s.data = tx
	return nil
}

func reposFor(st *state) inventory.Repos {
	return inventory.Repos{
		Balances:  &balanceRepo{st: st},
		Ledger:    &ledgerRepo{st: st},
		Movements: &movementRepo{st: st},
		Transfers: &transferRepo{st: st},
		Counts:    &countRepo{st: st},
		Products:  &productRepo{st: st},
		Locations: &locationRepo{st: st},
	}
}

// AddProduct registra un producto del catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

// AddIngredient agrega una línea a la receta de un producto fabricado.
func (s *Store) AddIngredient(ing entity.ProductIngredient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ingredients[ing.ProductID] = append(s.data.ingredients[ing.ProductID], ing)
}

// AddLocation registra una ubicación.
func (s *Store) AddLocation(l entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.locations[l.ID] = l
}

// SetBalance fija un saldo sin asiento de kardex (carga inicial de datos).
func (s *Store) SetBalance(tenantID, productID, locationID string, stock, avgCost decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.data.balances[balanceKey{tenantID, productID, locationID}] = entity.Balance{
		TenantID:     tenantID,
		ProductID:    productID,
		LocationID:   locationID,
		CurrentStock: stock,
		MinimumStock: decimal.Zero,
		MaximumStock: decimal.Zero,
		AverageCost:  avgCost,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Ledger devuelve una copia de todos los asientos en orden de inserción.
func (s *Store) Ledger() []entity.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.LedgerEntry(nil), s.data.ledger...)
}

func copyHeader(h entity.MovementHeader) entity.MovementHeader {
	h.Lines = append([]entity.MovementLine(nil), h.Lines...)
	h.Metadata = copyMetadata(h.Metadata)
	if h.OriginLocationID != nil {
		v := *h.OriginLocationID
		h.OriginLocationID = &v
	}
	if h.DestinationLocationID != nil {
		v := *h.DestinationLocationID
		h.DestinationLocationID = &v
	}
	return h
}

func copyMetadata(m entity.MovementMetadata) entity.MovementMetadata {
	if m.Sale != nil {
		v := *m.Sale
		m.Sale = &v
	}
	if m.Purchase != nil {
		v := *m.Purchase
		m.Purchase = &v
	}
	if m.Adjustment != nil {
		v := *m.Adjustment
		m.Adjustment = &v
	}
	if m.Usage != nil {
		v := *m.Usage
		m.Usage = &v
	}
	if m.Production != nil {
		v := *m.Production
		m.Production = &v
	}
	return m
}

func copyTransfer(t entity.Transfer) entity.Transfer {
	t.Lines = append([]entity.TransferLine(nil), t.Lines...)
	if t.Evidence != nil {
		v := *t.Evidence
		t.Evidence = &v
	}
	return t
}

func copyCount(c entity.Count) entity.Count {
	c.Lines = append([]entity.CountLine(nil), c.Lines...)
	return c
}

// page aplica limit/offset sobre n elementos; limit <= 0 significa sin límite.
func page(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

func sortByCreated[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) < id(items[j])
	})
}
