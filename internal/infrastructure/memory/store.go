// Package memory implementa el libro FIFO en memoria para despliegues de una sola instancia y tests.
// Cada transacción toma el candado del store completo y trabaja sobre una copia del estado,
// que reemplaza al estado vivo solo si la función termina sin error.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jhoicas/hotel-inventory/internal/application/inventory"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var _ inventory.TxRunner = (*Store)(nil)

type stockKey struct {
	hotelID   int64
	productID int64
}

type state struct {
	products   map[int64]entity.Product
	batches    []*entity.Batch // orden de inserción; índice = ID-1
	records    []*entity.ConsumptionRecord
	stock      map[stockKey]*entity.AggregateStock
	movements  []*entity.MovementLogEntry
	flags      map[int64]*entity.InitialLoadFlag
	nextRecord int64
	nextMove   int64
}

func newState() *state {
	return &state{
		products: make(map[int64]entity.Product),
		stock:    make(map[stockKey]*entity.AggregateStock),
		flags:    make(map[int64]*entity.InitialLoadFlag),
	}
}

// clone copia lo mutable; registros y movimientos son de solo inserción y se comparten recortados.
func (s *state) clone() *state {
	c := &state{
		products:   s.products,
		batches:    make([]*entity.Batch, len(s.batches)),
		records:    slices.Clip(s.records),
		stock:      make(map[stockKey]*entity.AggregateStock, len(s.stock)),
		movements:  slices.Clip(s.movements),
		flags:      make(map[int64]*entity.InitialLoadFlag, len(s.flags)),
		nextRecord: s.nextRecord,
		nextMove:   s.nextMove,
	}
	for i, b := range s.batches {
		cp := *b
		c.batches[i] = &cp
	}
	for k, v := range s.stock {
		cp := *v
		c.stock[k] = &cp
	}
	for k, v := range s.flags {
		cp := *v
		c.flags[k] = &cp
	}
	return c
}

// Store almacén en memoria. Implementa inventory.TxRunner.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// AddProduct registra un producto en el catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make(map[int64]entity.Product, len(s.st.products)+1)
	for k, v := range s.st.products {
		products[k] = v
	}
	products[p.ID] = p
	s.st.products = products
}

// ImportAggregate fija la cantidad agregada sin tocar los lotes, como lo hacían los escritores heredados.
// Sirve para migrar datos existentes (con su deriva) al libro.
func (s *Store) ImportAggregate(hotelID, productID int64, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := stockKey{hotelID, productID}
	row, ok := s.st.stock[k]
	if !ok {
		row = &entity.AggregateStock{HotelID: hotelID, ProductID: productID}
		s.st.stock[k] = row
	}
	row.Quantity = qty
	row.UpdatedAt = time.Now()
}

// Run ejecuta fn con repositorios sobre una copia del estado y la publica solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(reposFor(txAccess{st: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Repos devuelve repositorios fuera de transacción (cada llamada toma el candado que necesita).
func (s *Store) Repos() inventory.TxRepos {
	return reposFor(storeAccess{s: s})
}

func reposFor(a access) inventory.TxRepos {
	return inventory.TxRepos{
		Batches:      &BatchRepo{a: a},
		Consumptions: &ConsumptionRepo{a: a},
		Stock:        &StockRepo{a: a},
		Movements:    &MovementRepo{a: a},
		InitialLoads: &InitialLoadRepo{a: a},
		Products:     &ProductRepo{a: a},
	}
}

// access abstrae si el repositorio opera dentro de Run (sin candado propio) o sobre el store vivo.
type access interface {
	read(fn func(st *state))
	write(fn func(st *state))
}

type txAccess struct{ st *state }

func (t txAccess) read(fn func(st *state))  { fn(t.st) }
func (t txAccess) write(fn func(st *state)) { fn(t.st) }

type storeAccess struct{ s *Store }

func (a storeAccess) read(fn func(st *state)) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	fn(a.s.st)
}

func (a storeAccess) write(fn func(st *state)) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	fn(a.s.st)
}
