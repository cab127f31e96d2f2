package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	fifo "github.com/jhoicas/hotel-inventory/internal/domain/inventory"
	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.BatchRepository          = (*BatchRepo)(nil)
	_ repository.ConsumptionRepository    = (*ConsumptionRepo)(nil)
	_ repository.AggregateStockRepository = (*StockRepo)(nil)
	_ repository.MovementRepository       = (*MovementRepo)(nil)
	_ repository.InitialLoadRepository    = (*InitialLoadRepo)(nil)
	_ repository.ProductRepository        = (*ProductRepo)(nil)
)

// BatchRepo lotes en memoria. Devuelve siempre copias.
type BatchRepo struct{ a access }

func (r *BatchRepo) Create(_ context.Context, batch *entity.Batch) error {
	r.a.write(func(st *state) {
		batch.ID = int64(len(st.batches) + 1)
		cp := *batch
		st.batches = append(st.batches, &cp)
	})
	return nil
}

func (r *BatchRepo) ListActiveOldestFirst(_ context.Context, hotelID, productID int64) ([]*entity.Batch, error) {
	var list []*entity.Batch
	r.a.read(func(st *state) {
		for _, b := range st.batches {
			if b.HotelID == hotelID && b.ProductID == productID && !b.Depleted {
				cp := *b
				list = append(list, &cp)
			}
		}
	})
	fifo.SortOldestFirst(list)
	return list, nil
}

func (r *BatchRepo) UpdateConsumption(_ context.Context, batch *entity.Batch) error {
	var found bool
	r.a.write(func(st *state) {
		idx := batch.ID - 1
		if idx < 0 || idx >= int64(len(st.batches)) {
			return
		}
		b := st.batches[idx]
		b.Remaining = batch.Remaining
		b.Consumed = batch.Consumed
		b.Depleted = b.Depleted || batch.Depleted
		found = true
	})
	if !found {
		return errBatchNotFound
	}
	return nil
}

func (r *BatchRepo) GetByIDs(_ context.Context, ids []int64) (map[int64]*entity.Batch, error) {
	out := make(map[int64]*entity.Batch, len(ids))
	r.a.read(func(st *state) {
		for _, id := range ids {
			if id < 1 || id > int64(len(st.batches)) {
				continue
			}
			cp := *st.batches[id-1]
			out[id] = &cp
		}
	})
	return out, nil
}

// ConsumptionRepo filas de asignación en memoria.
type ConsumptionRepo struct{ a access }

func (r *ConsumptionRepo) Create(_ context.Context, record *entity.ConsumptionRecord) error {
	r.a.write(func(st *state) {
		st.nextRecord++
		record.ID = st.nextRecord
		cp := *record
		st.records = append(st.records, &cp)
	})
	return nil
}

func (r *ConsumptionRepo) ListByReference(_ context.Context, hotelID int64, reference string) ([]*entity.ConsumptionRecord, error) {
	var list []*entity.ConsumptionRecord
	r.a.read(func(st *state) {
		for _, rec := range st.records {
			if rec.Reference != reference {
				continue
			}
			if b := st.batches[rec.BatchID-1]; b.HotelID != hotelID {
				continue
			}
			cp := *rec
			list = append(list, &cp)
		}
	})
	return list, nil
}

// StockRepo vista agregada en memoria.
type StockRepo struct{ a access }

func (r *StockRepo) Get(_ context.Context, hotelID, productID int64) (*entity.AggregateStock, error) {
	out := &entity.AggregateStock{HotelID: hotelID, ProductID: productID, Quantity: decimal.Zero}
	r.a.read(func(st *state) {
		if row, ok := st.stock[stockKey{hotelID, productID}]; ok {
			*out = *row
		}
	})
	return out, nil
}

// GetForUpdate en memoria equivale a Get más la creación de la fila: el candado lo da Store.Run.
func (r *StockRepo) GetForUpdate(_ context.Context, hotelID, productID int64) (*entity.AggregateStock, error) {
	var out entity.AggregateStock
	r.a.write(func(st *state) {
		out = *st.row(hotelID, productID)
	})
	return &out, nil
}

func (r *StockRepo) BulkGet(_ context.Context, hotelID int64, productIDs []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal, len(productIDs))
	r.a.read(func(st *state) {
		for _, id := range productIDs {
			if row, ok := st.stock[stockKey{hotelID, id}]; ok {
				out[id] = row.Quantity
			} else {
				out[id] = decimal.Zero
			}
		}
	})
	return out, nil
}

func (r *StockRepo) Increment(_ context.Context, hotelID, productID int64, qty decimal.Decimal, at time.Time) error {
	r.a.write(func(st *state) {
		row := st.row(hotelID, productID)
		row.Quantity = row.Quantity.Add(qty)
		t := at
		row.LastInAt = &t
		row.UpdatedAt = at
	})
	return nil
}

func (r *StockRepo) Decrement(_ context.Context, hotelID, productID int64, qty decimal.Decimal, at time.Time) error {
	r.a.write(func(st *state) {
		row := st.row(hotelID, productID)
		row.Quantity = decimal.Max(row.Quantity.Sub(qty), decimal.Zero)
		t := at
		row.LastOutAt = &t
		row.UpdatedAt = at
	})
	return nil
}

func (st *state) row(hotelID, productID int64) *entity.AggregateStock {
	k := stockKey{hotelID, productID}
	row, ok := st.stock[k]
	if !ok {
		row = &entity.AggregateStock{HotelID: hotelID, ProductID: productID, Quantity: decimal.Zero, UpdatedAt: time.Now()}
		st.stock[k] = row
	}
	return row
}

// MovementRepo log de movimientos en memoria.
type MovementRepo struct{ a access }

func (r *MovementRepo) Create(_ context.Context, entry *entity.MovementLogEntry) error {
	r.a.write(func(st *state) {
		st.nextMove++
		entry.ID = st.nextMove
		cp := *entry
		st.movements = append(st.movements, &cp)
	})
	return nil
}

func (r *MovementRepo) ListByProduct(_ context.Context, hotelID, productID int64, from, to *time.Time, limit, offset int) ([]*entity.MovementLogEntry, error) {
	var list []*entity.MovementLogEntry
	r.a.read(func(st *state) {
		for _, m := range st.movements {
			if m.HotelID != hotelID || m.ProductID != productID {
				continue
			}
			if from != nil && m.OccurredAt.Before(*from) {
				continue
			}
			if to != nil && m.OccurredAt.After(*to) {
				continue
			}
			cp := *m
			list = append(list, &cp)
		}
	})
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].OccurredAt.Equal(list[j].OccurredAt) {
			return list[i].OccurredAt.After(list[j].OccurredAt)
		}
		return list[i].ID > list[j].ID
	})
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// InitialLoadRepo marcas de carga inicial en memoria.
type InitialLoadRepo struct{ a access }

func (r *InitialLoadRepo) Get(_ context.Context, hotelID int64) (*entity.InitialLoadFlag, error) {
	out := &entity.InitialLoadFlag{HotelID: hotelID}
	r.a.read(func(st *state) {
		if f, ok := st.flags[hotelID]; ok {
			*out = *f
		}
	})
	return out, nil
}

func (r *InitialLoadRepo) TryMarkLoaded(_ context.Context, hotelID int64, by string, at time.Time) (bool, error) {
	var ok bool
	r.a.write(func(st *state) {
		if f, exists := st.flags[hotelID]; exists && f.Loaded {
			return
		}
		t := at
		st.flags[hotelID] = &entity.InitialLoadFlag{HotelID: hotelID, Loaded: true, LoadedAt: &t, LoadedBy: by}
		ok = true
	})
	return ok, nil
}

// ProductRepo catálogo en memoria.
type ProductRepo struct{ a access }

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	r.a.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

// GetByName coincidencia exacta sin distinguir mayúsculas, con la misma regla que lower() en PostgreSQL.
// Ante nombres repetidos gana el ID menor.
func (r *ProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	want := entity.ProductNameKey(name)
	if want == "" {
		return nil, nil
	}
	var out *entity.Product
	r.a.read(func(st *state) {
		for _, p := range st.products {
			if entity.ProductNameKey(p.Name) != want {
				continue
			}
			if out == nil || p.ID < out.ID {
				cp := p
				out = &cp
			}
		}
	})
	return out, nil
}
