package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hotel-inventory/internal/application/inventory"
	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	fifo "github.com/jhoicas/hotel-inventory/internal/domain/inventory"
	"github.com/jhoicas/hotel-inventory/internal/infrastructure/memory"
	"github.com/jhoicas/hotel-inventory/pkg/logger"
)

const (
	hotelID   = int64(1)
	productID = int64(9)
)

var day1 = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memory.Store
	ledger *inventory.LedgerUseCase
	query  *inventory.QueryUseCase
	load   *inventory.InitialLoadUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(entity.Product{ID: productID, Name: "Toallas", Unit: "unidad"})
	store.AddProduct(entity.Product{ID: 10, Name: "Jabón Líquido", Unit: "litro"})
	repos := store.Repos()
	return &fixture{
		store:  store,
		ledger: inventory.NewLedgerUseCase(store, repos.Products, logger.Nop()),
		query:  inventory.NewQueryUseCase(repos.Stock, repos.Batches, repos.Consumptions, repos.Movements),
		load:   inventory.NewInitialLoadUseCase(store, repos.InitialLoads),
	}
}

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func (f *fixture) inbound(t *testing.T, q int64, receivedAt time.Time) *entity.Batch {
	t.Helper()
	res, err := f.ledger.RecordInbound(context.Background(), inventory.InboundInput{
		HotelID:    hotelID,
		ProductID:  productID,
		Quantity:   qty(q),
		ReceivedAt: &receivedAt,
		Actor:      "bodega",
	})
	require.NoError(t, err)
	return res.Batch
}

func (f *fixture) consume(q int64) (*inventory.ConsumeResult, error) {
	return f.ledger.Consume(context.Background(), inventory.ConsumeInput{
		HotelID:   hotelID,
		ProductID: productID,
		Quantity:  qty(q),
		Actor:     "cocina",
	})
}

func (f *fixture) aggregate(t *testing.T) decimal.Decimal {
	t.Helper()
	agg, err := f.query.Stock(context.Background(), hotelID, productID)
	require.NoError(t, err)
	return agg.Quantity
}

// assertConserved verifica conservación por lote y agregado == suma de saldos.
func (f *fixture) assertConserved(t *testing.T) {
	t.Helper()
	batches, err := f.query.ActiveBatches(context.Background(), hotelID, productID)
	require.NoError(t, err)
	for _, b := range batches {
		assert.True(t, b.Balanced(), "lote %d desbalanceado", b.ID)
		assert.False(t, b.Remaining.IsNegative())
	}
	assert.True(t, f.aggregate(t).Equal(fifo.SumRemaining(batches)),
		"agregado %s != libro %s", f.aggregate(t), fifo.SumRemaining(batches))
}

func TestConsume_EscenarioA(t *testing.T) {
	f := newFixture(t)
	b1 := f.inbound(t, 10, day1)
	b2 := f.inbound(t, 5, day1.AddDate(0, 0, 1))

	res, err := f.consume(12)
	require.NoError(t, err)

	require.Len(t, res.Allocations, 2)
	assert.Equal(t, b1.ID, res.Allocations[0].BatchID)
	assert.Equal(t, "10", res.Allocations[0].Quantity.String())
	assert.Equal(t, b2.ID, res.Allocations[1].BatchID)
	assert.Equal(t, "2", res.Allocations[1].Quantity.String())
	assert.NotEmpty(t, res.Reference)
	assert.Equal(t, res.Reference, res.Allocations[0].Reference)
	assert.Equal(t, res.Reference, res.Allocations[1].Reference)
	assert.Equal(t, "3", res.AggregateQty.String())
	assert.Nil(t, res.Reconciliation)

	batches, err := f.query.ActiveBatches(context.Background(), hotelID, productID)
	require.NoError(t, err)
	require.Len(t, batches, 1, "el lote 1 quedó agotado")
	assert.Equal(t, b2.ID, batches[0].ID)
	assert.Equal(t, "3", batches[0].Remaining.String())
	f.assertConserved(t)
}

func TestConsume_EscenarioB_TodoONada(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 10, day1)
	f.inbound(t, 5, day1.AddDate(0, 0, 1))
	_, err := f.consume(12)
	require.NoError(t, err)

	_, err = f.consume(100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, hotelID, short.HotelID)
	assert.Equal(t, productID, short.ProductID)
	assert.Equal(t, "100", short.Requested.String())
	assert.Equal(t, "3", short.Available.String())

	assert.Equal(t, "3", f.aggregate(t).String())
	batches, err := f.query.ActiveBatches(context.Background(), hotelID, productID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "3", batches[0].Remaining.String())

	moves, err := f.query.Movements(context.Background(), hotelID, productID, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, moves, 3, "el consumo fallido no deja movimiento")
}

func TestConsume_EscenarioC_Concurrente(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 10, day1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.consume(6)
		}(i)
	}
	wg.Wait()

	ok, short := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, "4", f.aggregate(t).String())
	f.assertConserved(t)
}

func TestConsume_ConcurrenteNuncaSuperaElStock(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 7, day1)
	f.inbound(t, 3, day1.Add(time.Hour))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.consume(1); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, success)
	assert.True(t, f.aggregate(t).IsZero())
	f.assertConserved(t)
}

func TestConsume_ConciliaDerivaPositiva(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 12, day1)
	// Un escritor heredado dejó el agregado en 20 sin crear lotes.
	f.store.ImportAggregate(hotelID, productID, qty(20))

	drift, err := f.query.Drift(context.Background(), hotelID, productID)
	require.NoError(t, err)
	assert.Equal(t, "8", drift.Gap.String())

	res, err := f.consume(15)
	require.NoError(t, err)
	require.NotNil(t, res.Reconciliation)
	assert.Equal(t, entity.SourceReconciliation, res.Reconciliation.SourceType)
	assert.Equal(t, "8", res.Reconciliation.Inbound.String())
	assert.Equal(t, "5", res.AggregateQty.String())

	// El lote correctivo es el más nuevo: se consume después del lote real.
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, "12", res.Allocations[0].Quantity.String())
	assert.Equal(t, res.Reconciliation.ID, res.Allocations[1].BatchID)
	assert.Equal(t, "3", res.Allocations[1].Quantity.String())

	moves, err := f.query.Movements(context.Background(), hotelID, productID, nil, nil, 1, 0)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, entity.DirectionOut, moves[0].Direction)
	assert.Contains(t, moves[0].Note, "conciliación: lote correctivo")
	assert.Contains(t, moves[0].Note, "por 8")

	batches, err := f.query.ActiveBatches(context.Background(), hotelID, productID)
	require.NoError(t, err)
	assert.Equal(t, "5", fifo.SumRemaining(batches).String())
	f.assertConserved(t)
}

func TestConsume_ConciliacionRevertidaSiFaltaStock(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 2, day1)
	f.store.ImportAggregate(hotelID, productID, qty(5))

	_, err := f.consume(50)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	batches, err := f.query.ActiveBatches(context.Background(), hotelID, productID)
	require.NoError(t, err)
	assert.Len(t, batches, 1, "el lote correctivo se revierte junto con el consumo")
}

func TestConsume_DerivaNegativaNoCreaLotes(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 10, day1)
	f.store.ImportAggregate(hotelID, productID, qty(3))

	res, err := f.consume(5)
	require.NoError(t, err)
	assert.Nil(t, res.Reconciliation)
	assert.True(t, res.AggregateQty.IsZero(), "el agregado nunca queda negativo")
}

func TestConsume_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 10, day1)

	_, err := f.consume(0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.ledger.Consume(context.Background(), inventory.ConsumeInput{
		HotelID: hotelID, ProductID: 404, Quantity: qty(1),
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.consume(-3)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, "10", f.aggregate(t).String())
}

func TestConsume_ReferenciaDelLlamadorYExplicacion(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 4, day1)
	f.inbound(t, 4, day1.AddDate(0, 0, 1))

	res, err := f.ledger.Consume(context.Background(), inventory.ConsumeInput{
		HotelID:       hotelID,
		ProductID:     productID,
		Quantity:      qty(6),
		OperationType: entity.OperationWaste,
		Reference:     "MERMA-2026-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "MERMA-2026-01", res.CallerReference)
	assert.NotEqual(t, "MERMA-2026-01", res.Reference, "la referencia del consumo la genera el libro")

	moves, err := f.query.Movements(context.Background(), hotelID, productID, nil, nil, 1, 0)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "MERMA-2026-01", moves[0].Reference)
	assert.Equal(t, res.Reference, moves[0].ConsumptionRef)

	lines, err := f.query.ExplainConsumption(context.Background(), hotelID, res.Reference)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, entity.OperationWaste, lines[0].Record.OperationType)
	require.NotNil(t, lines[0].Batch)
	assert.True(t, lines[0].Batch.Depleted)
	assert.Equal(t, "2", lines[1].Batch.Remaining.String())

	_, err = f.query.ExplainConsumption(context.Background(), hotelID, "MERMA-2026-01")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.query.ExplainConsumption(context.Background(), 2, res.Reference)
	assert.ErrorIs(t, err, domain.ErrNotFound, "otro hotel no ve el consumo")
	_, err = f.query.ExplainConsumption(context.Background(), hotelID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConsume_MismaReferenciaDelLlamadorNoMezclaConsumos(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 10, day1)
	ctx := context.Background()

	first, err := f.ledger.Consume(ctx, inventory.ConsumeInput{
		HotelID: hotelID, ProductID: productID, Quantity: qty(2), Reference: "pedido-77",
	})
	require.NoError(t, err)
	second, err := f.ledger.Consume(ctx, inventory.ConsumeInput{
		HotelID: hotelID, ProductID: productID, Quantity: qty(3), Reference: "pedido-77",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.Reference, second.Reference)

	lines, err := f.query.ExplainConsumption(ctx, hotelID, first.Reference)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "2", lines[0].Record.Quantity.String())

	lines, err = f.query.ExplainConsumption(ctx, hotelID, second.Reference)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "3", lines[0].Record.Quantity.String())
}

func TestConsume_RechazaMasDeCuatroDecimales(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 3, day1)
	f.inbound(t, 2, day1.AddDate(0, 0, 1))

	_, err := f.ledger.Consume(context.Background(), inventory.ConsumeInput{
		HotelID: hotelID, ProductID: productID, Quantity: decimal.RequireFromString("4.99995"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, "5", f.aggregate(t).String())

	res, err := f.ledger.Consume(context.Background(), inventory.ConsumeInput{
		HotelID: hotelID, ProductID: productID, Quantity: decimal.RequireFromString("4.9999"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.0001", res.AggregateQty.String())
	f.assertConserved(t)
}

func TestRecordInbound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.RecordInbound(ctx, inventory.InboundInput{HotelID: hotelID, ProductID: productID, Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.ledger.RecordInbound(ctx, inventory.InboundInput{HotelID: hotelID, ProductID: 404, Quantity: qty(1)})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.ledger.RecordInbound(ctx, inventory.InboundInput{
		HotelID: hotelID, ProductID: productID, Quantity: qty(1), SourceType: entity.SourceReconciliation,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "solo el guardián crea lotes correctivos")

	_, err = f.ledger.RecordInbound(ctx, inventory.InboundInput{
		HotelID: hotelID, ProductID: productID, Quantity: decimal.RequireFromString("0.00001"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	fine := decimal.RequireFromString("1.23456")
	_, err = f.ledger.RecordInbound(ctx, inventory.InboundInput{
		HotelID: hotelID, ProductID: productID, Quantity: qty(1), UnitCost: &fine,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, f.aggregate(t).IsZero())

	cost := decimal.RequireFromString("1.25")
	res, err := f.ledger.RecordInbound(ctx, inventory.InboundInput{
		HotelID: hotelID, ProductID: productID, Quantity: decimal.RequireFromString("2.5"),
		UnitCost: &cost, SourceRef: "OC-1", Actor: "bodega",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SourceSupply, res.Batch.SourceType)
	assert.Equal(t, "2.5", res.AggregateQty.String())
	assert.True(t, res.Batch.UnitCost.Equal(cost))

	moves, err := f.query.Movements(ctx, hotelID, productID, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, entity.DirectionIn, moves[0].Direction)
	assert.Equal(t, "OC-1", moves[0].Reference)
	assert.Equal(t, "bodega", moves[0].Actor)

	out, err := f.consume(2)
	require.NoError(t, err)
	assert.Equal(t, "2.5", out.CostOfGoods.String())
}

func TestQuery_BulkStock(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 6, day1)

	got, err := f.query.BulkStock(context.Background(), hotelID, []int64{productID, 10, 77})
	require.NoError(t, err)
	assert.Equal(t, "6", got[productID].String())
	assert.True(t, got[10].IsZero())
	assert.True(t, got[77].IsZero())

	empty, err := f.query.BulkStock(context.Background(), hotelID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestQuery_MovementsFiltraPorRango(t *testing.T) {
	f := newFixture(t)
	f.inbound(t, 6, day1)
	_, err := f.consume(1)
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	moves, err := f.query.Movements(context.Background(), hotelID, productID, &future, nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, moves)

	moves, err = f.query.Movements(context.Background(), hotelID, productID, nil, nil, 1, 0)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, entity.DirectionOut, moves[0].Direction, "más reciente primero")
}
