package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	fifo "github.com/jhoicas/hotel-inventory/internal/domain/inventory"
	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// QueryUseCase lecturas del libro para colaboradores de solo lectura (reportes, alertas, pronóstico).
// Ninguna operación de este caso de uso modifica el libro.
type QueryUseCase struct {
	stock        repository.AggregateStockRepository
	batches      repository.BatchRepository
	consumptions repository.ConsumptionRepository
	movements    repository.MovementRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	stock repository.AggregateStockRepository,
	batches repository.BatchRepository,
	consumptions repository.ConsumptionRepository,
	movements repository.MovementRepository,
) *QueryUseCase {
	return &QueryUseCase{stock: stock, batches: batches, consumptions: consumptions, movements: movements}
}

// Stock cantidad actual; 0 si el par (hotel, producto) nunca tuvo movimiento.
func (uc *QueryUseCase) Stock(ctx context.Context, hotelID, productID int64) (*entity.AggregateStock, error) {
	return uc.stock.Get(ctx, hotelID, productID)
}

// BulkStock cantidades de varios productos en una sola consulta.
func (uc *QueryUseCase) BulkStock(ctx context.Context, hotelID int64, productIDs []int64) (map[int64]decimal.Decimal, error) {
	if len(productIDs) == 0 {
		return map[int64]decimal.Decimal{}, nil
	}
	return uc.stock.BulkGet(ctx, hotelID, productIDs)
}

// ActiveBatches lotes con saldo, del más antiguo al más nuevo.
func (uc *QueryUseCase) ActiveBatches(ctx context.Context, hotelID, productID int64) ([]*entity.Batch, error) {
	return uc.batches.ListActiveOldestFirst(ctx, hotelID, productID)
}

// AllocationLine una fila de consumo con el lote del que salió.
type AllocationLine struct {
	Record *entity.ConsumptionRecord
	Batch  *entity.Batch
}

// ExplainConsumption devuelve todas las filas que comparten reference, con su lote.
func (uc *QueryUseCase) ExplainConsumption(ctx context.Context, hotelID int64, reference string) ([]AllocationLine, error) {
	if reference == "" {
		return nil, domain.ErrInvalidInput
	}
	records, err := uc.consumptions.ListByReference(ctx, hotelID, reference)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.BatchID)
	}
	batches, err := uc.batches.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	lines := make([]AllocationLine, 0, len(records))
	for _, r := range records {
		lines = append(lines, AllocationLine{Record: r, Batch: batches[r.BatchID]})
	}
	return lines, nil
}

// Movements historial de movimientos de un producto, más reciente primero.
func (uc *QueryUseCase) Movements(ctx context.Context, hotelID, productID int64, from, to *time.Time, limit, offset int) ([]*entity.MovementLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movements.ListByProduct(ctx, hotelID, productID, from, to, limit, offset)
}

// DriftReport comparación entre el agregado y el libro de lotes.
type DriftReport struct {
	HotelID      int64
	ProductID    int64
	AggregateQty decimal.Decimal
	LedgerQty    decimal.Decimal
	Gap          decimal.Decimal // agregado - libro
}

// Drift calcula la deriva actual sin corregirla. Solo el consumo aplica la conciliación.
func (uc *QueryUseCase) Drift(ctx context.Context, hotelID, productID int64) (*DriftReport, error) {
	agg, err := uc.stock.Get(ctx, hotelID, productID)
	if err != nil {
		return nil, err
	}
	batches, err := uc.batches.ListActiveOldestFirst(ctx, hotelID, productID)
	if err != nil {
		return nil, err
	}
	return &DriftReport{
		HotelID:      hotelID,
		ProductID:    productID,
		AggregateQty: agg.Quantity,
		LedgerQty:    fifo.SumRemaining(batches),
		Gap:          fifo.ReconciliationGap(agg.Quantity, batches),
	}, nil
}
