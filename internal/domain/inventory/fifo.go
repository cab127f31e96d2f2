package inventory

import (
	"sort"

	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Allocation porción de un consumo asignada a un lote concreto.
type Allocation struct {
	Batch    *entity.Batch
	Quantity decimal.Decimal
}

// SortOldestFirst ordena lotes por ReceivedAt ascendente y, en empate, por ID (orden de inserción).
func SortOldestFirst(batches []*entity.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if !a.ReceivedAt.Equal(b.ReceivedAt) {
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
		return a.ID < b.ID
	})
}

// SumRemaining suma el saldo de los lotes no agotados.
func SumRemaining(batches []*entity.Batch) decimal.Decimal {
	total := decimal.Zero
	for _, b := range batches {
		if b.Depleted {
			continue
		}
		total = total.Add(b.Remaining)
	}
	return total
}

// ReconciliationGap devuelve aggregate - ledger. Solo un valor positivo requiere lote correctivo;
// un gap negativo (libro por delante del agregado) no se toca.
func ReconciliationGap(aggregate decimal.Decimal, batches []*entity.Batch) decimal.Decimal {
	return aggregate.Sub(SumRemaining(batches))
}

// PlanAllocation calcula qué lotes consumir para cubrir requested, del más antiguo al más nuevo,
// tocando la menor cantidad posible de lotes. No modifica los lotes.
// batches debe venir ordenado con SortOldestFirst.
func PlanAllocation(batches []*entity.Batch, requested decimal.Decimal) ([]Allocation, error) {
	if !requested.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	available := SumRemaining(batches)
	if available.LessThan(requested) {
		return nil, &domain.InsufficientStockError{Requested: requested, Available: available}
	}
	var plan []Allocation
	need := requested
	for _, b := range batches {
		if need.IsZero() {
			break
		}
		if b.Depleted || !b.Remaining.IsPositive() {
			continue
		}
		take := decimal.Min(b.Remaining, need)
		plan = append(plan, Allocation{Batch: b, Quantity: take})
		need = need.Sub(take)
	}
	return plan, nil
}

// CostOfGoods costo FIFO de un plan: suma de cantidad tomada por costo unitario del lote.
func CostOfGoods(plan []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range plan {
		total = total.Add(a.Quantity.Mul(a.Batch.UnitCost))
	}
	return total
}
