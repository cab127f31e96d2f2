package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/jhoicas/hotel-inventory/internal/domain/inventory"
)

var day1 = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

func batch(id int64, qty string, receivedAt time.Time) *entity.Batch {
	q := decimal.RequireFromString(qty)
	return &entity.Batch{
		ID:         id,
		HotelID:    1,
		ProductID:  9,
		Inbound:    q,
		Remaining:  q,
		Consumed:   decimal.Zero,
		ReceivedAt: receivedAt,
		SourceType: entity.SourceSupply,
	}
}

func TestSortOldestFirst_EmpatePorID(t *testing.T) {
	b3 := batch(3, "1", day1)
	b1 := batch(1, "1", day1)
	b2 := batch(2, "1", day1.Add(-time.Hour))
	list := []*entity.Batch{b3, b1, b2}

	inventory.SortOldestFirst(list)

	assert.Equal(t, []int64{2, 1, 3}, []int64{list[0].ID, list[1].ID, list[2].ID})
}

func TestPlanAllocation_OrdenFIFO(t *testing.T) {
	b1 := batch(1, "5", day1)
	b2 := batch(2, "5", day1.AddDate(0, 0, 1))

	plan, err := inventory.PlanAllocation([]*entity.Batch{b1, b2}, decimal.NewFromInt(7))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, int64(1), plan[0].Batch.ID)
	assert.Equal(t, "5", plan[0].Quantity.String())
	assert.Equal(t, int64(2), plan[1].Batch.ID)
	assert.Equal(t, "2", plan[1].Quantity.String())

	// El plan no modifica los lotes.
	assert.Equal(t, "5", b1.Remaining.String())
	assert.Equal(t, "5", b2.Remaining.String())
}

func TestPlanAllocation_TocaMinimoDeLotes(t *testing.T) {
	batches := []*entity.Batch{batch(1, "10", day1), batch(2, "10", day1.AddDate(0, 0, 1))}

	plan, err := inventory.PlanAllocation(batches, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, int64(1), plan[0].Batch.ID)
}

func TestPlanAllocation_IgnoraAgotados(t *testing.T) {
	gone := batch(1, "4", day1)
	gone.Remaining, gone.Consumed, gone.Depleted = decimal.Zero, decimal.NewFromInt(4), true
	live := batch(2, "3", day1.AddDate(0, 0, 1))

	plan, err := inventory.PlanAllocation([]*entity.Batch{gone, live}, decimal.NewFromInt(2))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, int64(2), plan[0].Batch.ID)
}

func TestPlanAllocation_Insuficiente(t *testing.T) {
	batches := []*entity.Batch{batch(1, "3", day1)}

	_, err := inventory.PlanAllocation(batches, decimal.NewFromInt(100))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, "3", short.Available.String())
	assert.Equal(t, "97", short.Shortfall().String())
}

func TestPlanAllocation_CantidadInvalida(t *testing.T) {
	_, err := inventory.PlanAllocation(nil, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = inventory.PlanAllocation(nil, decimal.NewFromInt(-2))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestReconciliationGap(t *testing.T) {
	batches := []*entity.Batch{batch(1, "7", day1), batch(2, "5", day1)}

	assert.Equal(t, "8", inventory.ReconciliationGap(decimal.NewFromInt(20), batches).String())
	assert.Equal(t, "-2", inventory.ReconciliationGap(decimal.NewFromInt(10), batches).String())
	assert.True(t, inventory.ReconciliationGap(decimal.NewFromInt(12), batches).IsZero())
}

func TestCostOfGoods(t *testing.T) {
	b1 := batch(1, "5", day1)
	b1.UnitCost = decimal.RequireFromString("2.10")
	b2 := batch(2, "5", day1.AddDate(0, 0, 1))
	b2.UnitCost = decimal.NewFromInt(3)

	plan, err := inventory.PlanAllocation([]*entity.Batch{b1, b2}, decimal.NewFromInt(7))
	require.NoError(t, err)

	// 5 * 2.10 + 2 * 3 = 16.5
	assert.True(t, inventory.CostOfGoods(plan).Equal(decimal.RequireFromString("16.5")))
}
