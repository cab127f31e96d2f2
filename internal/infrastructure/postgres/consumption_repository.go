package postgres

import (
	"context"

	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
)

var _ repository.ConsumptionRepository = (*ConsumptionRepo)(nil)

// ConsumptionRepo filas de asignación por lote (solo inserción).
type ConsumptionRepo struct {
	q Querier
}

// NewConsumptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConsumptionRepository(q Querier) *ConsumptionRepo {
	return &ConsumptionRepo{q: q}
}

func (r *ConsumptionRepo) Create(ctx context.Context, rec *entity.ConsumptionRecord) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO consumption_records (batch_id, qty, op_type, reference, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		rec.BatchID, rec.Quantity, rec.OperationType, rec.Reference, rec.OccurredAt,
	).Scan(&rec.ID)
	if err != nil {
		return domain.Persistence("insert consumption record", err)
	}
	return nil
}

// ListByReference filas de un consumo lógico, en el orden en que se asignaron.
func (r *ConsumptionRepo) ListByReference(ctx context.Context, hotelID int64, reference string) ([]*entity.ConsumptionRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.id, c.batch_id, c.qty, c.op_type, c.reference, c.occurred_at
		FROM consumption_records c
		JOIN stock_batches b ON b.id = c.batch_id
		WHERE c.reference = $1 AND b.hotel_id = $2
		ORDER BY c.id`, reference, hotelID)
	if err != nil {
		return nil, domain.Persistence("list consumption records", err)
	}
	defer rows.Close()
	var list []*entity.ConsumptionRecord
	for rows.Next() {
		var c entity.ConsumptionRecord
		if err := rows.Scan(&c.ID, &c.BatchID, &c.Quantity, &c.OperationType, &c.Reference, &c.OccurredAt); err != nil {
			return nil, domain.Persistence("scan consumption record", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list consumption records", err)
	}
	return list, nil
}
