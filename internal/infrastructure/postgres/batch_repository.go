package postgres

import (
	"context"
	"errors"

	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, hotel_id, product_id, inbound_qty, remaining_qty, consumed_qty, unit_cost,
	received_at, source_type, source_ref, depleted, created_at`

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create inserta el lote; el id BIGSERIAL fija el orden de inserción usado como desempate FIFO.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO stock_batches (hotel_id, product_id, inbound_qty, remaining_qty, consumed_qty, unit_cost,
			received_at, source_type, source_ref, depleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		b.HotelID, b.ProductID, b.Inbound, b.Remaining, b.Consumed, b.UnitCost,
		b.ReceivedAt, b.SourceType, b.SourceRef, b.Depleted, b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		return domain.Persistence("insert batch", err)
	}
	return nil
}

// ListActiveOldestFirst lotes no agotados, received_at ascendente y id como desempate.
func (r *BatchRepo) ListActiveOldestFirst(ctx context.Context, hotelID, productID int64) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM stock_batches
		WHERE hotel_id = $1 AND product_id = $2 AND NOT depleted
		ORDER BY received_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, hotelID, productID)
	if err != nil {
		return nil, domain.Persistence("list active batches", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, domain.Persistence("scan batch", err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list active batches", err)
	}
	return list, nil
}

// UpdateConsumption guarda el nuevo saldo. depleted nunca vuelve a false.
func (r *BatchRepo) UpdateConsumption(ctx context.Context, b *entity.Batch) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_batches
		SET remaining_qty = $2, consumed_qty = $3, depleted = depleted OR $4
		WHERE id = $1`,
		b.ID, b.Remaining, b.Consumed, b.Depleted,
	)
	if err != nil {
		return domain.Persistence("update batch", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Persistence("update batch", errors.New("lote inexistente"))
	}
	return nil
}

// GetByIDs lee varios lotes en una consulta.
func (r *BatchRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Batch, error) {
	out := make(map[int64]*entity.Batch, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+batchColumns+` FROM stock_batches WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, domain.Persistence("get batches", err)
	}
	defer rows.Close()
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, domain.Persistence("scan batch", err)
		}
		out[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("get batches", err)
	}
	return out, nil
}

func scanBatch(s scanner) (*entity.Batch, error) {
	var b entity.Batch
	err := s.Scan(&b.ID, &b.HotelID, &b.ProductID, &b.Inbound, &b.Remaining, &b.Consumed, &b.UnitCost,
		&b.ReceivedAt, &b.SourceType, &b.SourceRef, &b.Depleted, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
