package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo log de movimientos sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por trigger.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create agrega una entrada al log.
func (r *MovementRepo) Create(ctx context.Context, m *entity.MovementLogEntry) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO movement_log (hotel_id, product_id, direction, qty, op_type, actor, reference, consumption_ref, note, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		m.HotelID, m.ProductID, m.Direction, m.Quantity, m.OperationType,
		m.Actor, m.Reference, m.ConsumptionRef, m.Note, m.OccurredAt,
	).Scan(&m.ID)
	if err != nil {
		return domain.Persistence("insert movement", err)
	}
	return nil
}

// ListByProduct lista movimientos de un producto en un rango de fechas, más reciente primero.
func (r *MovementRepo) ListByProduct(ctx context.Context, hotelID, productID int64, from, to *time.Time, limit, offset int) ([]*entity.MovementLogEntry, error) {
	query := `
		SELECT id, hotel_id, product_id, direction, qty, op_type, actor, reference, consumption_ref, note, occurred_at
		FROM movement_log WHERE hotel_id = $1 AND product_id = $2`
	args := []any{hotelID, productID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Persistence("list movements", err)
	}
	defer rows.Close()
	var list []*entity.MovementLogEntry
	for rows.Next() {
		var m entity.MovementLogEntry
		if err := rows.Scan(&m.ID, &m.HotelID, &m.ProductID, &m.Direction, &m.Quantity, &m.OperationType,
			&m.Actor, &m.Reference, &m.ConsumptionRef, &m.Note, &m.OccurredAt); err != nil {
			return nil, domain.Persistence("scan movement", err)
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list movements", err)
	}
	return list, nil
}
