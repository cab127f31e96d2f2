package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.AggregateStockRepository = (*AggregateStockRepo)(nil)

// AggregateStockRepo vista agregada por (hotel, producto) sobre PostgreSQL.
type AggregateStockRepo struct {
	q Querier
}

// NewAggregateStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAggregateStockRepository(q Querier) *AggregateStockRepo {
	return &AggregateStockRepo{q: q}
}

// Get obtiene la fila; si no existe devuelve cantidad 0.
func (r *AggregateStockRepo) Get(ctx context.Context, hotelID, productID int64) (*entity.AggregateStock, error) {
	s, err := r.get(ctx, hotelID, productID, false)
	if err != nil {
		return nil, domain.Persistence("get aggregate stock", err)
	}
	return s, nil
}

// GetForUpdate crea la fila si falta y la bloquea (SELECT FOR UPDATE) hasta el fin de la transacción.
// Crearla primero garantiza que exista algo que bloquear aun para una clave nueva.
func (r *AggregateStockRepo) GetForUpdate(ctx context.Context, hotelID, productID int64) (*entity.AggregateStock, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO aggregate_stock (hotel_id, product_id, current_qty, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (hotel_id, product_id) DO NOTHING`, hotelID, productID)
	if err != nil {
		return nil, domain.Persistence("ensure aggregate stock", err)
	}
	s, err := r.get(ctx, hotelID, productID, true)
	if err != nil {
		return nil, domain.Persistence("lock aggregate stock", err)
	}
	return s, nil
}

func (r *AggregateStockRepo) get(ctx context.Context, hotelID, productID int64, forUpdate bool) (*entity.AggregateStock, error) {
	query := `
		SELECT hotel_id, product_id, current_qty, last_in_at, last_out_at, updated_at
		FROM aggregate_stock WHERE hotel_id = $1 AND product_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s entity.AggregateStock
	err := r.q.QueryRow(ctx, query, hotelID, productID).Scan(
		&s.HotelID, &s.ProductID, &s.Quantity, &s.LastInAt, &s.LastOutAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.AggregateStock{HotelID: hotelID, ProductID: productID, Quantity: decimal.Zero}, nil
		}
		return nil, err
	}
	return &s, nil
}

// BulkGet cantidades de varios productos en un solo viaje; los faltantes valen 0.
func (r *AggregateStockRepo) BulkGet(ctx context.Context, hotelID int64, productIDs []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal, len(productIDs))
	for _, id := range productIDs {
		out[id] = decimal.Zero
	}
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT product_id, current_qty FROM aggregate_stock
		WHERE hotel_id = $1 AND product_id = ANY($2)`, hotelID, productIDs)
	if err != nil {
		return nil, domain.Persistence("bulk get aggregate stock", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var qty decimal.Decimal
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, domain.Persistence("scan aggregate stock", err)
		}
		out[id] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("bulk get aggregate stock", err)
	}
	return out, nil
}

// Increment suma qty a la cantidad actual (crea la fila si no existe).
func (r *AggregateStockRepo) Increment(ctx context.Context, hotelID, productID int64, qty decimal.Decimal, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO aggregate_stock (hotel_id, product_id, current_qty, last_in_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (hotel_id, product_id) DO UPDATE
		SET current_qty = aggregate_stock.current_qty + EXCLUDED.current_qty,
			last_in_at = EXCLUDED.last_in_at,
			updated_at = EXCLUDED.updated_at`,
		hotelID, productID, qty, at,
	)
	if err != nil {
		return domain.Persistence("increment aggregate stock", err)
	}
	return nil
}

// Decrement resta qty con piso en cero: una deriva heredada negativa nunca deja el agregado bajo cero.
func (r *AggregateStockRepo) Decrement(ctx context.Context, hotelID, productID int64, qty decimal.Decimal, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE aggregate_stock
		SET current_qty = GREATEST(current_qty - $3, 0), last_out_at = $4, updated_at = $4
		WHERE hotel_id = $1 AND product_id = $2`,
		hotelID, productID, qty, at,
	)
	if err != nil {
		return domain.Persistence("decrement aggregate stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Persistence("decrement aggregate stock", errors.New("fila agregada inexistente"))
	}
	return nil
}
