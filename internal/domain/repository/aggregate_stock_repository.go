package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AggregateStockRepository define el puerto de la vista agregada por (hotel, producto).
// Increment/Decrement solo se llaman dentro de la misma transacción que la mutación del libro.
type AggregateStockRepository interface {
	// Get devuelve la fila; si no existe devuelve cantidad 0 sin error.
	Get(ctx context.Context, hotelID, productID int64) (*entity.AggregateStock, error)
	// GetForUpdate crea la fila si falta y la bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, hotelID, productID int64) (*entity.AggregateStock, error)
	// BulkGet lee varias cantidades en un solo viaje; los productos sin fila valen 0.
	BulkGet(ctx context.Context, hotelID int64, productIDs []int64) (map[int64]decimal.Decimal, error)
	Increment(ctx context.Context, hotelID, productID int64, qty decimal.Decimal, at time.Time) error
	// Decrement nunca deja la cantidad por debajo de cero.
	Decrement(ctx context.Context, hotelID, productID int64, qty decimal.Decimal, at time.Time) error
}
