package repository

import (
	"context"

	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia del libro de lotes.
type BatchRepository interface {
	// Create persiste el lote y asigna su ID (orden de inserción).
	Create(ctx context.Context, batch *entity.Batch) error
	// ListActiveOldestFirst devuelve los lotes no agotados ordenados por received_at, id.
	ListActiveOldestFirst(ctx context.Context, hotelID, productID int64) ([]*entity.Batch, error)
	// UpdateConsumption guarda remaining, consumed y depleted del lote.
	UpdateConsumption(ctx context.Context, batch *entity.Batch) error
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Batch, error)
}
