package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
)

// MovementRepository puerto del log de movimientos (solo inserción y lectura).
type MovementRepository interface {
	Create(ctx context.Context, entry *entity.MovementLogEntry) error
	ListByProduct(ctx context.Context, hotelID, productID int64, from, to *time.Time, limit, offset int) ([]*entity.MovementLogEntry, error)
}
