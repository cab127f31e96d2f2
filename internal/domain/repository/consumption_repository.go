package repository

import (
	"context"

	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
)

// ConsumptionRepository persiste las filas de asignación por lote (inmutables).
type ConsumptionRepository interface {
	Create(ctx context.Context, record *entity.ConsumptionRecord) error
	ListByReference(ctx context.Context, hotelID int64, reference string) ([]*entity.ConsumptionRecord, error)
}
