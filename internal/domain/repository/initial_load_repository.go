package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
)

// InitialLoadRepository puerto de la marca de carga inicial por hotel.
type InitialLoadRepository interface {
	// Get devuelve la marca; si no existe devuelve Loaded=false.
	Get(ctx context.Context, hotelID int64) (*entity.InitialLoadFlag, error)
	// TryMarkLoaded compare-and-set loaded=false -> true. Devuelve false si ya estaba cargado.
	TryMarkLoaded(ctx context.Context, hotelID int64, by string, at time.Time) (bool, error)
}
