package repository

import (
	"context"

	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
)

// ProductRepository puerto de solo lectura sobre el catálogo de productos.
type ProductRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// GetByName busca por nombre exacto sin distinguir mayúsculas. Devuelve nil, nil si no existe.
	GetByName(ctx context.Context, name string) (*entity.Product, error)
}
