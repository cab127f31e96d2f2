package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura del catálogo de productos (el libro nunca lo modifica).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, `
		SELECT id, name, unit, reorder_threshold FROM products WHERE id = $1`, id)
}

// GetByName coincidencia exacta sin distinguir mayúsculas; nada de coincidencias parciales.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	name = entity.NormalizeProductName(name)
	if name == "" {
		return nil, nil
	}
	return r.getOne(ctx, `
		SELECT id, name, unit, reorder_threshold FROM products
		WHERE lower(name) = lower($1) ORDER BY id LIMIT 1`, name)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Name, &p.Unit, &p.ReorderThreshold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Persistence("get product", err)
	}
	return &p, nil
}

// Upsert crea el producto o actualiza unidad y umbral si ya existe un nombre igual
// (sin distinguir mayúsculas). Deja p.ID con el ID persistido.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	p.Name = entity.NormalizeProductName(p.Name)
	err := r.q.QueryRow(ctx, `
		INSERT INTO products (name, unit, reorder_threshold)
		VALUES ($1, $2, $3)
		ON CONFLICT (lower(name)) DO UPDATE
		SET unit = EXCLUDED.unit, reorder_threshold = EXCLUDED.reorder_threshold
		RETURNING id`,
		p.Name, p.Unit, p.ReorderThreshold,
	).Scan(&p.ID)
	if err != nil {
		return domain.Persistence("upsert product", err)
	}
	return nil
}
