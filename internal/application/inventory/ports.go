package inventory

import (
	"context"

	"github.com/jhoicas/hotel-inventory/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Batches      repository.BatchRepository
	Consumptions repository.ConsumptionRepository
	Stock        repository.AggregateStockRepository
	Movements    repository.MovementRepository
	InitialLoads repository.InitialLoadRepository
	Products     repository.ProductRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y nada de lo escrito queda visible.
// Unidad de atomicidad de todo el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
