package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hotel-inventory/internal/application/inventory"
	"github.com/jhoicas/hotel-inventory/internal/domain"
	"github.com/jhoicas/hotel-inventory/internal/domain/entity"
	"github.com/jhoicas/hotel-inventory/internal/infrastructure/postgres"
	"github.com/jhoicas/hotel-inventory/pkg/config"
	"github.com/jhoicas/hotel-inventory/pkg/logger"
)

// openTestPool conecta a TEST_DATABASE_URL y aplica migraciones; sin la variable el test se omite.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool, logger.Nop()))
	return pool
}

// seed crea un producto con nombre único y devuelve un hotel sin historia.
func seed(t *testing.T, pool *pgxpool.Pool) (hotelID int64, product *entity.Product) {
	t.Helper()
	product = &entity.Product{Name: "test-" + uuid.NewString(), Unit: "unidad", ReorderThreshold: decimal.Zero}
	require.NoError(t, postgres.NewProductRepository(pool).Upsert(context.Background(), product))
	return time.Now().UnixNano(), product
}

func useCases(pool *pgxpool.Pool) (*inventory.LedgerUseCase, *inventory.QueryUseCase, *inventory.InitialLoadUseCase) {
	tx := postgres.NewTxRunner(pool)
	repos := postgres.NewRepos(pool)
	return inventory.NewLedgerUseCase(tx, repos.Products, logger.Nop()),
		inventory.NewQueryUseCase(repos.Stock, repos.Batches, repos.Consumptions, repos.Movements),
		inventory.NewInitialLoadUseCase(tx, repos.InitialLoads)
}

func TestPostgres_FIFOTodoONada(t *testing.T) {
	pool := openTestPool(t)
	hotelID, product := seed(t, pool)
	ledger, query, _ := useCases(pool)
	ctx := context.Background()
	day1 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	for _, in := range []struct {
		qty int64
		at  time.Time
	}{{10, day1}, {5, day2}} {
		at := in.at
		_, err := ledger.RecordInbound(ctx, inventory.InboundInput{
			HotelID: hotelID, ProductID: product.ID, Quantity: decimal.NewFromInt(in.qty), ReceivedAt: &at,
		})
		require.NoError(t, err)
	}

	res, err := ledger.Consume(ctx, inventory.ConsumeInput{HotelID: hotelID, ProductID: product.ID, Quantity: decimal.NewFromInt(12)})
	require.NoError(t, err)
	require.Len(t, res.Allocations, 2)
	assert.True(t, res.AggregateQty.Equal(decimal.NewFromInt(3)))

	_, err = ledger.Consume(ctx, inventory.ConsumeInput{HotelID: hotelID, ProductID: product.ID, Quantity: decimal.NewFromInt(100)})
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.True(t, short.Available.Equal(decimal.NewFromInt(3)))

	batches, err := query.ActiveBatches(ctx, hotelID, product.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.True(t, batches[0].Remaining.Equal(decimal.NewFromInt(3)))

	lines, err := query.ExplainConsumption(ctx, hotelID, res.Reference)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestPostgres_ConsumoConcurrenteSerializado(t *testing.T) {
	pool := openTestPool(t)
	hotelID, product := seed(t, pool)
	ledger, query, _ := useCases(pool)
	ctx := context.Background()

	_, err := ledger.RecordInbound(ctx, inventory.InboundInput{HotelID: hotelID, ProductID: product.ID, Quantity: decimal.NewFromInt(10)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Consume(ctx, inventory.ConsumeInput{HotelID: hotelID, ProductID: product.ID, Quantity: decimal.NewFromInt(6)})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, ok)

	agg, err := query.Stock(ctx, hotelID, product.ID)
	require.NoError(t, err)
	assert.True(t, agg.Quantity.Equal(decimal.NewFromInt(4)))
}

func TestPostgres_CargaInicialUnaVez(t *testing.T) {
	pool := openTestPool(t)
	hotelID, product := seed(t, pool)
	_, query, load := useCases(pool)
	ctx := context.Background()

	in := inventory.InitialLoadInput{HotelID: hotelID, Actor: "admin", Rows: []inventory.InitialLoadRow{
		{ProductName: product.Name, Quantity: decimal.NewFromInt(7)},
		{ProductName: "no-existe-" + uuid.NewString(), Quantity: decimal.NewFromInt(1)},
	}}
	res, err := load.Submit(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Loaded)
	assert.Len(t, res.Unmatched, 1)

	_, err = load.Submit(ctx, in)
	assert.ErrorIs(t, err, domain.ErrAlreadyLoaded)

	agg, err := query.Stock(ctx, hotelID, product.ID)
	require.NoError(t, err)
	assert.True(t, agg.Quantity.Equal(decimal.NewFromInt(7)))
}
