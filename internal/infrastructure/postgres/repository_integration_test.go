package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/application/inventory"
	"github.com/jhoicas/ventas-lotes-api/internal/application/sales"
	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
	"github.com/jhoicas/ventas-lotes-api/pkg/config"
)

// Requiere TEST_DATABASE_URL apuntando a una base desechable.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 5})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func seedLot(t *testing.T, pool *pgxpool.Pool, qty int64) (productID, lotID, clientID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	productID, lotID, clientID = uuid.NewString(), uuid.NewString(), uuid.NewString()
	_, err := pool.Exec(ctx, `INSERT INTO clients (id, name) VALUES ($1, 'Cliente prueba')`, clientID)
	require.NoError(t, err)
	require.NoError(t, NewProductRepository(pool).Create(ctx, &entity.Product{
		ID: productID, Name: "Producto " + productID[:6], UnitMeasure: entity.UnitPiece, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, NewLotRepository(pool).Create(ctx, &entity.Lot{
		ID: lotID, ProductID: productID,
		InitialQuantity: decimal.NewFromInt(qty), Remaining: decimal.NewFromInt(qty),
		UnitCost: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5), CreatedAt: now,
	}))
	return productID, lotID, clientID
}

func TestLotRepo_DepleteIsConditional(t *testing.T) {
	pool := testPool(t)
	productID, lotID, _ := seedLot(t, pool, 10)
	repo := NewLotRepository(pool)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Deplete(ctx, productID, lotID, decimal.NewFromInt(7))
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	lot, err := repo.GetByID(ctx, productID, lotID)
	require.NoError(t, err)
	assert.True(t, lot.Remaining.Equal(decimal.NewFromInt(3)))

	_, err = repo.Deplete(ctx, uuid.NewString(), lotID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTxRunner_SaleRoundTripAndRollback(t *testing.T) {
	pool := testPool(t)
	productID, lotID, clientID := seedLot(t, pool, 10)
	runner := NewTxRunner(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	saleID := uuid.NewString()
	sale := &entity.Sale{
		ID: saleID, ClientID: clientID, Total: decimal.NewFromInt(20), Status: entity.SaleStatusPending,
		SaleDate: now, CreatedAt: now, UpdatedAt: now,
		Lines: []entity.SaleLine{{
			ID: uuid.NewString(), SaleID: saleID, ProductID: productID, LotID: lotID,
			Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(5), Subtotal: decimal.NewFromInt(20),
		}},
		Payments: []entity.Payment{{ID: uuid.NewString(), SaleID: saleID, Amount: decimal.NewFromInt(5), PaidAt: now}},
	}
	err := runner.RunSales(ctx, func(lotRepo repository.LotRepository, _ repository.ExitRepository, saleRepo repository.SaleRepository) error {
		if _, err := lotRepo.Deplete(ctx, productID, lotID, decimal.NewFromInt(4)); err != nil {
			return err
		}
		return saleRepo.Create(ctx, sale)
	})
	require.NoError(t, err)

	got, err := NewSaleRepository(pool).GetByID(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	require.Len(t, got.Payments, 1)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(20)))

	used, err := NewSaleRepository(pool).ExistsForProduct(ctx, productID)
	require.NoError(t, err)
	assert.True(t, used)
	assert.ErrorIs(t, NewProductRepository(pool).Delete(ctx, productID), domain.ErrReferenced)

	// Rollback: el descuento no queda si el callback falla.
	err = runner.Run(ctx, func(lotRepo repository.LotRepository, _ repository.ExitRepository) error {
		if _, err := lotRepo.Deplete(ctx, productID, lotID, decimal.NewFromInt(6)); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	lot, err := NewLotRepository(pool).GetByID(ctx, productID, lotID)
	require.NoError(t, err)
	assert.True(t, lot.Remaining.Equal(decimal.NewFromInt(6)))
}

func seedExtraLot(t *testing.T, pool *pgxpool.Pool, productID string, qty int64) string {
	t.Helper()
	lotID := uuid.NewString()
	require.NoError(t, NewLotRepository(pool).Create(context.Background(), &entity.Lot{
		ID: lotID, ProductID: productID,
		InitialQuantity: decimal.NewFromInt(qty), Remaining: decimal.NewFromInt(qty),
		UnitCost: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}))
	return lotID
}

// Dos tx que toman los mismos lotes en orden cruzado: Postgres aborta una con 40P01 y
// el runner la devuelve como conflicto.
func TestTxRunner_DeadlockIsConflict(t *testing.T) {
	pool := testPool(t)
	productID, lotA, _ := seedLot(t, pool, 10)
	lotB := seedExtraLot(t, pool, productID, 10)
	runner := NewTxRunner(pool)
	ctx := context.Background()
	one := decimal.NewFromInt(1)

	var firstDone sync.WaitGroup
	firstDone.Add(2)
	run := func(first, second string) error {
		return runner.Run(ctx, func(lotRepo repository.LotRepository, _ repository.ExitRepository) error {
			_, err := lotRepo.Deplete(ctx, productID, first, one)
			firstDone.Done()
			if err != nil {
				return err
			}
			firstDone.Wait()
			_, err = lotRepo.Deplete(ctx, productID, second, one)
			return err
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); errs[0] = run(lotA, lotB) }()
	go func() { defer wg.Done(); errs[1] = run(lotB, lotA) }()
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrConflict)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
}

// Ventas concurrentes con los mismos lotes en orden opuesto terminan todas: el descuento
// sigue el orden de lote, no el de las líneas.
func TestSaleUseCase_OppositeLineOrderDoesNotDeadlock(t *testing.T) {
	pool := testPool(t)
	productID, lotA, clientID := seedLot(t, pool, 100)
	lotB := seedExtraLot(t, pool, productID, 100)

	lotRepo := NewLotRepository(pool)
	ledger := inventory.NewLotLedger(NewProductRepository(pool), lotRepo, nil)
	uc := sales.NewSaleUseCase(NewTxRunner(pool), ledger, NewSaleRepository(pool), NewClientRepository(pool), nil)
	ctx := context.Background()

	line := func(lotID string) dto.SaleLineRequest {
		return dto.SaleLineRequest{ProductID: productID, LotID: lotID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)}
	}
	const rounds = 20
	var wg sync.WaitGroup
	errs := make([]error, rounds)
	for i := 0; i < rounds; i++ {
		lines := []dto.SaleLineRequest{line(lotA), line(lotB)}
		if i%2 == 1 {
			lines = []dto.SaleLineRequest{line(lotB), line(lotA)}
		}
		wg.Add(1)
		go func(i int, lines []dto.SaleLineRequest) {
			defer wg.Done()
			_, errs[i] = uc.CreateSale(ctx, dto.CreateSaleRequest{ClientID: clientID, Lines: lines})
		}(i, lines)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "venta %d", i)
	}
	for _, lotID := range []string{lotA, lotB} {
		lot, err := lotRepo.GetByID(ctx, productID, lotID)
		require.NoError(t, err)
		assert.True(t, lot.Remaining.Equal(decimal.NewFromInt(100-rounds)), lot.Remaining.String())
	}
}
