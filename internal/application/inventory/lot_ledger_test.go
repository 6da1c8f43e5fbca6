package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/infrastructure/memory"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newLedger(t *testing.T) (*memory.Store, *LotLedger) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: "p1", Name: "Frijol", UnitMeasure: entity.UnitPound, CreatedAt: t0, UpdatedAt: t0,
	}))
	tick := t0
	ledger := NewLotLedger(store.Products(), store.Lots(), nil).WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	})
	return store, ledger
}

func TestAddLot(t *testing.T) {
	_, ledger := newLedger(t)
	ctx := context.Background()

	lot, err := ledger.AddLot(ctx, "p1", dto.AddLotRequest{Quantity: d(10), UnitCost: d(2), UnitPrice: d(5)})
	require.NoError(t, err)
	assert.True(t, lot.Remaining.Equal(d(10)))
	assert.True(t, lot.InitialQuantity.Equal(d(10)))

	qty, err := ledger.AvailableQuantity(ctx, "p1", lot.ID)
	require.NoError(t, err)
	assert.True(t, qty.Equal(d(10)))
}

func TestAddLot_Invalid(t *testing.T) {
	_, ledger := newLedger(t)
	ctx := context.Background()

	cases := []dto.AddLotRequest{
		{Quantity: d(0), UnitCost: d(1), UnitPrice: d(1)},
		{Quantity: d(-3), UnitCost: d(1), UnitPrice: d(1)},
		{Quantity: d(1), UnitCost: d(-1), UnitPrice: d(1)},
		{Quantity: d(1), UnitCost: d(1), UnitPrice: d(-1)},
		{Quantity: decimal.RequireFromString("0.00005"), UnitCost: d(1), UnitPrice: d(1)},
		{Quantity: d(1), UnitCost: decimal.RequireFromString("2.12345"), UnitPrice: d(1)},
		{Quantity: d(1), UnitCost: d(1), UnitPrice: decimal.RequireFromString("9.99999")},
	}
	for _, in := range cases {
		_, err := ledger.AddLot(ctx, "p1", in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	_, err := ledger.AddLot(ctx, "nope", dto.AddLotRequest{Quantity: d(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAvailableQuantity_LotOfAnotherProduct(t *testing.T) {
	store, ledger := newLedger(t)
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p2", Name: "Maíz", UnitMeasure: entity.UnitBox}))
	lot, err := ledger.AddLot(ctx, "p2", dto.AddLotRequest{Quantity: d(3)})
	require.NoError(t, err)

	_, err = ledger.AvailableQuantity(ctx, "p1", lot.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReserveAndDeplete(t *testing.T) {
	_, ledger := newLedger(t)
	ctx := context.Background()
	lot, err := ledger.AddLot(ctx, "p1", dto.AddLotRequest{Quantity: d(10), UnitCost: d(2), UnitPrice: d(5)})
	require.NoError(t, err)

	remaining, err := ledger.ReserveAndDeplete(ctx, "p1", lot.ID, d(4))
	require.NoError(t, err)
	assert.True(t, remaining.Equal(d(6)))

	_, err = ledger.ReserveAndDeplete(ctx, "p1", lot.ID, d(7))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = ledger.ReserveAndDeplete(ctx, "p1", lot.ID, d(0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ledger.ReserveAndDeplete(ctx, "p1", "missing", d(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	qty, _ := ledger.AvailableQuantity(ctx, "p1", lot.ID)
	assert.True(t, qty.Equal(d(6)))
}

func TestReserveAndDeplete_ConcurrentRace(t *testing.T) {
	_, ledger := newLedger(t)
	ctx := context.Background()
	lot, err := ledger.AddLot(ctx, "p1", dto.AddLotRequest{Quantity: d(10)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.ReserveAndDeplete(ctx, "p1", lot.ID, d(7))
		}(i)
	}
	wg.Wait()

	ok, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	qty, _ := ledger.AvailableQuantity(ctx, "p1", lot.ID)
	assert.True(t, qty.Equal(d(3)))
}

func TestListAvailableLots_OldestFirstWithStock(t *testing.T) {
	_, ledger := newLedger(t)
	ctx := context.Background()
	first, _ := ledger.AddLot(ctx, "p1", dto.AddLotRequest{Quantity: d(2)})
	second, _ := ledger.AddLot(ctx, "p1", dto.AddLotRequest{Quantity: d(5)})
	third, _ := ledger.AddLot(ctx, "p1", dto.AddLotRequest{Quantity: d(1)})
	_, err := ledger.ReserveAndDeplete(ctx, "p1", second.ID, d(5))
	require.NoError(t, err)

	lots, err := ledger.ListAvailableLots(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, first.ID, lots[0].ID)
	assert.Equal(t, third.ID, lots[1].ID)

	_, err = ledger.ListAvailableLots(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
