package sales

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

func TestAddPayment_PartialThenComplete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sale, err := e.sales.CreateSale(ctx, dto.CreateSaleRequest{ClientID: "c1", Lines: []dto.SaleLineRequest{e.line(e.lotA, 4, 5)}})
	require.NoError(t, err)

	got, err := e.settle.AddPayment(ctx, sale.ID, dto.PaymentRequest{Amount: d(8)})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPending, got.Status)
	assert.True(t, got.Balance.Equal(d(12)))

	got, err = e.settle.AddPayment(ctx, sale.ID, dto.PaymentRequest{Amount: d(12)})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, got.Status)

	// Sobrepago sobre una venta completada: se registra y el estado no cambia.
	got, err = e.settle.AddPayment(ctx, sale.ID, dto.PaymentRequest{Amount: d(3)})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, got.Status)
	assert.True(t, got.Balance.Equal(d(-3)))
	assert.Len(t, got.Payments, 3)
}

func TestAddPayment_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sale, err := e.sales.CreateSale(ctx, dto.CreateSaleRequest{ClientID: "c1", Lines: []dto.SaleLineRequest{e.line(e.lotA, 4, 5)}})
	require.NoError(t, err)

	_, err = e.settle.AddPayment(ctx, sale.ID, dto.PaymentRequest{Amount: d(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.settle.AddPayment(ctx, sale.ID, dto.PaymentRequest{Amount: d(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.settle.AddPayment(ctx, "nope", dto.PaymentRequest{Amount: d(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := e.sales.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Payments)
}

func TestAddPayment_ConcurrentPaymentsAllCount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sale, err := e.sales.CreateSale(ctx, dto.CreateSaleRequest{ClientID: "c1", Lines: []dto.SaleLineRequest{e.line(e.lotA, 4, 5)}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.settle.AddPayment(ctx, sale.ID, dto.PaymentRequest{Amount: d(2)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := e.sales.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Payments, 10)
	assert.True(t, stored.Paid.Equal(d(20)))
	assert.Equal(t, entity.SaleStatusCompleted, stored.Status)
}
