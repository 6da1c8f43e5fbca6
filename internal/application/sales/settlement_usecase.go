package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/sales"
	"github.com/jhoicas/ventas-lotes-api/pkg/metrics"
)

// SettlementUseCase registra abonos a una venta y la liquida.
type SettlementUseCase struct {
	txRunner SalesTxRunner
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewSettlementUseCase construye el caso de uso. m puede ser nil.
func NewSettlementUseCase(txRunner SalesTxRunner, m *metrics.Metrics) *SettlementUseCase {
	return &SettlementUseCase{txRunner: txRunner, metrics: m, now: time.Now}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *SettlementUseCase) WithClock(c func() time.Time) *SettlementUseCase {
	uc.now = c
	return uc
}

// AddPayment agrega un abono con la venta bloqueada (SELECT FOR UPDATE). Lo pagado se
// recalcula desde los pagos persistidos, así dos abonos concurrentes nunca se pisan.
func (uc *SettlementUseCase) AddPayment(ctx context.Context, saleID string, in dto.PaymentRequest) (*dto.SaleResponse, error) {
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var sale *entity.Sale
	completed := false
	err := uc.txRunner.RunSales(ctx, func(
		_ repository.LotRepository,
		_ repository.ExitRepository,
		saleRepo repository.SaleRepository,
	) error {
		var err error
		sale, err = saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		payment := entity.Payment{
			ID:     uuid.New().String(),
			SaleID: sale.ID,
			Amount: in.Amount,
			PaidAt: uc.now(),
		}
		completed, err = sales.ApplyPayment(sale, payment)
		if err != nil {
			return err
		}
		if err := saleRepo.AddPayment(ctx, &payment); err != nil {
			return err
		}
		// UpdatedAt cambia con cada abono aunque el estado no cambie.
		return saleRepo.UpdateStatus(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.Payment()
	if completed {
		uc.metrics.SaleCompleted()
	}
	return ToSaleResponse(sale), nil
}
