package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// ApplyPayment agrega el pago a la venta y recalcula el estado desde la lista de pagos.
//
// PENDING pasa a COMPLETED cuando lo pagado cubre el total. Un pago sobre una venta
// COMPLETED se registra como sobrepago sin cambiar el estado. Una venta CANCELLED no
// acepta pagos. Devuelve true si el pago completó la venta.
func ApplyPayment(sale *entity.Sale, p entity.Payment) (bool, error) {
	if !p.Amount.GreaterThan(decimal.Zero) || !domain.WithinScale(p.Amount) {
		return false, domain.ErrInvalidInput
	}
	if sale.Status == entity.SaleStatusCancelled {
		return false, domain.ErrInvalidState
	}
	sale.Payments = append(sale.Payments, p)
	sale.UpdatedAt = p.PaidAt
	return Settle(sale), nil
}

// Settle pasa la venta a COMPLETED si está PENDING y lo pagado >= total.
// Nunca devuelve una venta COMPLETED a PENDING.
func Settle(sale *entity.Sale) bool {
	if sale.Status != entity.SaleStatusPending {
		return false
	}
	if sale.Paid().GreaterThanOrEqual(sale.Total) {
		sale.Status = entity.SaleStatusCompleted
		return true
	}
	return false
}

// Cancel pasa una venta PENDING a CANCELLED. El stock no se devuelve a los lotes.
func Cancel(sale *entity.Sale, now time.Time) error {
	if sale.Status != entity.SaleStatusPending {
		return domain.ErrInvalidState
	}
	sale.Status = entity.SaleStatusCancelled
	sale.UpdatedAt = now
	return nil
}
