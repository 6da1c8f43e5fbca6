package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusPending   = "PENDING"
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
)

// SaleLine es una línea de venta: referencia (no dueña) a producto y lote.
type SaleLine struct {
	ID        string
	SaleID    string
	Position  int
	ProductID string
	LotID     string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Payment es un abono inmutable a una venta.
type Payment struct {
	ID     string
	SaleID string
	Amount decimal.Decimal
	PaidAt time.Time
}

// Sale representa una venta con sus líneas y pagos.
type Sale struct {
	ID        string
	ClientID  string
	Lines     []SaleLine
	Payments  []Payment
	Total     decimal.Decimal
	Status    string
	SaleDate  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Paid suma los pagos registrados.
func (s *Sale) Paid() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range s.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// Balance devuelve total - pagado (negativo si hay sobrepago).
func (s *Sale) Balance() decimal.Decimal {
	return s.Total.Sub(s.Paid())
}
