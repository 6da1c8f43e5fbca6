package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa una entrada de compra de un producto.
// Remaining nunca es negativo y solo disminuye después de creado el lote.
type Lot struct {
	ID              string
	ProductID       string
	InitialQuantity decimal.Decimal
	Remaining       decimal.Decimal
	UnitCost        decimal.Decimal // precio de compra
	UnitPrice       decimal.Decimal // precio de venta sugerido
	CreatedAt       time.Time
}

// Sold devuelve la cantidad ya descontada del lote.
func (l *Lot) Sold() decimal.Decimal {
	return l.InitialQuantity.Sub(l.Remaining)
}
