package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExitReasonSale es la razón fija de las salidas generadas por una venta.
const ExitReasonSale = "Venta realizada"

// Exit es el registro inmutable de una salida de stock de un lote (auditoría).
// ClientID y SaleID solo vienen informados en salidas por venta.
type Exit struct {
	ID        string
	ProductID string
	LotID     string
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
	Reason    string
	ClientID  string
	SaleID    string
	CreatedAt time.Time
}
