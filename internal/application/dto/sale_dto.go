package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea de una venta. UnitPrice en cero toma el precio de venta del lote.
type SaleLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	LotID     string          `json:"lot_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PaymentRequest body para POST /api/sales/:id/payments (y pagos iniciales).
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	ClientID string            `json:"client_id" validate:"required"`
	Lines    []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	Payments []PaymentRequest  `json:"payments,omitempty"`
	SaleDate *time.Time        `json:"sale_date,omitempty"`
}

// CreateSalesBatchRequest body para POST /api/sales/batch.
type CreateSalesBatchRequest struct {
	Sales []CreateSaleRequest `json:"sales" validate:"required,min=1,max=100"`
}

// UpdateSaleLinesRequest body para PUT /api/sales/:id/lines.
type UpdateSaleLinesRequest struct {
	Lines []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleLineResponse salida de una línea.
type SaleLineResponse struct {
	ProductID string          `json:"product_id"`
	LotID     string          `json:"lot_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PaymentResponse salida de un pago.
type PaymentResponse struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	PaidAt time.Time       `json:"paid_at"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID        string             `json:"id"`
	ClientID  string             `json:"client_id"`
	Lines     []SaleLineResponse `json:"lines"`
	Payments  []PaymentResponse  `json:"payments"`
	Total     decimal.Decimal    `json:"total"`
	Paid      decimal.Decimal    `json:"paid"`
	Balance   decimal.Decimal    `json:"balance"`
	Status    string             `json:"status"`
	SaleDate  time.Time          `json:"sale_date"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// SaleOutcome resultado de una entrada del lote: venta creada o error.
type SaleOutcome struct {
	Index int            `json:"index"`
	Sale  *SaleResponse  `json:"sale,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// BatchSaleResponse salida de POST /api/sales/batch.
type BatchSaleResponse struct {
	Results   []SaleOutcome `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}
