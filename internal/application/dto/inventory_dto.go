package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddLotRequest body para POST /api/products/:id/lots.
type AddLotRequest struct {
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	Remaining       decimal.Decimal `json:"remaining"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AvailableQuantityResponse salida de GET /api/products/:id/lots/:lotId/available.
type AvailableQuantityResponse struct {
	ProductID string          `json:"product_id"`
	LotID     string          `json:"lot_id"`
	Available decimal.Decimal `json:"available"`
}

// RecordExitRequest body para POST /api/products/:id/exits (baja manual, sin cliente).
type RecordExitRequest struct {
	LotID    string          `json:"lot_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason" validate:"required,max=200"`
}

// ExitResponse salida de una salida de stock.
type ExitResponse struct {
	ID         string           `json:"id"`
	ProductID  string           `json:"product_id"`
	LotID      string           `json:"lot_id"`
	Quantity   decimal.Decimal  `json:"quantity"`
	UnitPrice  *decimal.Decimal `json:"unit_price,omitempty"`
	Reason     string           `json:"reason"`
	ClientID   string           `json:"client_id,omitempty"`
	ClientName string           `json:"client_name,omitempty"`
	SaleID     string           `json:"sale_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
