package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	UnitMeasure string `json:"unit_measure" validate:"required,oneof=lb unidad caja"`
}

// UpdateProductRequest entrada para actualizar metadatos (los lotes se manejan aparte).
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	UnitMeasure *string `json:"unit_measure" validate:"omitempty,oneof=lb unidad caja"`
}

// ProductResponse salida de un producto en listados (con existencia calculada).
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UnitMeasure string          `json:"unit_measure"`
	OnHand      decimal.Decimal `json:"on_hand"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductDetailResponse detalle: lotes con existencia y salidas recientes primero.
type ProductDetailResponse struct {
	ProductResponse
	AverageCost decimal.Decimal `json:"average_cost"`
	StockValue  decimal.Decimal `json:"stock_value"`
	Lots        []LotResponse   `json:"lots"`
	Exits       []ExitResponse  `json:"exits"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
