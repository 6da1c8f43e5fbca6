package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// LotRepository define el puerto para los lotes (entradas) de un producto.
// Usado dentro de transacciones para garantizar consistencia.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	// GetByID devuelve (nil, nil) si el lote no existe o no pertenece al producto.
	GetByID(ctx context.Context, productID, lotID string) (*entity.Lot, error)
	// Deplete descuenta qty de forma atómica solo si remaining >= qty y devuelve el
	// nuevo remanente. domain.ErrNotFound si el lote no existe para el producto,
	// domain.ErrInsufficientStock si no alcanza (sin modificar nada).
	Deplete(ctx context.Context, productID, lotID string, qty decimal.Decimal) (decimal.Decimal, error)
	// ListAvailable lista los lotes con remaining > 0, el más antiguo primero.
	ListAvailable(ctx context.Context, productID string) ([]*entity.Lot, error)
}
