package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve (nil, nil) si el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// OnHand devuelve, por producto, la suma del remanente de lotes con existencia.
	OnHand(ctx context.Context, productIDs []string) (map[string]decimal.Decimal, error)
	// Delete elimina el producto con sus lotes y salidas. domain.ErrReferenced si alguna
	// venta lo incluye.
	Delete(ctx context.Context, id string) error
}
