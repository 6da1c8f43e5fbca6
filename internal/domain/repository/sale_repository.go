package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas, líneas y pagos.
type SaleRepository interface {
	// Create persiste la cabecera, las líneas y los pagos iniciales.
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve (nil, nil) si la venta no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate igual que GetByID pero bloquea la venta hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Sale, error)
	ListPendingByClient(ctx context.Context, clientID string) ([]*entity.Sale, error)
	// ReplaceLines reemplaza líneas y total de la venta.
	ReplaceLines(ctx context.Context, sale *entity.Sale) error
	AddPayment(ctx context.Context, payment *entity.Payment) error
	UpdateStatus(ctx context.Context, sale *entity.Sale) error
	Delete(ctx context.Context, id string) error
	// ExistsForProduct indica si alguna línea de venta referencia el producto.
	ExistsForProduct(ctx context.Context, productID string) (bool, error)
}
