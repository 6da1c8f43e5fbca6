package repository

import (
	"context"

	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// ExitRepository define el puerto de persistencia para salidas (solo inserción y lectura).
type ExitRepository interface {
	Create(ctx context.Context, exit *entity.Exit) error
	// ListByProduct lista las salidas del producto, la más reciente primero.
	ListByProduct(ctx context.Context, productID string) ([]*entity.Exit, error)
}
