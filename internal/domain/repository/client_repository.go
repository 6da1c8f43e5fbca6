package repository

import (
	"context"

	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// ClientRepository puerto de solo lectura sobre clientes (gestionados fuera del servicio).
type ClientRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	// GetByID devuelve (nil, nil) si el cliente no existe.
	GetByID(ctx context.Context, id string) (*entity.Client, error)
}
