package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad del descuento de un lote y su salida.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		exitRepo repository.ExitRepository,
	) error) error
}

// Clock permite fijar la hora en pruebas.
type Clock func() time.Time
