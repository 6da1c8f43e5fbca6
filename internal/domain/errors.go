package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidState      = errors.New("operación no permitida en el estado actual")
	ErrReferenced        = errors.New("recurso referenciado por ventas")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
)

// LineError agrega el contexto de la línea de venta que falló (índice y lote).
// Unwrap devuelve el error de dominio, así errors.Is sigue funcionando.
type LineError struct {
	Index     int
	ProductID string
	LotID     string
	Err       error
}

// NewLineError construye un LineError para la línea index.
func NewLineError(index int, productID, lotID string, err error) *LineError {
	return &LineError{Index: index, ProductID: productID, LotID: lotID, Err: err}
}

func (e *LineError) Error() string {
	return fmt.Sprintf("línea %d (producto %s, lote %s): %v", e.Index, e.ProductID, e.LotID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
