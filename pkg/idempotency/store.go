// Package idempotency guarda respuestas por Idempotency-Key para repetirlas sin
// re-ejecutar la operación, y bloquea claves mientras la primera petición sigue en curso.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrInProgress otra petición con la misma clave aún no termina.
var ErrInProgress = errors.New("idempotency: petición en curso con la misma clave")

// Response es la respuesta HTTP guardada. Fingerprint identifica el cuerpo de la petición original.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// ReleaseFunc libera el lock obtenido con Store.Lock.
type ReleaseFunc func(ctx context.Context) error

// Store persiste respuestas y locks por clave.
//
// Get retorna (nil, nil) si la clave no existe o expiró.
// Lock retorna ErrInProgress si otra petición tiene la clave.
type Store interface {
	Get(ctx context.Context, key string) (*Response, error)
	Save(ctx context.Context, key string, resp *Response, ttl time.Duration) error
	Lock(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// Fingerprint devuelve el hash hex SHA-256 del cuerpo de la petición.
func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
