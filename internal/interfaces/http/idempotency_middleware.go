package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/pkg/idempotency"
)

// Cabeceras del protocolo de idempotencia.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

const idempotencyLockTTL = 30 * time.Second

// Idempotency repite la respuesta guardada cuando llega de nuevo la misma Idempotency-Key.
//
//   - Sin cabecera: la petición pasa sin cambios.
//   - Clave ya usada con otro cuerpo: 422 IDEMPOTENCY_KEY_REUSED.
//   - Primera petición con la clave aún en curso: 409 REQUEST_IN_PROGRESS.
//
// Solo se guardan respuestas con status < 500, así un fallo interno puede reintentarse.
// Debe ir DESPUÉS de AuthMiddleware: la clave se separa por usuario.
func Idempotency(store idempotency.Store, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || store == nil {
			return c.Next()
		}
		if len(key) > 255 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		ctx := c.UserContext()
		// liberar y guardar ocurren al final, cuando el plazo de la petición pudo vencer
		after := context.WithoutCancel(ctx)
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key
		fingerprint := idempotency.Fingerprint(c.Body())

		if replayed, err := replay(c, store, scoped, fingerprint); replayed || err != nil {
			return err
		}

		release, err := store.Lock(ctx, scoped, idempotencyLockTTL)
		switch {
		case errors.Is(err, idempotency.ErrInProgress):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REQUEST_IN_PROGRESS", Message: "ya hay una petición en curso con esta Idempotency-Key"})
		case err != nil:
			log.Warn().Err(err).Str("key", key).Msg("idempotencia: lock no disponible; se procesa sin lock")
		default:
			defer func() {
				if err := release(after); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("idempotencia: liberar lock")
				}
			}()
			// otra petición pudo terminar entre la consulta y el lock
			if replayed, err := replay(c, store, scoped, fingerprint); replayed || err != nil {
				return err
			}
		}

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			return nil
		}
		resp := &idempotency.Response{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
			Fingerprint: fingerprint,
		}
		if err := store.Save(after, scoped, resp, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("idempotencia: guardar respuesta")
		}
		return nil
	}
}

func replay(c *fiber.Ctx, store idempotency.Store, key, fingerprint string) (bool, error) {
	saved, err := store.Get(c.UserContext(), key)
	if err != nil {
		log.Warn().Err(err).Msg("idempotencia: leer respuesta guardada")
		return false, nil
	}
	if saved == nil {
		return false, nil
	}
	if saved.Fingerprint != fingerprint {
		return true, c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "IDEMPOTENCY_KEY_REUSED",
			Message: "la Idempotency-Key ya se usó con otro cuerpo",
		})
	}
	c.Set(HeaderReplayed, "true")
	if saved.ContentType != "" {
		c.Set(fiber.HeaderContentType, saved.ContentType)
	}
	return true, c.Status(saved.Status).Send(saved.Body)
}
