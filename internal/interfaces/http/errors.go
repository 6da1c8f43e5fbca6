package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/domain"
)

var validate = validator.New()

// bindBody parsea el JSON del cuerpo y aplica las etiquetas validate del DTO.
// Retorna nil si el cuerpo es válido; si no, el ErrorResponse a devolver con 400.
func bindBody(c *fiber.Ctx, out any) *dto.ErrorResponse {
	if err := c.BodyParser(out); err != nil {
		return &dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
		}
		fields := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		return &dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: fields}
	}
	return nil
}

// errorResponse traduce un error de dominio a status HTTP y cuerpo.
// Un *domain.LineError agrega details.line y details.lot_id.
func errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		status int
		resp   dto.ErrorResponse
	)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, resp = fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	case errors.Is(err, domain.ErrNotFound):
		status, resp = fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrInsufficientStock):
		status, resp = fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	case errors.Is(err, domain.ErrConflict):
		status, resp = fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: "el stock cambió durante la operación, reintente"}
	case errors.Is(err, domain.ErrInvalidState):
		status, resp = fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_STATE", Message: "operación no permitida en el estado actual"}
	case errors.Is(err, domain.ErrReferenced):
		status, resp = fiber.StatusConflict, dto.ErrorResponse{Code: "REFERENCED", Message: "el producto tiene ventas asociadas"}
	case errors.Is(err, domain.ErrUnauthorized):
		status, resp = fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autorizado"}
	case errors.Is(err, domain.ErrForbidden):
		status, resp = fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}

	var lineErr *domain.LineError
	if errors.As(err, &lineErr) {
		resp.Details = map[string]any{"line": lineErr.Index, "lot_id": lineErr.LotID}
		if lineErr.ProductID != "" {
			resp.Details["product_id"] = lineErr.ProductID
		}
	}
	return status, resp
}

// writeError responde con el error mapeado. Los 500 se registran con el error original.
func writeError(c *fiber.Ctx, err error) error {
	status, resp := errorResponse(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	}
	return c.Status(status).JSON(resp)
}
