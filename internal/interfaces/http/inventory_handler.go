package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/application/inventory"
)

// InventoryHandler maneja lotes y salidas de un producto (protegido).
type InventoryHandler struct {
	ledger *inventory.LotLedger
	exits  *inventory.ExitRecorder
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LotLedger, exits *inventory.ExitRecorder) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, exits: exits}
}

// AddLot godoc
// @Summary      Registrar lote de compra
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AddLotRequest  true  "quantity > 0, unit_cost >= 0, unit_price >= 0"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/lots [post]
func (h *InventoryHandler) AddLot(c *fiber.Ctx) error {
	var in dto.AddLotRequest
	if resp := bindBody(c, &in); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	out, err := h.ledger.AddLot(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListLots godoc
// @Summary      Lotes con existencia (más antiguos primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}   dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/lots [get]
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	out, err := h.ledger.ListAvailableLots(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Available godoc
// @Summary      Cantidad disponible de un lote
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path  string  true  "ID del producto"
// @Param        lotId  path  string  true  "ID del lote"
// @Success      200    {object}  dto.AvailableQuantityResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/products/{id}/lots/{lotId}/available [get]
func (h *InventoryHandler) Available(c *fiber.Ctx) error {
	productID, lotID := c.Params("id"), c.Params("lotId")
	qty, err := h.ledger.AvailableQuantity(c.UserContext(), productID, lotID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailableQuantityResponse{ProductID: productID, LotID: lotID, Available: qty})
}

// RecordExit godoc
// @Summary      Registrar salida manual (merma, daño, consumo)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.RecordExitRequest  true  "lot_id, quantity, reason"
// @Success      201   {object}  dto.ExitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/exits [post]
func (h *InventoryHandler) RecordExit(c *fiber.Ctx) error {
	var in dto.RecordExitRequest
	if resp := bindBody(c, &in); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	out, err := h.exits.RecordExit(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
