package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/application/sales"
)

const dateLayout = "2006-01-02"

// SaleHandler maneja ventas, pagos y documentos (protegido).
type SaleHandler struct {
	sales      *sales.SaleUseCase
	settlement *sales.SettlementUseCase
	documents  *sales.DocumentUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(saleUC *sales.SaleUseCase, settlementUC *sales.SettlementUseCase, documentUC *sales.DocumentUseCase) *SaleHandler {
	return &SaleHandler{sales: saleUC, settlement: settlementUC, documents: documentUC}
}

// Create godoc
// @Summary      Crear venta (varias líneas, atómica)
// @Description  Descuenta cada línea de su lote y registra una salida "Venta realizada" por línea.
//
//	Si alguna línea falla no se modifica nada. Acepta Idempotency-Key.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        body  body  dto.CreateSaleRequest  true  "Cliente, líneas y pagos iniciales"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK / CONFLICT; details.line y details.lot_id"
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if resp := bindBody(c, &in); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	out, err := h.sales.CreateSale(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateBatch godoc
// @Summary      Crear varias ventas
// @Description  Cada venta es independiente: el resultado trae la venta o el error por índice.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        body  body  dto.CreateSalesBatchRequest  true  "Ventas"
// @Success      200   {object}  dto.BatchSaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales/batch [post]
func (h *SaleHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.CreateSalesBatchRequest
	if resp := bindBody(c, &in); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	results := h.sales.CreateSales(c.UserContext(), in.Sales)
	out := dto.BatchSaleResponse{Results: make([]dto.SaleOutcome, 0, len(results))}
	for i, r := range results {
		outcome := dto.SaleOutcome{Index: i, Sale: r.Sale}
		if r.Err != nil {
			_, resp := errorResponse(r.Err)
			outcome.Sale = nil
			outcome.Error = &resp
			out.Failed++
		} else {
			out.Succeeded++
		}
		out.Results = append(out.Results, outcome)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta con líneas y pagos
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.sales.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListByDateRange godoc
// @Summary      Ventas por rango de fechas (inclusivo)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  true  "YYYY-MM-DD o RFC3339"
// @Param        end    query  string  true  "YYYY-MM-DD (día completo) o RFC3339"
// @Success      200    {array}   dto.SaleResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) ListByDateRange(c *fiber.Ctx) error {
	start, end, ok := parseRange(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "start y end requeridos (YYYY-MM-DD o RFC3339)"})
	}
	out, err := h.sales.ListSalesByDateRange(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListPendingForClient godoc
// @Summary      Ventas pendientes de un cliente
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        clientId  path  string  true  "ID del cliente"
// @Success      200  {array}   dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{clientId}/sales/pending [get]
func (h *SaleHandler) ListPendingForClient(c *fiber.Ctx) error {
	out, err := h.sales.ListPendingSalesForClient(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateLines godoc
// @Summary      Reemplazar líneas de una venta pendiente
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleLinesRequest  true  "Líneas nuevas"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/lines [put]
func (h *SaleHandler) UpdateLines(c *fiber.Ctx) error {
	var in dto.UpdateSaleLinesRequest
	if resp := bindBody(c, &in); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	out, err := h.sales.UpdateSaleLines(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar venta sin pagos (solo admin)
// @Tags         sales
// @Security     Bearer
// @Param        id   path  string  true  "ID de la venta"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	if err := h.sales.DeleteSale(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddPayment godoc
// @Summary      Registrar abono
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.PaymentRequest  true  "amount > 0"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INVALID_STATE: venta anulada"
// @Router       /api/sales/{id}/payments [post]
func (h *SaleHandler) AddPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if resp := bindBody(c, &in); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	out, err := h.settlement.AddPayment(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Cancel godoc
// @Summary      Anular venta pendiente
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.sales.CancelSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Descargar recibo PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	data, filename, err := h.documents.DownloadReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(data)))
	return c.Send(data)
}

// Export godoc
// @Summary      Exportar ventas a Excel
// @Tags         sales
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        start  query  string  true  "YYYY-MM-DD o RFC3339"
// @Param        end    query  string  true  "YYYY-MM-DD o RFC3339"
// @Success      200    {file}    binary
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/sales/report/export [get]
func (h *SaleHandler) Export(c *fiber.Ctx) error {
	start, end, ok := parseRange(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "start y end requeridos (YYYY-MM-DD o RFC3339)"})
	}
	data, filename, err := h.documents.ExportSales(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// parseRange lee start y end. Una fecha sin hora en end cubre el día completo.
func parseRange(c *fiber.Ctx) (start, end time.Time, ok bool) {
	start, _, ok = parseTime(c.Query("start"))
	if !ok {
		return
	}
	var dateOnly bool
	end, dateOnly, ok = parseTime(c.Query("end"))
	if !ok {
		return
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, true
}

func parseTime(s string) (t time.Time, dateOnly, ok bool) {
	if s == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, true
	}
	return time.Time{}, false, false
}
