package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/application/inventory"
	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/sales"
	"github.com/jhoicas/ventas-lotes-api/pkg/metrics"
)

// SaleUseCase orquesta la venta multi-línea: valida contra los lotes, descuenta el stock
// y persiste la venta con sus pagos iniciales en una sola transacción.
type SaleUseCase struct {
	txRunner   SalesTxRunner
	ledger     *inventory.LotLedger
	saleRepo   repository.SaleRepository
	clientRepo repository.ClientRepository
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewSaleUseCase construye el caso de uso. m puede ser nil.
func NewSaleUseCase(
	txRunner SalesTxRunner,
	ledger *inventory.LotLedger,
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
	m *metrics.Metrics,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner:   txRunner,
		ledger:     ledger,
		saleRepo:   saleRepo,
		clientRepo: clientRepo,
		metrics:    m,
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *SaleUseCase) WithClock(c func() time.Time) *SaleUseCase {
	uc.now = c
	return uc
}

// SaleResult resultado de una entrada de CreateSales: venta creada o error.
type SaleResult struct {
	Sale *dto.SaleResponse
	Err  error
}

// CreateSale crea una venta PENDING, registra una salida "Venta realizada" por línea y
// aplica los pagos iniciales.
//
// Errores:
//   - domain.ErrInvalidInput      sin líneas, sin cliente, cantidad <= 0, precio o pago inválido.
//   - domain.ErrNotFound          cliente, producto o lote inexistente.
//   - domain.ErrInsufficientStock la suma pedida a un lote supera su remanente.
//   - domain.ErrConflict          otro proceso consumió el stock entre la validación y el commit.
//
// Los errores de línea vienen como *domain.LineError con el índice de la línea.
func (uc *SaleUseCase) CreateSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	resp, err := uc.createSale(ctx, in)
	if err != nil {
		uc.metrics.SaleRejected(rejectionReason(err))
		return nil, err
	}
	uc.metrics.SaleCreated()
	uc.metrics.StockExit(inventory.ExitKindSale, len(resp.Lines))
	if resp.Status == entity.SaleStatusCompleted {
		uc.metrics.SaleCompleted()
	}
	return resp, nil
}

func (uc *SaleUseCase) createSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if in.ClientID == "" {
		return nil, domain.ErrInvalidInput
	}
	lines := toSaleLines(in.Lines)
	if err := sales.ValidateLines(lines); err != nil {
		return nil, err
	}
	for _, p := range in.Payments {
		if !p.Amount.GreaterThan(decimal.Zero) || !domain.WithinScale(p.Amount) {
			return nil, domain.ErrInvalidInput
		}
	}

	ok, err := uc.clientRepo.Exists(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	// Resolver lotes y validar existencia agregada (fuera de la tx, solo lectura)
	if err := uc.resolveLines(ctx, lines); err != nil {
		return nil, err
	}
	if err := uc.checkAvailability(ctx, lines); err != nil {
		return nil, err
	}

	now := uc.now()
	saleDate := now
	if in.SaleDate != nil && !in.SaleDate.IsZero() {
		saleDate = *in.SaleDate
	}
	sale := &entity.Sale{
		ID:        uuid.New().String(),
		ClientID:  in.ClientID,
		Status:    entity.SaleStatusPending,
		SaleDate:  saleDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range lines {
		lines[i].ID = uuid.New().String()
		lines[i].SaleID = sale.ID
	}
	sale.Total = sales.PriceLines(lines)
	sale.Lines = lines
	for _, p := range in.Payments {
		if _, err := sales.ApplyPayment(sale, entity.Payment{
			ID:     uuid.New().String(),
			SaleID: sale.ID,
			Amount: p.Amount,
			PaidAt: now,
		}); err != nil {
			return nil, err
		}
	}

	err = uc.txRunner.RunSales(ctx, func(
		lotRepo repository.LotRepository,
		exitRepo repository.ExitRepository,
		saleRepo repository.SaleRepository,
	) error {
		// 1) Una salida por línea, en orden de lote. Si un lote ya no alcanza, rollback de todo.
		for _, i := range sales.LockOrder(lines) {
			line := lines[i]
			price := line.UnitPrice
			if _, err := inventory.RecordExitInTx(ctx, lotRepo, exitRepo, inventory.ExitInput{
				ProductID: line.ProductID,
				LotID:     line.LotID,
				Quantity:  line.Quantity,
				UnitPrice: &price,
				Reason:    entity.ExitReasonSale,
				ClientID:  sale.ClientID,
				SaleID:    sale.ID,
				At:        now,
			}); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrNotFound) {
					return domain.NewLineError(i, line.ProductID, line.LotID, domain.ErrConflict)
				}
				return err
			}
		}
		// 2) Cabecera, líneas y pagos iniciales
		return saleRepo.Create(ctx, sale)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Warn().Err(err).Str("client_id", in.ClientID).Msg("venta revertida: stock consumido durante el commit")
		}
		return nil, err
	}
	return ToSaleResponse(sale), nil
}

// CreateSales procesa un lote de ventas. Cada entrada es independiente: un fallo no
// revierte las ventas ya creadas.
func (uc *SaleUseCase) CreateSales(ctx context.Context, in []dto.CreateSaleRequest) []SaleResult {
	out := make([]SaleResult, 0, len(in))
	for _, req := range in {
		sale, err := uc.CreateSale(ctx, req)
		out = append(out, SaleResult{Sale: sale, Err: err})
	}
	return out
}

// GetSale obtiene una venta con líneas y pagos.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return ToSaleResponse(sale), nil
}

// ListSalesByDateRange lista las ventas con fecha en [start, end].
func (uc *SaleUseCase) ListSalesByDateRange(ctx context.Context, start, end time.Time) ([]dto.SaleResponse, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.saleRepo.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return toSaleResponses(list), nil
}

// ListPendingSalesForClient lista las ventas PENDING del cliente.
func (uc *SaleUseCase) ListPendingSalesForClient(ctx context.Context, clientID string) ([]dto.SaleResponse, error) {
	if clientID == "" {
		return nil, domain.ErrInvalidInput
	}
	ok, err := uc.clientRepo.Exists(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	list, err := uc.saleRepo.ListPendingByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return toSaleResponses(list), nil
}

// UpdateSaleLines reemplaza las líneas de una venta PENDING. Por lote, la nueva cantidad
// no puede ser menor a la ya vendida (el stock no vuelve al lote); la diferencia se
// descuenta como salida nueva en la misma transacción. La venta se liquida de nuevo.
func (uc *SaleUseCase) UpdateSaleLines(ctx context.Context, saleID string, in dto.UpdateSaleLinesRequest) (*dto.SaleResponse, error) {
	lines := toSaleLines(in.Lines)
	if err := sales.ValidateLines(lines); err != nil {
		return nil, err
	}
	if err := uc.resolveLines(ctx, lines); err != nil {
		return nil, err
	}

	now := uc.now()
	var sale *entity.Sale
	completed := false
	err := uc.txRunner.RunSales(ctx, func(
		lotRepo repository.LotRepository,
		exitRepo repository.ExitRepository,
		saleRepo repository.SaleRepository,
	) error {
		var err error
		sale, err = saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status != entity.SaleStatusPending {
			return domain.ErrInvalidState
		}

		sold := make(map[string]decimal.Decimal, len(sale.Lines))
		for _, d := range sales.AggregateByLot(sale.Lines) {
			sold[d.ProductID+"/"+d.LotID] = d.Quantity
		}
		demands := sales.AggregateByLot(lines)
		sales.SortByLot(demands)
		wanted := make(map[string]bool, len(demands))
		for _, d := range demands {
			key := d.ProductID + "/" + d.LotID
			wanted[key] = true
			extra := d.Quantity.Sub(sold[key])
			if extra.IsNegative() {
				return domain.NewLineError(d.FirstIndex, d.ProductID, d.LotID, domain.ErrInvalidInput)
			}
			if extra.IsZero() {
				continue
			}
			price := lines[d.FirstIndex].UnitPrice
			if _, err := inventory.RecordExitInTx(ctx, lotRepo, exitRepo, inventory.ExitInput{
				ProductID: d.ProductID,
				LotID:     d.LotID,
				Quantity:  extra,
				UnitPrice: &price,
				Reason:    entity.ExitReasonSale,
				ClientID:  sale.ClientID,
				SaleID:    sale.ID,
				At:        now,
			}); err != nil {
				return domain.NewLineError(d.FirstIndex, d.ProductID, d.LotID, err)
			}
		}
		// Un lote ya vendido no puede desaparecer de la venta.
		for _, old := range sale.Lines {
			if !wanted[old.ProductID+"/"+old.LotID] {
				return domain.NewLineError(old.Position, old.ProductID, old.LotID, domain.ErrInvalidInput)
			}
		}

		for i := range lines {
			lines[i].ID = uuid.New().String()
			lines[i].SaleID = sale.ID
		}
		sale.Total = sales.PriceLines(lines)
		sale.Lines = lines
		sale.UpdatedAt = now
		if err := saleRepo.ReplaceLines(ctx, sale); err != nil {
			return err
		}
		if sales.Settle(sale) {
			completed = true
			return saleRepo.UpdateStatus(ctx, sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if completed {
		uc.metrics.SaleCompleted()
	}
	return ToSaleResponse(sale), nil
}

// DeleteSale elimina una venta sin pagos. Las salidas quedan como auditoría.
func (uc *SaleUseCase) DeleteSale(ctx context.Context, saleID string) error {
	return uc.txRunner.RunSales(ctx, func(
		_ repository.LotRepository,
		_ repository.ExitRepository,
		saleRepo repository.SaleRepository,
	) error {
		sale, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if len(sale.Payments) > 0 {
			return domain.ErrInvalidState
		}
		return saleRepo.Delete(ctx, saleID)
	})
}

// CancelSale pasa una venta PENDING a CANCELLED. El stock no vuelve a los lotes.
func (uc *SaleUseCase) CancelSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	var sale *entity.Sale
	err := uc.txRunner.RunSales(ctx, func(
		_ repository.LotRepository,
		_ repository.ExitRepository,
		saleRepo repository.SaleRepository,
	) error {
		var err error
		sale, err = saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if err := sales.Cancel(sale, uc.now()); err != nil {
			return err
		}
		return saleRepo.UpdateStatus(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(sale), nil
}

// resolveLines verifica producto y lote de cada línea y completa el precio con el del
// lote cuando la línea lo trae en cero.
func (uc *SaleUseCase) resolveLines(ctx context.Context, lines []entity.SaleLine) error {
	for i := range lines {
		lot, err := uc.ledger.Lot(ctx, lines[i].ProductID, lines[i].LotID)
		if err != nil {
			return domain.NewLineError(i, lines[i].ProductID, lines[i].LotID, err)
		}
		if lines[i].UnitPrice.IsZero() {
			lines[i].UnitPrice = lot.UnitPrice
		}
	}
	return nil
}

// checkAvailability compara la cantidad agregada por lote contra su remanente.
func (uc *SaleUseCase) checkAvailability(ctx context.Context, lines []entity.SaleLine) error {
	for _, d := range sales.AggregateByLot(lines) {
		available, err := uc.ledger.AvailableQuantity(ctx, d.ProductID, d.LotID)
		if err != nil {
			return domain.NewLineError(d.FirstIndex, d.ProductID, d.LotID, err)
		}
		if available.LessThan(d.Quantity) {
			uc.metrics.InsufficientStock()
			return domain.NewLineError(d.FirstIndex, d.ProductID, d.LotID, domain.ErrInsufficientStock)
		}
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

func toSaleLines(in []dto.SaleLineRequest) []entity.SaleLine {
	out := make([]entity.SaleLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.SaleLine{
			ProductID: l.ProductID,
			LotID:     l.LotID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return out
}

func toSaleResponses(list []*entity.Sale) []dto.SaleResponse {
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToSaleResponse(s))
	}
	return out
}

// ToSaleResponse mapea una venta a su DTO (con pagado y saldo calculados).
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	if s == nil {
		return nil
	}
	resp := &dto.SaleResponse{
		ID:        s.ID,
		ClientID:  s.ClientID,
		Lines:     make([]dto.SaleLineResponse, 0, len(s.Lines)),
		Payments:  make([]dto.PaymentResponse, 0, len(s.Payments)),
		Total:     s.Total,
		Paid:      s.Paid(),
		Balance:   s.Balance(),
		Status:    s.Status,
		SaleDate:  s.SaleDate,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for _, l := range s.Lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ProductID: l.ProductID,
			LotID:     l.LotID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	for _, p := range s.Payments {
		resp.Payments = append(resp.Payments, dto.PaymentResponse{
			ID:     p.ID,
			Amount: p.Amount,
			PaidAt: p.PaidAt,
		})
	}
	return resp
}
