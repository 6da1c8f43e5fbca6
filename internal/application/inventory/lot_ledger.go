package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
	"github.com/jhoicas/ventas-lotes-api/pkg/metrics"
)

// LotLedger administra los lotes de cada producto: altas, consultas de existencia
// y el descuento atómico (verificar y restar en un solo paso).
type LotLedger struct {
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository
	metrics     *metrics.Metrics
	now         Clock
}

// NewLotLedger construye el ledger. m puede ser nil.
func NewLotLedger(productRepo repository.ProductRepository, lotRepo repository.LotRepository, m *metrics.Metrics) *LotLedger {
	return &LotLedger{
		productRepo: productRepo,
		lotRepo:     lotRepo,
		metrics:     m,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas).
func (l *LotLedger) WithClock(c Clock) *LotLedger {
	l.now = c
	return l
}

// AddLot registra una entrada de compra. Remaining inicia igual a la cantidad.
func (l *LotLedger) AddLot(ctx context.Context, productID string, in dto.AddLotRequest) (*dto.LotResponse, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || in.UnitCost.LessThan(decimal.Zero) || in.UnitPrice.LessThan(decimal.Zero) ||
		!domain.WithinScale(in.Quantity, in.UnitCost, in.UnitPrice) {
		return nil, domain.ErrInvalidInput
	}
	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	lot := &entity.Lot{
		ID:              uuid.New().String(),
		ProductID:       productID,
		InitialQuantity: in.Quantity,
		Remaining:       in.Quantity,
		UnitCost:        in.UnitCost,
		UnitPrice:       in.UnitPrice,
		CreatedAt:       l.now(),
	}
	if err := l.lotRepo.Create(ctx, lot); err != nil {
		return nil, err
	}
	return ToLotResponse(lot), nil
}

// Lot devuelve el lote del producto o domain.ErrNotFound.
func (l *LotLedger) Lot(ctx context.Context, productID, lotID string) (*entity.Lot, error) {
	if productID == "" || lotID == "" {
		return nil, domain.ErrNotFound
	}
	lot, err := l.lotRepo.GetByID(ctx, productID, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return lot, nil
}

// AvailableQuantity devuelve el remanente del lote.
func (l *LotLedger) AvailableQuantity(ctx context.Context, productID, lotID string) (decimal.Decimal, error) {
	lot, err := l.Lot(ctx, productID, lotID)
	if err != nil {
		return decimal.Zero, err
	}
	return lot.Remaining, nil
}

// ReserveAndDeplete descuenta qty del lote si alcanza y devuelve el nuevo remanente.
// Dos llamadas concurrentes sobre el mismo lote nunca dejan el remanente negativo.
// No registra salida: para eso está ExitRecorder.
func (l *LotLedger) ReserveAndDeplete(ctx context.Context, productID, lotID string, qty decimal.Decimal) (decimal.Decimal, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	remaining, err := l.lotRepo.Deplete(ctx, productID, lotID, qty)
	if errors.Is(err, domain.ErrInsufficientStock) {
		l.metrics.InsufficientStock()
	}
	return remaining, err
}

// ListAvailableLots lista los lotes con existencia, el más antiguo primero.
func (l *LotLedger) ListAvailableLots(ctx context.Context, productID string) ([]dto.LotResponse, error) {
	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := l.lotRepo.ListAvailable(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LotResponse, 0, len(lots))
	for _, lot := range lots {
		out = append(out, *ToLotResponse(lot))
	}
	return out, nil
}

// ToLotResponse mapea un lote a su DTO.
func ToLotResponse(lot *entity.Lot) *dto.LotResponse {
	if lot == nil {
		return nil
	}
	return &dto.LotResponse{
		ID:              lot.ID,
		ProductID:       lot.ProductID,
		InitialQuantity: lot.InitialQuantity,
		Remaining:       lot.Remaining,
		UnitCost:        lot.UnitCost,
		UnitPrice:       lot.UnitPrice,
		CreatedAt:       lot.CreatedAt,
	}
}
