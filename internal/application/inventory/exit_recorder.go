package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
	"github.com/jhoicas/ventas-lotes-api/pkg/metrics"
)

// Tipos de salida para métricas.
const (
	ExitKindManual = "manual"
	ExitKindSale   = "sale"
)

// ExitInput datos de una salida. UnitPrice, ClientID y SaleID solo los informan las
// salidas por venta; el cliente ya viene validado por la venta.
type ExitInput struct {
	ProductID string
	LotID     string
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
	Reason    string
	ClientID  string
	SaleID    string
	At        time.Time
}

// ExitRecorder registra salidas de stock: descuenta el lote y deja el registro de auditoría
// en la misma transacción. Es el único camino para reducir stock desde fuera.
type ExitRecorder struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	metrics     *metrics.Metrics
	now         Clock
}

// NewExitRecorder construye el caso de uso. m puede ser nil.
func NewExitRecorder(txRunner TxRunner, productRepo repository.ProductRepository, m *metrics.Metrics) *ExitRecorder {
	return &ExitRecorder{
		txRunner:    txRunner,
		productRepo: productRepo,
		metrics:     m,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas).
func (r *ExitRecorder) WithClock(c Clock) *ExitRecorder {
	r.now = c
	return r
}

// RecordExit registra una baja manual (merma, daño, ajuste) contra un lote. Las bajas
// manuales no llevan cliente.
// Si el lote no alcanza devuelve domain.ErrInsufficientStock y no escribe nada.
func (r *ExitRecorder) RecordExit(ctx context.Context, productID string, in dto.RecordExitRequest) (*dto.ExitResponse, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || !domain.WithinScale(in.Quantity) || strings.TrimSpace(in.Reason) == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := r.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	var exit *entity.Exit
	err = r.txRunner.Run(ctx, func(lotRepo repository.LotRepository, exitRepo repository.ExitRepository) error {
		var txErr error
		exit, txErr = RecordExitInTx(ctx, lotRepo, exitRepo, ExitInput{
			ProductID: productID,
			LotID:     in.LotID,
			Quantity:  in.Quantity,
			Reason:    strings.TrimSpace(in.Reason),
			At:        r.now(),
		})
		return txErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			r.metrics.InsufficientStock()
		}
		return nil, err
	}
	r.metrics.StockExit(ExitKindManual, 1)
	return ToExitResponse(exit), nil
}

// RecordExitInTx descuenta el lote y guarda la salida usando los repositorios de una
// transacción abierta por el llamador. Ante error el llamador debe hacer Rollback.
func RecordExitInTx(ctx context.Context, lotRepo repository.LotRepository, exitRepo repository.ExitRepository, in ExitInput) (*entity.Exit, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || !domain.WithinScale(in.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	if _, err := lotRepo.Deplete(ctx, in.ProductID, in.LotID, in.Quantity); err != nil {
		return nil, err
	}
	at := in.At
	if at.IsZero() {
		at = time.Now()
	}
	exit := &entity.Exit{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		LotID:     in.LotID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Reason:    in.Reason,
		ClientID:  in.ClientID,
		SaleID:    in.SaleID,
		CreatedAt: at,
	}
	if err := exitRepo.Create(ctx, exit); err != nil {
		return nil, err
	}
	return exit, nil
}

// ToExitResponse mapea una salida a su DTO.
func ToExitResponse(e *entity.Exit) *dto.ExitResponse {
	if e == nil {
		return nil
	}
	return &dto.ExitResponse{
		ID:        e.ID,
		ProductID: e.ProductID,
		LotID:     e.LotID,
		Quantity:  e.Quantity,
		UnitPrice: e.UnitPrice,
		Reason:    e.Reason,
		ClientID:  e.ClientID,
		SaleID:    e.SaleID,
		CreatedAt: e.CreatedAt,
	}
}
