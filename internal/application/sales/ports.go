package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
)

// SalesTxRunner ejecuta una función dentro de una transacción que incluye lotes, salidas y ventas.
type SalesTxRunner interface {
	RunSales(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		exitRepo repository.ExitRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// ReceiptLine línea de venta enriquecida con los datos del producto para el recibo.
type ReceiptLine struct {
	entity.SaleLine
	ProductName string
	UnitMeasure string
}

// ReceiptPDFGenerator genera el recibo PDF de una venta.
type ReceiptPDFGenerator interface {
	GenerateSaleReceipt(ctx context.Context, sale *entity.Sale, client *entity.Client, lines []ReceiptLine) ([]byte, error)
}

// ReportRow fila del reporte de ventas: una por línea de venta.
type ReportRow struct {
	SaleID      string
	SaleDate    time.Time
	ClientName  string
	Status      string
	ProductName string
	LotID       string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	SaleTotal   decimal.Decimal
	SalePaid    decimal.Decimal
}

// SalesReportExporter genera el archivo de reporte de ventas.
type SalesReportExporter interface {
	ExportSales(ctx context.Context, start, end time.Time, rows []ReportRow) ([]byte, error)
}
