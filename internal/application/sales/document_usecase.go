package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
)

// DocumentUseCase genera documentos de ventas: recibo PDF y reporte en hoja de cálculo.
type DocumentUseCase struct {
	saleRepo    repository.SaleRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	receipts    ReceiptPDFGenerator
	reports     SalesReportExporter
}

// NewDocumentUseCase construye el caso de uso inyectando todas sus dependencias.
func NewDocumentUseCase(
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	receipts ReceiptPDFGenerator,
	reports SalesReportExporter,
) *DocumentUseCase {
	return &DocumentUseCase{
		saleRepo:    saleRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		receipts:    receipts,
		reports:     reports,
	}
}

// DownloadReceipt genera el recibo PDF de la venta.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si la venta no existe.
func (uc *DocumentUseCase) DownloadReceipt(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.ErrNotFound
	}
	client, err := uc.clientRepo.GetByID(ctx, sale.ClientID)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: obtener cliente: %w", err)
	}
	if client == nil {
		client = &entity.Client{ID: sale.ClientID, Name: sale.ClientID}
	}

	products := newProductNames(uc.productRepo)
	lines := make([]ReceiptLine, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		p := products.get(ctx, l.ProductID)
		lines = append(lines, ReceiptLine{SaleLine: l, ProductName: p.Name, UnitMeasure: p.UnitMeasure})
	}

	pdfBytes, err = uc.receipts.GenerateSaleReceipt(ctx, sale, client, lines)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("recibo_%s.pdf", shortID(sale.ID)), nil
}

// ExportSales genera el reporte de ventas del rango [start, end], una fila por línea.
func (uc *DocumentUseCase) ExportSales(ctx context.Context, start, end time.Time) (data []byte, filename string, err error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil, "", domain.ErrInvalidInput
	}
	list, err := uc.saleRepo.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: listar ventas: %w", err)
	}

	products := newProductNames(uc.productRepo)
	clients := make(map[string]string)
	rows := make([]ReportRow, 0, len(list))
	for _, s := range list {
		name, ok := clients[s.ClientID]
		if !ok {
			name = s.ClientID
			if c, cErr := uc.clientRepo.GetByID(ctx, s.ClientID); cErr == nil && c != nil {
				name = c.Name
			}
			clients[s.ClientID] = name
		}
		paid := s.Paid()
		for _, l := range s.Lines {
			rows = append(rows, ReportRow{
				SaleID:      s.ID,
				SaleDate:    s.SaleDate,
				ClientName:  name,
				Status:      s.Status,
				ProductName: products.get(ctx, l.ProductID).Name,
				LotID:       l.LotID,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				Subtotal:    l.Subtotal,
				SaleTotal:   s.Total,
				SalePaid:    paid,
			})
		}
	}

	data, err = uc.reports.ExportSales(ctx, start, end, rows)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("ventas_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	return data, filename, nil
}

// productNames cachea productos por ID durante una misma generación.
type productNames struct {
	repo  repository.ProductRepository
	cache map[string]entity.Product
}

func newProductNames(repo repository.ProductRepository) *productNames {
	return &productNames{repo: repo, cache: make(map[string]entity.Product)}
}

func (p *productNames) get(ctx context.Context, id string) entity.Product {
	if v, ok := p.cache[id]; ok {
		return v
	}
	v := entity.Product{ID: id, Name: "Producto " + id} // fallback
	if product, err := p.repo.GetByID(ctx, id); err == nil && product != nil {
		v = *product
	}
	p.cache[id] = v
	return v
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
