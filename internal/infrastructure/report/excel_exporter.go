// Package report genera el reporte de ventas en Excel con excelize.
package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/ventas-lotes-api/internal/application/sales"
)

const sheetName = "Ventas"

var headings = []string{
	"Venta", "Fecha", "Cliente", "Estado", "Producto", "Lote",
	"Cantidad", "Precio Unit.", "Subtotal", "Total Venta", "Pagado", "Saldo",
}

var _ sales.SalesReportExporter = (*ExcelExporter)(nil)

// ExcelExporter implementa sales.SalesReportExporter.
type ExcelExporter struct{}

// NewExcelExporter construye el exportador.
func NewExcelExporter() *ExcelExporter { return &ExcelExporter{} }

// ExportSales escribe una hoja con encabezados y una fila por línea de venta.
// La primera fila indica el rango consultado; los encabezados van en la fila 2.
func (e *ExcelExporter) ExportSales(_ context.Context, start, end time.Time, rows []sales.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}

	title := fmt.Sprintf("Ventas del %s al %s", start.Format("02/01/2006"), end.Format("02/01/2006"))
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}
	for i, h := range headings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headings), 2)
	if err := f.SetCellStyle(sheetName, "A2", last, bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		values := []any{
			r.SaleID,
			r.SaleDate.Format("2006-01-02"),
			r.ClientName,
			r.Status,
			r.ProductName,
			r.LotID,
			r.Quantity.InexactFloat64(),
			r.UnitPrice.InexactFloat64(),
			r.Subtotal.InexactFloat64(),
			r.SaleTotal.InexactFloat64(),
			r.SalePaid.InexactFloat64(),
			r.SaleTotal.Sub(r.SalePaid).InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
