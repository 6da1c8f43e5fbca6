package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/ventas-lotes-api/internal/application/sales"
)

func TestExportSales(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	rows := []sales.ReportRow{
		{
			SaleID: "s1", SaleDate: start, ClientName: "Doña Marta", Status: "PENDING",
			ProductName: "Arroz", LotID: "l1",
			Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(5), Subtotal: decimal.NewFromInt(20),
			SaleTotal: decimal.NewFromInt(20), SalePaid: decimal.NewFromInt(8),
		},
	}

	data, err := NewExcelExporter().ExportSales(context.Background(), start, end, rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Ventas del 01/06/2024 al 30/06/2024", got[0][0])
	assert.Equal(t, headings, got[1])
	assert.Equal(t, []string{"s1", "2024-06-01", "Doña Marta", "PENDING", "Arroz", "l1", "4", "5", "20", "20", "8", "12"}, got[2])
}

func TestExportSales_Empty(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	data, err := NewExcelExporter().ExportSales(context.Background(), day, day, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
