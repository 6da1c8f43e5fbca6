// Package pdf genera el recibo de una venta en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del negocio  │  N° Recibo + Fecha + Estado   │
//	│  CLIENTE: Nombre + dirección + teléfono                     │
//	│  TABLA: Cant | Producto | Lote | P.Unit | Subtotal           │
//	│  TOTALES: Total / Pagado / Saldo                             │
//	│  ABONOS: fecha y monto de cada pago                          │
//	│  FOOTER: QR con el ID de la venta                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/ventas-lotes-api/internal/application/sales"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var statusLabels = map[string]string{
	entity.SaleStatusPending:   "PENDIENTE",
	entity.SaleStatusCompleted: "PAGADA",
	entity.SaleStatusCancelled: "ANULADA",
}

var _ sales.ReceiptPDFGenerator = (*ReceiptGenerator)(nil)

// ReceiptGenerator implementa sales.ReceiptPDFGenerator usando Maroto v2.
type ReceiptGenerator struct {
	businessName string
	printer      *message.Printer
}

// NewReceiptGenerator construye el generador. Los montos se formatean en español.
func NewReceiptGenerator(businessName string) *ReceiptGenerator {
	return &ReceiptGenerator{
		businessName: businessName,
		printer:      message.NewPrinter(language.Spanish),
	}
}

// GenerateSaleReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateSaleReceipt(
	_ context.Context,
	sale *entity.Sale,
	client *entity.Client,
	lines []sales.ReceiptLine,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Recibo de venta", true).
		WithAuthor(g.businessName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.lineRows(lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(sale))
	m.AddRows(g.paymentRows(sale.Payments)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(35).Add(
		col.New(3).Add(code.NewQr(sale.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(text.New("Conserve este recibo como soporte de su compra.", props.Text{
			Size: 8, Top: 4, Left: 3, Color: colorGray,
		})),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *ReceiptGenerator) headerRow(sale *entity.Sale) core.Row {
	status := statusLabels[sale.Status]
	if status == "" {
		status = sale.Status
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.businessName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
		),
		col.New(5).Add(
			text.New("RECIBO DE VENTA", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New("N° "+shortID(sale.ID), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
			text.New("Fecha: "+sale.SaleDate.Format("02/01/2006")+"   Estado: "+status, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func clientRow(client *entity.Client) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(client.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s",
				nonEmpty(client.Address, "-"),
				nonEmpty(client.Phone, "-"),
			), props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 4, align.Left),
		h("Lote", 2, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

func (g *ReceiptGenerator) lineRows(lines []sales.ReceiptLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		qty := l.Quantity.String()
		if l.UnitMeasure != "" {
			qty += " " + l.UnitMeasure
		}
		out = append(out, row.New(7).Add(
			col.New(2).Add(text.New(qty, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(shortID(l.LotID), props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(g.Money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.Money(l.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func (g *ReceiptGenerator) totalsRow(sale *entity.Sale) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	balance := sale.Balance()
	balanceLabel := "SALDO:"
	if balance.IsNegative() {
		balanceLabel = "SALDO A FAVOR:"
		balance = balance.Neg()
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(label("Total:", 1), label("Pagado:", 7), label(balanceLabel, 13)),
		col.New(3).Add(value(g.Money(sale.Total), 1), value(g.Money(sale.Paid()), 7), value(g.Money(balance), 13)),
	)
}

func (g *ReceiptGenerator) paymentRows(payments []entity.Payment) []core.Row {
	if len(payments) == 0 {
		return nil
	}
	out := []core.Row{row.New(6).Add(col.New(12).Add(
		text.New("ABONOS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))}
	for _, p := range payments {
		out = append(out, row.New(5).Add(
			col.New(6).Add(text.New(p.PaidAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Left: 2})),
			col.New(6).Add(text.New(g.Money(p.Amount), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return out
}

// Money formatea un monto con separadores en español y dos decimales. Ej: 1234567.5 → "$1.234.567,50".
func (g *ReceiptGenerator) Money(d decimal.Decimal) string {
	return g.printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
