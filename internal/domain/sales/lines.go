package sales

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// LotDemand es la cantidad total pedida a un lote dentro de una venta.
// FirstIndex es la primera línea que referencia el lote (para reportar errores).
type LotDemand struct {
	ProductID  string
	LotID      string
	Quantity   decimal.Decimal
	FirstIndex int
}

// ValidateLines verifica forma de las líneas: al menos una, ids presentes,
// cantidad > 0, precio unitario >= 0 y ambos dentro de domain.Scale decimales.
func ValidateLines(lines []entity.SaleLine) error {
	if len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	for i, l := range lines {
		if l.ProductID == "" || l.LotID == "" {
			return domain.NewLineError(i, l.ProductID, l.LotID, domain.ErrInvalidInput)
		}
		if !l.Quantity.GreaterThan(decimal.Zero) || l.UnitPrice.LessThan(decimal.Zero) ||
			!domain.WithinScale(l.Quantity, l.UnitPrice) {
			return domain.NewLineError(i, l.ProductID, l.LotID, domain.ErrInvalidInput)
		}
	}
	return nil
}

// AggregateByLot suma las cantidades de líneas que apuntan al mismo lote.
// Dos líneas de 6 contra un lote de 10 deben validarse como 12, no como 6 y 6.
// El orden del resultado es el de primera aparición.
func AggregateByLot(lines []entity.SaleLine) []LotDemand {
	pos := make(map[string]int, len(lines))
	out := make([]LotDemand, 0, len(lines))
	for i, l := range lines {
		key := l.ProductID + "/" + l.LotID
		if j, ok := pos[key]; ok {
			out[j].Quantity = out[j].Quantity.Add(l.Quantity)
			continue
		}
		pos[key] = len(out)
		out = append(out, LotDemand{ProductID: l.ProductID, LotID: l.LotID, Quantity: l.Quantity, FirstIndex: i})
	}
	return out
}

// SortByLot ordena las demandas por lote. Todas las transacciones que descuentan varios
// lotes toman los bloqueos de fila en este orden, así dos ventas concurrentes con los
// mismos lotes en distinto orden no se bloquean en cruz.
func SortByLot(demands []LotDemand) {
	sort.SliceStable(demands, func(a, b int) bool { return demands[a].LotID < demands[b].LotID })
}

// LockOrder devuelve los índices de las líneas en el orden de SortByLot; líneas del mismo
// lote conservan su orden original.
func LockOrder(lines []entity.SaleLine) []int {
	idx := make([]int, len(lines))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return lines[idx[a]].LotID < lines[idx[b]].LotID })
	return idx
}

// PriceLines calcula el subtotal (cantidad * precio, redondeado a domain.Scale) de cada
// línea, asigna la posición y devuelve el total como suma de los subtotales guardados.
func PriceLines(lines []entity.SaleLine) decimal.Decimal {
	total := decimal.Zero
	for i := range lines {
		lines[i].Position = i
		lines[i].Subtotal = lines[i].Quantity.Mul(lines[i].UnitPrice).Round(domain.Scale)
		total = total.Add(lines[i].Subtotal)
	}
	return total
}
