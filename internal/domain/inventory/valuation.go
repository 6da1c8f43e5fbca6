package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// OnHand suma el remanente de los lotes con existencia (> 0). Nunca se persiste.
func OnHand(lots []*entity.Lot) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lots {
		if l.Remaining.GreaterThan(decimal.Zero) {
			sum = sum.Add(l.Remaining)
		}
	}
	return sum
}

// AverageCost implementa el costo promedio ponderado de la existencia (servicio de dominio).
// CostoPromedio = Σ(remanente * costo) / Σ(remanente)
func AverageCost(lots []*entity.Lot) decimal.Decimal {
	qty := OnHand(lots)
	if qty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return StockValue(lots).Div(qty)
}

// StockValue valoriza la existencia al costo de compra de cada lote.
func StockValue(lots []*entity.Lot) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lots {
		if l.Remaining.GreaterThan(decimal.Zero) {
			sum = sum.Add(l.Remaining.Mul(l.UnitCost))
		}
	}
	return sum
}
