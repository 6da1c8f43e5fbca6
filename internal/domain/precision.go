package domain

import "github.com/shopspring/decimal"

// Scale es la cantidad de decimales que guarda la persistencia (NUMERIC(18,4)).
const Scale = 4

// WithinScale indica si todos los valores se representan sin pérdida con Scale decimales.
// 10.50000 es válido; 0.00005 no.
func WithinScale(values ...decimal.Decimal) bool {
	for _, v := range values {
		if !v.Equal(v.Truncate(Scale)) {
			return false
		}
	}
	return true
}
