package entity

import "time"

// Unidades de medida admitidas para un producto.
const (
	UnitPound = "lb"     // peso
	UnitPiece = "unidad" // unidad discreta
	UnitBox   = "caja"   // contenedor
)

// ValidUnitMeasure indica si u es una de las unidades admitidas.
func ValidUnitMeasure(u string) bool {
	switch u {
	case UnitPound, UnitPiece, UnitBox:
		return true
	}
	return false
}

// Product representa un producto del catálogo. Es dueño de sus lotes y salidas;
// la existencia (on-hand) nunca se guarda, se calcula desde los lotes.
type Product struct {
	ID          string
	Name        string
	UnitMeasure string // lb, unidad, caja
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
