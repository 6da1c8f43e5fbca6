package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, product_id, initial_quantity, remaining, unit_cost, unit_price, created_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(&l.ID, &l.ProductID, &l.InitialQuantity, &l.Remaining, &l.UnitCost, &l.UnitPrice, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	query := `INSERT INTO lots (` + lotColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, l.ID, l.ProductID, l.InitialQuantity, l.Remaining, l.UnitCost, l.UnitPrice, l.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene el lote si pertenece al producto.
func (r *LotRepo) GetByID(ctx context.Context, productID, lotID string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1 AND product_id = $2`
	l, err := scanLot(r.q.QueryRow(ctx, query, lotID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

// Deplete resta qty en un único UPDATE condicional: la verificación y la resta son
// atómicas en la fila, sin SELECT FOR UPDATE previo. Si no se actualiza ninguna fila se
// consulta el lote para distinguir inexistente de insuficiente.
func (r *LotRepo) Deplete(ctx context.Context, productID, lotID string, qty decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE lots SET remaining = remaining - $3
		WHERE id = $2 AND product_id = $1 AND remaining >= $3
		RETURNING remaining`
	var remaining decimal.Decimal
	err := r.q.QueryRow(ctx, query, productID, lotID, qty).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("deplete lot: %w", err)
	}

	err = r.q.QueryRow(ctx, `SELECT remaining FROM lots WHERE id = $2 AND product_id = $1`, productID, lotID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("get lot remaining: %w", err)
	}
	return remaining, domain.ErrInsufficientStock
}

// ListAvailable lista los lotes con remaining > 0, el más antiguo primero.
func (r *LotRepo) ListAvailable(ctx context.Context, productID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots
		WHERE product_id = $1 AND remaining > 0
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Lot, 0)
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
