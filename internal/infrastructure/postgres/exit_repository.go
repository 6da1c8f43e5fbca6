package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
)

var _ repository.ExitRepository = (*ExitRepo)(nil)

// ExitRepo implementación de ExitRepository sobre PostgreSQL. Las salidas no se modifican.
type ExitRepo struct {
	q Querier
}

// NewExitRepository construye el adaptador de salidas. Pasar pool o tx (Querier).
func NewExitRepository(q Querier) *ExitRepo {
	return &ExitRepo{q: q}
}

// Create persiste una salida.
func (r *ExitRepo) Create(ctx context.Context, e *entity.Exit) error {
	query := `
		INSERT INTO exits (id, product_id, lot_id, quantity, unit_price, reason, client_id, sale_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.LotID, e.Quantity, e.UnitPrice, e.Reason,
		nullString(e.ClientID), nullString(e.SaleID), e.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert exit: %w", err)
	}
	return nil
}

// ListByProduct lista las salidas del producto, la más reciente primero.
func (r *ExitRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Exit, error) {
	query := `
		SELECT id, product_id, lot_id, quantity, unit_price, reason,
		       COALESCE(client_id, ''), COALESCE(sale_id, ''), created_at
		FROM exits
		WHERE product_id = $1
		ORDER BY created_at DESC, id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list exits: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Exit, 0)
	for rows.Next() {
		var e entity.Exit
		if err := rows.Scan(&e.ID, &e.ProductID, &e.LotID, &e.Quantity, &e.UnitPrice, &e.Reason,
			&e.ClientID, &e.SaleID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exit: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
