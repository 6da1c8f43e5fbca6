package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, client_id, total, status, sale_date, created_at, updated_at`

// Create persiste cabecera, líneas y pagos iniciales. Llamar dentro de una tx.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `INSERT INTO sales (` + saleColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, s.ID, s.ClientID, s.Total, s.Status, s.SaleDate, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	if err := r.insertLines(ctx, s.Lines); err != nil {
		return err
	}
	for i := range s.Payments {
		if err := r.AddPayment(ctx, &s.Payments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SaleRepo) insertLines(ctx context.Context, lines []entity.SaleLine) error {
	query := `
		INSERT INTO sale_lines (id, sale_id, position, product_id, lot_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, l := range lines {
		_, err := r.q.Exec(ctx, query, l.ID, l.SaleID, l.Position, l.ProductID, l.LotID, l.Quantity, l.UnitPrice, l.Subtotal)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con líneas y pagos.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate obtiene la venta y bloquea su fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.ClientID, &s.Total, &s.Status, &s.SaleDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	sales := []*entity.Sale{&s}
	if err := r.loadChildren(ctx, sales); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByDateRange lista ventas con sale_date en [start, end].
func (r *SaleRepo) ListByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE sale_date BETWEEN $1 AND $2
		ORDER BY sale_date, id`
	return r.list(ctx, query, start, end)
}

// ListPendingByClient lista las ventas PENDING del cliente.
func (r *SaleRepo) ListPendingByClient(ctx context.Context, clientID string) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE client_id = $1 AND status = $2
		ORDER BY sale_date, id`
	return r.list(ctx, query, clientID, entity.SaleStatusPending)
}

func (r *SaleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	list := make([]*entity.Sale, 0)
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.ClientID, &s.Total, &s.Status, &s.SaleDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if err := r.loadChildren(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadChildren carga líneas y pagos de varias ventas con dos consultas.
func (r *SaleRepo) loadChildren(ctx context.Context, list []*entity.Sale) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Sale, len(list))
	ids := make([]string, 0, len(list))
	for _, s := range list {
		byID[s.ID] = s
		ids = append(ids, s.ID)
		s.Lines = make([]entity.SaleLine, 0)
		s.Payments = make([]entity.Payment, 0)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, position, product_id, lot_id, quantity, unit_price, subtotal
		FROM sale_lines WHERE sale_id = ANY($1)
		ORDER BY sale_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.Position, &l.ProductID, &l.LotID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			rows.Close()
			return fmt.Errorf("scan sale line: %w", err)
		}
		byID[l.SaleID].Lines = append(byID[l.SaleID].Lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, sale_id, amount, paid_at
		FROM payments WHERE sale_id = ANY($1)
		ORDER BY sale_id, paid_at, id`, ids)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Amount, &p.PaidAt); err != nil {
			return fmt.Errorf("scan payment: %w", err)
		}
		byID[p.SaleID].Payments = append(byID[p.SaleID].Payments, p)
	}
	return rows.Err()
}

// ReplaceLines borra las líneas actuales, inserta las nuevas y actualiza el total.
func (r *SaleRepo) ReplaceLines(ctx context.Context, s *entity.Sale) error {
	tag, err := r.q.Exec(ctx, `UPDATE sales SET total = $2, updated_at = $3 WHERE id = $1`, s.ID, s.Total, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update sale total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_lines WHERE sale_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete sale lines: %w", err)
	}
	return r.insertLines(ctx, s.Lines)
}

// AddPayment persiste un abono.
func (r *SaleRepo) AddPayment(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `INSERT INTO payments (id, sale_id, amount, paid_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.SaleID, p.Amount, p.PaidAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// UpdateStatus actualiza estado y fecha de modificación.
func (r *SaleRepo) UpdateStatus(ctx context.Context, s *entity.Sale) error {
	tag, err := r.q.Exec(ctx, `UPDATE sales SET status = $2, updated_at = $3 WHERE id = $1`, s.ID, s.Status, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la venta; líneas y pagos caen por ON DELETE CASCADE. Las salidas quedan.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExistsForProduct indica si alguna línea de venta referencia el producto.
func (r *SaleRepo) ExistsForProduct(ctx context.Context, productID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sale_lines WHERE product_id = $1)`, productID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("sale lines by product: %w", err)
	}
	return ok, nil
}
