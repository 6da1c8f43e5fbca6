package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// SaleRepository implementa repository.SaleRepository en memoria.
type SaleRepository struct{ base }

func (r *SaleRepository) Create(ctx context.Context, s *entity.Sale) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.sales[s.ID]; ok {
		return domain.ErrConflict
	}
	st.sales[s.ID] = cloneSale(*s)
	return nil
}

func (r *SaleRepository) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	st, unlock := r.acquire()
	defer unlock()
	s, ok := st.sales[id]
	if !ok {
		return nil, nil
	}
	out := cloneSale(s)
	return &out, nil
}

// GetForUpdate no necesita bloqueo adicional: la transacción ya tiene el mutex del store.
func (r *SaleRepository) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Sale, error) {
	return r.filter(func(s entity.Sale) bool {
		return !s.SaleDate.Before(start) && !s.SaleDate.After(end)
	}), nil
}

func (r *SaleRepository) ListPendingByClient(ctx context.Context, clientID string) ([]*entity.Sale, error) {
	return r.filter(func(s entity.Sale) bool {
		return s.ClientID == clientID && s.Status == entity.SaleStatusPending
	}), nil
}

func (r *SaleRepository) filter(keep func(entity.Sale) bool) []*entity.Sale {
	st, unlock := r.acquire()
	defer unlock()
	out := make([]*entity.Sale, 0)
	for _, s := range st.sales {
		if keep(s) {
			c := cloneSale(s)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].SaleDate.Before(out[j].SaleDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *SaleRepository) ReplaceLines(ctx context.Context, s *entity.Sale) error {
	st, unlock := r.acquire()
	defer unlock()
	cur, ok := st.sales[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Lines = append([]entity.SaleLine(nil), s.Lines...)
	cur.Total = s.Total
	cur.UpdatedAt = s.UpdatedAt
	st.sales[s.ID] = cur
	return nil
}

func (r *SaleRepository) AddPayment(ctx context.Context, p *entity.Payment) error {
	st, unlock := r.acquire()
	defer unlock()
	cur, ok := st.sales[p.SaleID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Payments = append(cur.Payments, *p)
	st.sales[p.SaleID] = cur
	return nil
}

func (r *SaleRepository) UpdateStatus(ctx context.Context, s *entity.Sale) error {
	st, unlock := r.acquire()
	defer unlock()
	cur, ok := st.sales[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = s.Status
	cur.UpdatedAt = s.UpdatedAt
	st.sales[s.ID] = cur
	return nil
}

func (r *SaleRepository) Delete(ctx context.Context, id string) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(st.sales, id)
	return nil
}

func (r *SaleRepository) ExistsForProduct(ctx context.Context, productID string) (bool, error) {
	st, unlock := r.acquire()
	defer unlock()
	for _, s := range st.sales {
		for _, l := range s.Lines {
			if l.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}
