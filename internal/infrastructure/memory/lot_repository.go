package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// LotRepository implementa repository.LotRepository en memoria.
type LotRepository struct{ base }

func (r *LotRepository) Create(ctx context.Context, l *entity.Lot) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.products[l.ProductID]; !ok {
		return domain.ErrNotFound
	}
	st.lots[l.ID] = *l
	return nil
}

func (r *LotRepository) GetByID(ctx context.Context, productID, lotID string) (*entity.Lot, error) {
	st, unlock := r.acquire()
	defer unlock()
	l, ok := st.lots[lotID]
	if !ok || l.ProductID != productID {
		return nil, nil
	}
	return &l, nil
}

func (r *LotRepository) Deplete(ctx context.Context, productID, lotID string, qty decimal.Decimal) (decimal.Decimal, error) {
	st, unlock := r.acquire()
	defer unlock()
	l, ok := st.lots[lotID]
	if !ok || l.ProductID != productID {
		return decimal.Zero, domain.ErrNotFound
	}
	if l.Remaining.LessThan(qty) {
		return l.Remaining, domain.ErrInsufficientStock
	}
	l.Remaining = l.Remaining.Sub(qty)
	st.lots[lotID] = l
	return l.Remaining, nil
}

func (r *LotRepository) ListAvailable(ctx context.Context, productID string) ([]*entity.Lot, error) {
	st, unlock := r.acquire()
	defer unlock()
	out := make([]*entity.Lot, 0)
	for _, l := range st.lots {
		if l.ProductID == productID && l.Remaining.GreaterThan(decimal.Zero) {
			lot := l
			out = append(out, &lot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
