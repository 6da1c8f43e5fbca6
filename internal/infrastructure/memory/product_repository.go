package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// ProductRepository implementa repository.ProductRepository en memoria.
type ProductRepository struct{ base }

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.products[p.ID]; ok {
		return domain.ErrConflict
	}
	st.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	st, unlock := r.acquire()
	defer unlock()
	p, ok := st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	st.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	st, unlock := r.acquire()
	defer unlock()
	all := make([]entity.Product, 0, len(st.products))
	for _, p := range st.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return []*entity.Product{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]*entity.Product, 0, end-offset)
	for i := offset; i < end; i++ {
		p := all[i]
		out = append(out, &p)
	}
	return out, nil
}

func (r *ProductRepository) OnHand(ctx context.Context, productIDs []string) (map[string]decimal.Decimal, error) {
	st, unlock := r.acquire()
	defer unlock()
	out := make(map[string]decimal.Decimal, len(productIDs))
	want := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		want[id] = true
		out[id] = decimal.Zero
	}
	for _, l := range st.lots {
		if want[l.ProductID] && l.Remaining.GreaterThan(decimal.Zero) {
			out[l.ProductID] = out[l.ProductID].Add(l.Remaining)
		}
	}
	return out, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	st, unlock := r.acquire()
	defer unlock()
	if _, ok := st.products[id]; !ok {
		return domain.ErrNotFound
	}
	// Bajo el mismo bloqueo que la baja: una venta creada después de la verificación del
	// caso de uso también la impide.
	for _, s := range st.sales {
		for _, l := range s.Lines {
			if l.ProductID == id {
				return domain.ErrReferenced
			}
		}
	}
	delete(st.products, id)
	for lotID, l := range st.lots {
		if l.ProductID == id {
			delete(st.lots, lotID)
		}
	}
	kept := st.exits[:0:0]
	for _, e := range st.exits {
		if e.ProductID != id {
			kept = append(kept, e)
		}
	}
	st.exits = kept
	return nil
}
