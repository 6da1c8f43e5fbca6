package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// ExitRepository implementa repository.ExitRepository en memoria (solo inserción).
type ExitRepository struct{ base }

func (r *ExitRepository) Create(ctx context.Context, e *entity.Exit) error {
	st, unlock := r.acquire()
	defer unlock()
	if l, ok := st.lots[e.LotID]; !ok || l.ProductID != e.ProductID {
		return domain.ErrNotFound
	}
	st.exits = append(st.exits, *e)
	return nil
}

func (r *ExitRepository) ListByProduct(ctx context.Context, productID string) ([]*entity.Exit, error) {
	st, unlock := r.acquire()
	defer unlock()
	out := make([]*entity.Exit, 0)
	for i := len(st.exits) - 1; i >= 0; i-- {
		if st.exits[i].ProductID == productID {
			e := st.exits[i]
			out = append(out, &e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
