package memory

import (
	"context"

	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
)

// ClientRepository lectura de clientes en memoria. Los clientes se cargan con Store.AddClient.
type ClientRepository struct{ base }

func (r *ClientRepository) Exists(ctx context.Context, id string) (bool, error) {
	st, unlock := r.acquire()
	defer unlock()
	_, ok := st.clients[id]
	return ok, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	st, unlock := r.acquire()
	defer unlock()
	c, ok := st.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}
