// Package memory implementa los puertos de persistencia en memoria. Sirve para
// pruebas y para levantar la API sin PostgreSQL (STORE_DRIVER=memory).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
)

type state struct {
	clients  map[string]entity.Client
	products map[string]entity.Product
	lots     map[string]entity.Lot
	exits    []entity.Exit
	sales    map[string]entity.Sale
}

func newState() *state {
	return &state{
		clients:  map[string]entity.Client{},
		products: map[string]entity.Product{},
		lots:     map[string]entity.Lot{},
		sales:    map[string]entity.Sale{},
	}
}

func (s *state) clone() *state {
	c := &state{
		clients:  make(map[string]entity.Client, len(s.clients)),
		products: make(map[string]entity.Product, len(s.products)),
		lots:     make(map[string]entity.Lot, len(s.lots)),
		exits:    append([]entity.Exit(nil), s.exits...),
		sales:    make(map[string]entity.Sale, len(s.sales)),
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = cloneSale(v)
	}
	return c
}

func cloneSale(s entity.Sale) entity.Sale {
	s.Lines = append([]entity.SaleLine(nil), s.Lines...)
	s.Payments = append([]entity.Payment(nil), s.Payments...)
	return s
}

// Store guarda todo el estado bajo un único mutex. Cada operación suelta es atómica;
// una transacción trabaja sobre una copia que reemplaza al estado solo en el commit.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// base resuelve el estado sobre el que opera un repositorio: el de la transacción
// (ya bloqueada) o el del store, tomando el mutex por operación.
type base struct {
	store *Store
	tx    *state
}

func (b base) acquire() (*state, func()) {
	if b.tx != nil {
		return b.tx, func() {}
	}
	b.store.mu.Lock()
	return b.store.st, b.store.mu.Unlock
}

// Repositorios fuera de transacción. No deben usarse dentro de Run/RunSales
// (el mutex no es reentrante).
func (s *Store) Products() repository.ProductRepository { return &ProductRepository{base{store: s}} }
func (s *Store) Lots() repository.LotRepository         { return &LotRepository{base{store: s}} }
func (s *Store) Exits() repository.ExitRepository       { return &ExitRepository{base{store: s}} }
func (s *Store) Sales() repository.SaleRepository       { return &SaleRepository{base{store: s}} }
func (s *Store) Clients() repository.ClientRepository   { return &ClientRepository{base{store: s}} }

// AddClient registra un cliente (los clientes se gestionan fuera del servicio).
func (s *Store) AddClient(c entity.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.clients[c.ID] = c
}

func (s *Store) begin(ctx context.Context) (*state, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.st.clone(), nil
}

func (s *Store) commit(ctx context.Context, work *state) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Run ejecuta fn con repositorios de lote y salida atados a una transacción.
// Si fn devuelve error nada de lo hecho queda visible.
func (s *Store) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	exitRepo repository.ExitRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work, err := s.begin(ctx)
	if err != nil {
		return err
	}
	tx := base{store: s, tx: work}
	if err := fn(&LotRepository{tx}, &ExitRepository{tx}); err != nil {
		return err
	}
	return s.commit(ctx, work)
}

// RunSales igual que Run pero con el repositorio de ventas.
func (s *Store) RunSales(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	exitRepo repository.ExitRepository,
	saleRepo repository.SaleRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work, err := s.begin(ctx)
	if err != nil {
		return err
	}
	tx := base{store: s, tx: work}
	if err := fn(&LotRepository{tx}, &ExitRepository{tx}, &SaleRepository{tx}); err != nil {
		return err
	}
	return s.commit(ctx, work)
}
