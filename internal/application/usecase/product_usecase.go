package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-lotes-api/internal/application/dto"
	"github.com/jhoicas/ventas-lotes-api/internal/application/inventory"
	"github.com/jhoicas/ventas-lotes-api/internal/domain"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/entity"
	domaininv "github.com/jhoicas/ventas-lotes-api/internal/domain/inventory"
	"github.com/jhoicas/ventas-lotes-api/internal/domain/repository"
)

// ProductUseCase casos de uso del catálogo. La existencia se calcula desde los lotes y
// nunca se guarda en el producto.
type ProductUseCase struct {
	repo       repository.ProductRepository
	lotRepo    repository.LotRepository
	exitRepo   repository.ExitRepository
	saleRepo   repository.SaleRepository
	clientRepo repository.ClientRepository
	now        func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	lotRepo repository.LotRepository,
	exitRepo repository.ExitRepository,
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
) *ProductUseCase {
	return &ProductUseCase{
		repo:       repo,
		lotRepo:    lotRepo,
		exitRepo:   exitRepo,
		saleRepo:   saleRepo,
		clientRepo: clientRepo,
		now:        time.Now,
	}
}

// Create crea un nuevo producto sin lotes.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || !entity.ValidUnitMeasure(in.UnitMeasure) {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        name,
		UnitMeasure: in.UnitMeasure,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product, decimal.Zero), nil
}

// GetByID devuelve el detalle: lotes con existencia, costo promedio y salidas (recientes
// primero). Las salidas por venta llevan el nombre del cliente.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductDetailResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListAvailable(ctx, id)
	if err != nil {
		return nil, err
	}
	exits, err := uc.exitRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProductDetailResponse{
		ProductResponse: *toProductResponse(product, domaininv.OnHand(lots)),
		AverageCost:     domaininv.AverageCost(lots).Round(domain.Scale),
		StockValue:      domaininv.StockValue(lots),
		Lots:            make([]dto.LotResponse, 0, len(lots)),
		Exits:           make([]dto.ExitResponse, 0, len(exits)),
	}
	for _, l := range lots {
		resp.Lots = append(resp.Lots, *inventory.ToLotResponse(l))
	}
	names := map[string]string{}
	for _, e := range exits {
		out := inventory.ToExitResponse(e)
		if e.ClientID != "" {
			name, ok := names[e.ClientID]
			if !ok {
				client, err := uc.clientRepo.GetByID(ctx, e.ClientID)
				if err != nil {
					return nil, err
				}
				if client != nil {
					name = client.Name
				}
				names[e.ClientID] = name
			}
			out.ClientName = name
		}
		resp.Exits = append(resp.Exits, *out)
	}
	return resp, nil
}

// Update actualiza nombre y unidad. Lotes y existencia se manejan aparte.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.UnitMeasure != nil {
		if !entity.ValidUnitMeasure(*in.UnitMeasure) {
			return nil, domain.ErrInvalidInput
		}
		product.UnitMeasure = *in.UnitMeasure
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	onHand, err := uc.repo.OnHand(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, onHand[id]), nil
}

// List lista productos con su existencia (una sola consulta agregada por página).
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	onHand, err := uc.repo.OnHand(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p, onHand[p.ID]))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina el producto con sus lotes y salidas. Si alguna venta lo referencia
// devuelve domain.ErrReferenced.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	used, err := uc.saleRepo.ExistsForProduct(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrReferenced
	}
	return uc.repo.Delete(ctx, id)
}

func toProductResponse(p *entity.Product, onHand decimal.Decimal) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		UnitMeasure: p.UnitMeasure,
		OnHand:      onHand,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
