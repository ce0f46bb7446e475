package service

import (
	"context"
	"strings"
	"time"

	"github.com/egannguyen/sales-orders/internal/authz"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/repository"
	"github.com/google/uuid"
)

// ProductService manages the shared product catalog. Products are not
// scoped to a seller.
type ProductService struct {
	products repository.ProductRepository
	now      func() time.Time
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products, now: time.Now}
}

type ProductParams struct {
	Name  string  `json:"name"`
	Stock int     `json:"stock"`
	Price float64 `json:"price"`
}

func (s *ProductService) Products(ctx context.Context) ([]entity.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *ProductService) Product(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, entity.ErrProductNotFound)
	}
	return p, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, sellerID string, p ProductParams) (*entity.Product, error) {
	product := entity.Product{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(p.Name),
		Stock:     p.Stock,
		Price:     p.Price,
		CreatedAt: s.now().UTC(),
	}
	if err := authz.Permit(sellerID, product); err != nil {
		return nil, err
	}
	if err := validateProduct(&product.Name, &product.Stock, &product.Price); err != nil {
		return nil, err
	}
	return s.products.Insert(ctx, product)
}

func (s *ProductService) UpdateProduct(ctx context.Context, sellerID, id string, upd repository.ProductUpdate) (*entity.Product, error) {
	if err := authz.Permit(sellerID, entity.Product{ID: id}); err != nil {
		return nil, err
	}
	if err := validateProduct(upd.Name, upd.Stock, upd.Price); err != nil {
		return nil, err
	}
	p, err := s.products.Update(ctx, id, upd)
	if err != nil {
		return nil, notFound(err, entity.ErrProductNotFound)
	}
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, sellerID, id string) error {
	if err := authz.Permit(sellerID, entity.Product{ID: id}); err != nil {
		return err
	}
	return notFound(s.products.Delete(ctx, id), entity.ErrProductNotFound)
}

// validateProduct checks the non-nil fields.
func validateProduct(name *string, stock *int, price *float64) error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return entity.InvalidInputf("name is required")
	}
	if stock != nil && *stock < 0 {
		return entity.InvalidInputf("stock must not be negative")
	}
	if price != nil && *price < 0 {
		return entity.InvalidInputf("price must not be negative")
	}
	return nil
}
