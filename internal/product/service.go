package product

import (
	"context"

	"modakarina-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	GetProduct(ctx context.Context, id uint) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	CreateProduct(ctx context.Context, params CreateParams) (*Product, error)
	UpdateProduct(ctx context.Context, id uint, params UpdateParams) error
	DeactivateProduct(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	return s.repo.GetByID(ctx, GetOptions{ProductID: id, OnlyActive: true})
}

func (s *service) ListProducts(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx)
}

func (s *service) CreateProduct(ctx context.Context, params CreateParams) (*Product, error) {
	if params.Price < 0 || (params.PromoPrice != nil && *params.PromoPrice < 0) {
		return nil, ErrInvalidPrice
	}
	if params.Stock < 0 {
		return nil, ErrInvalidStock
	}

	p := &Product{
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		PromoPrice:  params.PromoPrice,
		Promo:       params.Promo,
		Stock:       params.Stock,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.Uint("product_id", p.ID),
		zap.String("name", p.Name),
	)

	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uint, params UpdateParams) error {
	if params.Price != nil && *params.Price < 0 {
		return ErrInvalidPrice
	}
	if params.PromoPrice != nil && *params.PromoPrice < 0 {
		return ErrInvalidPrice
	}
	if params.Stock != nil && *params.Stock < 0 {
		return ErrInvalidStock
	}

	return s.repo.Update(ctx, id, params)
}

func (s *service) DeactivateProduct(ctx context.Context, id uint) error {
	return s.repo.SetActive(ctx, id, false)
}
