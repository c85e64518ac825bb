package cart

import (
	"context"

	"modakarina-be/internal/product"
)

// Service defines the business logic for carts.
type Service interface {
	AddItem(ctx context.Context, userID, productID uint, quantity int) (*Line, error)
	SetQuantity(ctx context.Context, userID, productID uint, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, userID uint) error
	GetCart(ctx context.Context, userID uint) (*View, error)
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

// AddItem adds a product to the user's cart, incrementing the quantity
// when a line already exists.
func (s *service) AddItem(ctx context.Context, userID, productID uint, quantity int) (*Line, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.productRepo.GetByID(ctx, product.GetOptions{
		ProductID:  productID,
		OnlyActive: true,
	})
	if err != nil {
		return nil, err
	}

	line, err := s.repo.GetLine(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	finalQty := quantity
	if line != nil {
		finalQty += line.Quantity
	}

	// Early stock check; order placement re-validates and stays
	// authoritative.
	if p.Stock < finalQty {
		return nil, ErrInsufficientStock
	}

	if line == nil {
		return s.repo.CreateLine(ctx, userID, productID, quantity)
	}

	if err := s.repo.UpdateQuantity(ctx, userID, productID, finalQty); err != nil {
		return nil, err
	}
	line.Quantity = finalQty
	return line, nil
}

// SetQuantity sets the quantity of a line; zero or negative removes it.
func (s *service) SetQuantity(ctx context.Context, userID, productID uint, quantity int) error {
	if quantity <= 0 {
		return s.repo.DeleteLine(ctx, userID, productID)
	}
	return s.repo.UpdateQuantity(ctx, userID, productID, quantity)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uint) error {
	return s.repo.DeleteLine(ctx, userID, productID)
}

func (s *service) Clear(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}

// GetCart returns the user's cart priced with current product prices.
func (s *service) GetCart(ctx context.Context, userID uint) (*View, error) {
	rows, err := s.repo.GetLineRows(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{Items: make([]ItemView, 0, len(rows))}
	for _, r := range rows {
		p := product.Product{Price: r.Price, PromoPrice: r.PromoPrice, Promo: r.Promo}
		unit := p.EffectivePrice()
		subtotal := unit * float64(r.Quantity)

		view.Items = append(view.Items, ItemView{
			ProductID: r.ProductID,
			Name:      r.Name,
			UnitPrice: unit,
			Quantity:  r.Quantity,
			Subtotal:  subtotal,
			Stock:     r.Stock,
			Promo:     r.Promo,
		})
		view.Total += subtotal
	}

	return view, nil
}
