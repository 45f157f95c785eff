package service

import (
	"context"
	"errors"
	"time"

	"inkthread/internal/domain"
	"inkthread/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotOwned   = errors.New("cart item belongs to another user")
	ErrSelectionNotListed = errors.New("size or color not offered for this product")
)

// CartService defines the interface for cart business logic. Items added
// through a design session go through StudioService.AddToCart instead; this
// service covers stock products and cart maintenance.
type CartService interface {
	AddStockItem(ctx context.Context, userID, productID uuid.UUID, quantity int, size, color string) (*domain.CartItem, error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, float64, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddStockItem adds an unmodified product to the cart. The unit price is the
// product's base price captured now; later base-price changes do not touch
// existing cart lines.
func (s *cartService) AddStockItem(ctx context.Context, userID, productID uuid.UUID, quantity int, size, color string) (*domain.CartItem, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if !product.HasSize(size) || !product.HasColor(color) {
		return nil, ErrSelectionNotListed
	}

	if quantity < 1 {
		quantity = 1
	}

	now := time.Now()
	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
		UnitPrice: product.BasePrice,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.cartRepo.Add(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// ListItems returns the user's cart and its running total
func (s *cartService) ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, float64, error) {
	if userID == uuid.Nil {
		return nil, 0, ErrNotAuthenticated
	}

	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}

	return items, total, nil
}

// UpdateQuantity changes a line item's quantity, clamped to a minimum of 1
func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if userID == uuid.Nil {
		return ErrNotAuthenticated
	}

	item, err := s.cartRepo.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return ErrCartItemNotOwned
	}

	if quantity < 1 {
		quantity = 1
	}

	return s.cartRepo.UpdateQuantity(ctx, itemID, quantity)
}

// RemoveItem deletes a line item from the user's cart
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrNotAuthenticated
	}

	item, err := s.cartRepo.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return ErrCartItemNotOwned
	}

	return s.cartRepo.Remove(ctx, itemID)
}

// ClearCart removes every item from the user's cart
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrNotAuthenticated
	}
	return s.cartRepo.Clear(ctx, userID)
}
