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
	ErrEmptyCart           = errors.New("cannot place an order from an empty cart")
	ErrOrderNotOwned       = errors.New("order belongs to another user")
	ErrInvalidStatusChange = errors.New("order status can only move forward")
)

// statusRank orders the fulfilment stages so transitions only move forward
var statusRank = map[string]int{
	domain.OrderStatusPending:   0,
	domain.OrderStatusConfirmed: 1,
	domain.OrderStatusShipped:   2,
	domain.OrderStatusDelivered: 3,
}

// OrderService defines the interface for checkout and order tracking
type OrderService interface {
	Checkout(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, []*domain.OrderItem, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
	}
}

// Checkout turns the user's cart into a pending order. Line prices are the
// captured cart prices; the cart is cleared once the order is stored.
func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	cartItems, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	items := make([]*domain.OrderItem, 0, len(cartItems))
	for _, ci := range cartItems {
		order.Total += ci.Subtotal()
		items = append(items, &domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: ci.ProductID,
			DesignID:  ci.DesignID,
			Quantity:  ci.Quantity,
			Size:      ci.Size,
			Color:     ci.Color,
			UnitPrice: ci.UnitPrice,
		})
	}

	if err := s.orderRepo.Create(ctx, order, items); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return nil, err
	}

	return order, nil
}

// ListOrders returns the user's orders, newest first
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return s.orderRepo.ListByUser(ctx, userID)
}

// GetOrder returns one order with its items
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, []*domain.OrderItem, error) {
	if userID == uuid.Nil {
		return nil, nil, ErrNotAuthenticated
	}

	order, items, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.UserID != userID {
		return nil, nil, ErrOrderNotOwned
	}

	return order, items, nil
}

// UpdateStatus advances an order through the fulfilment stages. Moving
// backwards or repeating a stage is rejected.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	newRank, ok := statusRank[status]
	if !ok {
		return ErrInvalidStatusChange
	}

	order, _, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if newRank <= statusRank[order.Status] {
		return ErrInvalidStatusChange
	}

	return s.orderRepo.UpdateStatus(ctx, orderID, status)
}
