package service

import (
	"context"
	"testing"
	"time"

	"inkthread/internal/domain"
	"inkthread/internal/repository"

	"github.com/google/uuid"
)

type mockOrderRepository struct {
	orders map[uuid.UUID]*domain.Order
	items  map[uuid.UUID][]*domain.OrderItem
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders: make(map[uuid.UUID]*domain.Order),
		items:  make(map[uuid.UUID][]*domain.OrderItem),
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error {
	cp := *order
	m.orders[order.ID] = &cp
	m.items[order.ID] = items
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, []*domain.OrderItem, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, nil, repository.ErrOrderNotFound
	}
	return order, m.items[id], nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func orderFixture() (OrderService, *mockOrderRepository, *mockCartRepository) {
	orderRepo := newMockOrderRepository()
	cartRepo := newMockCartRepository()
	return NewOrderService(orderRepo, cartRepo), orderRepo, cartRepo
}

func seedCartItem(cartRepo *mockCartRepository, userID uuid.UUID, quantity int, unitPrice float64, designID *uuid.UUID) *domain.CartItem {
	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: uuid.New(),
		DesignID:  designID,
		Quantity:  quantity,
		Size:      "M",
		Color:     "black",
		UnitPrice: unitPrice,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	cartRepo.items[item.ID] = item
	return item
}

func TestCheckoutEmptyCartFails(t *testing.T) {
	svc, _, _ := orderFixture()

	_, err := svc.Checkout(context.Background(), uuid.New())
	if err != ErrEmptyCart {
		t.Errorf("Expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutBuildsOrderFromCapturedPrices(t *testing.T) {
	svc, orderRepo, cartRepo := orderFixture()
	ctx := context.Background()
	userID := uuid.New()

	designID := uuid.New()
	seedCartItem(cartRepo, userID, 3, 25.00, &designID)
	seedCartItem(cartRepo, userID, 1, 20.00, nil)

	order, err := svc.Checkout(ctx, userID)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if order.Status != domain.OrderStatusPending {
		t.Errorf("Expected pending status, got %s", order.Status)
	}
	if order.Total != 95.00 {
		t.Errorf("Expected total 95.00, got %f", order.Total)
	}

	_, items, err := orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 order items, got %d", len(items))
	}

	var sawDesign bool
	for _, item := range items {
		if item.DesignID != nil {
			sawDesign = true
			if *item.DesignID != designID {
				t.Errorf("Design reference mismatch")
			}
			if item.UnitPrice != 25.00 {
				t.Errorf("Expected captured custom price 25.00, got %f", item.UnitPrice)
			}
		}
	}
	if !sawDesign {
		t.Error("Expected an order item carrying the design reference")
	}

	// Cart is cleared by a successful checkout
	remaining, err := cartRepo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected empty cart after checkout, got %d items", len(remaining))
	}
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	svc, _, cartRepo := orderFixture()
	ctx := context.Background()
	owner := uuid.New()

	seedCartItem(cartRepo, owner, 1, 20.00, nil)
	order, err := svc.Checkout(ctx, owner)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if _, _, err := svc.GetOrder(ctx, uuid.New(), order.ID); err != ErrOrderNotOwned {
		t.Errorf("Expected ErrOrderNotOwned, got %v", err)
	}

	got, items, err := svc.GetOrder(ctx, owner, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.ID != order.ID || len(items) != 1 {
		t.Errorf("Unexpected order detail: %v, %d items", got.ID, len(items))
	}
}

func TestUpdateStatusMovesForwardOnly(t *testing.T) {
	svc, orderRepo, cartRepo := orderFixture()
	ctx := context.Background()
	userID := uuid.New()

	seedCartItem(cartRepo, userID, 1, 20.00, nil)
	order, err := svc.Checkout(ctx, userID)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if err := svc.UpdateStatus(ctx, order.ID, domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("Expected pending->confirmed to succeed, got %v", err)
	}
	if orderRepo.orders[order.ID].Status != domain.OrderStatusConfirmed {
		t.Errorf("Status not persisted: %s", orderRepo.orders[order.ID].Status)
	}

	if err := svc.UpdateStatus(ctx, order.ID, domain.OrderStatusPending); err != ErrInvalidStatusChange {
		t.Errorf("Expected ErrInvalidStatusChange moving backwards, got %v", err)
	}
	if err := svc.UpdateStatus(ctx, order.ID, domain.OrderStatusConfirmed); err != ErrInvalidStatusChange {
		t.Errorf("Expected ErrInvalidStatusChange repeating a stage, got %v", err)
	}

	// Skipping a stage forward is allowed
	if err := svc.UpdateStatus(ctx, order.ID, domain.OrderStatusDelivered); err != nil {
		t.Errorf("Expected confirmed->delivered to succeed, got %v", err)
	}
}

func TestUpdateStatusRejectsUnknownStage(t *testing.T) {
	svc, _, cartRepo := orderFixture()
	ctx := context.Background()
	userID := uuid.New()

	seedCartItem(cartRepo, userID, 1, 20.00, nil)
	order, err := svc.Checkout(ctx, userID)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if err := svc.UpdateStatus(ctx, order.ID, "lost"); err != ErrInvalidStatusChange {
		t.Errorf("Expected ErrInvalidStatusChange for unknown stage, got %v", err)
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _, _ := orderFixture()

	err := svc.UpdateStatus(context.Background(), uuid.New(), domain.OrderStatusConfirmed)
	if err != repository.ErrOrderNotFound {
		t.Errorf("Expected ErrOrderNotFound, got %v", err)
	}
}

func TestGetOrderUnknownID(t *testing.T) {
	svc, _, _ := orderFixture()

	_, _, err := svc.GetOrder(context.Background(), uuid.New(), uuid.New())
	if err != repository.ErrOrderNotFound {
		t.Errorf("Expected ErrOrderNotFound, got %v", err)
	}
}
