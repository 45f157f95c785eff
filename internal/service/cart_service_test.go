package service

import (
	"context"
	"testing"
	"time"

	"inkthread/internal/domain"
	"inkthread/internal/repository"

	"github.com/google/uuid"
)

func cartFixture() (CartService, *mockCartRepository, *domain.Product) {
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()

	product := &domain.Product{
		ID:        uuid.New(),
		Name:      "Classic Tee",
		BasePrice: 20.00,
		Colors:    []string{"white", "black"},
		Sizes:     []string{"S", "M", "L"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	productRepo.products[product.ID] = product

	return NewCartService(cartRepo, productRepo), cartRepo, product
}

func TestAddStockItemCapturesBasePrice(t *testing.T) {
	svc, _, product := cartFixture()

	item, err := svc.AddStockItem(context.Background(), uuid.New(), product.ID, 2, "M", "black")
	if err != nil {
		t.Fatalf("AddStockItem failed: %v", err)
	}

	if item.UnitPrice != 20.00 {
		t.Errorf("Expected captured price 20.00, got %f", item.UnitPrice)
	}
	if item.Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", item.Quantity)
	}
	if item.DesignID != nil {
		t.Error("Stock item must not reference a design")
	}
}

func TestAddStockItemRejectsUnlistedSelection(t *testing.T) {
	svc, _, product := cartFixture()
	ctx := context.Background()

	if _, err := svc.AddStockItem(ctx, uuid.New(), product.ID, 1, "XXL", "black"); err != ErrSelectionNotListed {
		t.Errorf("Expected ErrSelectionNotListed for size, got %v", err)
	}
	if _, err := svc.AddStockItem(ctx, uuid.New(), product.ID, 1, "M", "chartreuse"); err != ErrSelectionNotListed {
		t.Errorf("Expected ErrSelectionNotListed for color, got %v", err)
	}
}

func TestAddStockItemRequiresAuthentication(t *testing.T) {
	svc, _, product := cartFixture()

	_, err := svc.AddStockItem(context.Background(), uuid.Nil, product.ID, 1, "M", "black")
	if err != ErrNotAuthenticated {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestListItemsComputesTotal(t *testing.T) {
	svc, _, product := cartFixture()
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.AddStockItem(ctx, userID, product.ID, 2, "M", "black"); err != nil {
		t.Fatalf("AddStockItem failed: %v", err)
	}
	if _, err := svc.AddStockItem(ctx, userID, product.ID, 1, "S", "white"); err != nil {
		t.Fatalf("AddStockItem failed: %v", err)
	}

	items, total, err := svc.ListItems(ctx, userID)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Expected 2 items, got %d", len(items))
	}
	if total != 60.00 {
		t.Errorf("Expected total 60.00, got %f", total)
	}
}

func TestCartOwnershipIsEnforced(t *testing.T) {
	svc, _, product := cartFixture()
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	item, err := svc.AddStockItem(ctx, owner, product.ID, 1, "M", "black")
	if err != nil {
		t.Fatalf("AddStockItem failed: %v", err)
	}

	if err := svc.UpdateQuantity(ctx, stranger, item.ID, 5); err != ErrCartItemNotOwned {
		t.Errorf("Expected ErrCartItemNotOwned on update, got %v", err)
	}
	if err := svc.RemoveItem(ctx, stranger, item.ID); err != ErrCartItemNotOwned {
		t.Errorf("Expected ErrCartItemNotOwned on remove, got %v", err)
	}

	if err := svc.RemoveItem(ctx, owner, item.ID); err != nil {
		t.Errorf("Owner remove failed: %v", err)
	}
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	svc, cartRepo, product := cartFixture()
	ctx := context.Background()
	userID := uuid.New()

	item, err := svc.AddStockItem(ctx, userID, product.ID, 3, "M", "black")
	if err != nil {
		t.Fatalf("AddStockItem failed: %v", err)
	}

	if err := svc.UpdateQuantity(ctx, userID, item.ID, -4); err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if cartRepo.items[item.ID].Quantity != 1 {
		t.Errorf("Expected quantity clamped to 1, got %d", cartRepo.items[item.ID].Quantity)
	}
}

func TestUpdateQuantityUnknownItem(t *testing.T) {
	svc, _, _ := cartFixture()

	err := svc.UpdateQuantity(context.Background(), uuid.New(), uuid.New(), 2)
	if err != repository.ErrCartItemNotFound {
		t.Errorf("Expected ErrCartItemNotFound, got %v", err)
	}
}

func TestClearCartRemovesOnlyOwnItems(t *testing.T) {
	svc, cartRepo, product := cartFixture()
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()

	if _, err := svc.AddStockItem(ctx, userA, product.ID, 1, "M", "black"); err != nil {
		t.Fatalf("AddStockItem failed: %v", err)
	}
	if _, err := svc.AddStockItem(ctx, userB, product.ID, 1, "S", "white"); err != nil {
		t.Fatalf("AddStockItem failed: %v", err)
	}

	if err := svc.ClearCart(ctx, userA); err != nil {
		t.Fatalf("ClearCart failed: %v", err)
	}

	if len(cartRepo.items) != 1 {
		t.Errorf("Expected 1 remaining item, got %d", len(cartRepo.items))
	}
	for _, item := range cartRepo.items {
		if item.UserID != userB {
			t.Error("Wrong user's item survived the clear")
		}
	}
}
