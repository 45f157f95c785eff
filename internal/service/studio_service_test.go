package service

import (
	"context"
	"testing"
	"time"

	"inkthread/internal/canvas"
	"inkthread/internal/domain"
	"inkthread/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing
type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	out := []*domain.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return m.List(ctx, nil, page, pageSize, "", "")
}

type mockDesignRepository struct {
	designs map[uuid.UUID]*domain.SavedDesign
	creates int
	updates int
}

func newMockDesignRepository() *mockDesignRepository {
	return &mockDesignRepository{designs: make(map[uuid.UUID]*domain.SavedDesign)}
}

func (m *mockDesignRepository) Create(ctx context.Context, d *domain.SavedDesign) error {
	m.creates++
	cp := *d
	m.designs[d.ID] = &cp
	return nil
}

func (m *mockDesignRepository) Update(ctx context.Context, d *domain.SavedDesign) error {
	if _, ok := m.designs[d.ID]; !ok {
		return repository.ErrDesignNotFound
	}
	m.updates++
	cp := *d
	m.designs[d.ID] = &cp
	return nil
}

func (m *mockDesignRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SavedDesign, error) {
	d, ok := m.designs[id]
	if !ok {
		return nil, repository.ErrDesignNotFound
	}
	return d, nil
}

func (m *mockDesignRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SavedDesign, error) {
	out := []*domain.SavedDesign{}
	for _, d := range m.designs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDesignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.designs, id)
	return nil
}

type mockCartRepository struct {
	items map[uuid.UUID]*domain.CartItem
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{items: make(map[uuid.UUID]*domain.CartItem)}
}

func (m *mockCartRepository) Add(ctx context.Context, item *domain.CartItem) error {
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	out := []*domain.CartItem{}
	for _, item := range m.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}
	return item, nil
}

func (m *mockCartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	item, ok := m.items[id]
	if !ok {
		return repository.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (m *mockCartRepository) Remove(ctx context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	for id, item := range m.items {
		if item.UserID == userID {
			delete(m.items, id)
		}
	}
	return nil
}

func studioFixture() (StudioService, *mockProductRepository, *mockDesignRepository, *mockCartRepository, *domain.Product) {
	productRepo := newMockProductRepository()
	designRepo := newMockDesignRepository()
	cartRepo := newMockCartRepository()

	product := &domain.Product{
		ID:        uuid.New(),
		Name:      "Classic Tee",
		BasePrice: 20.00,
		Colors:    []string{"white", "black", "navy"},
		Sizes:     []string{"S", "M", "L"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	productRepo.products[product.ID] = product

	svc := NewStudioService(productRepo, designRepo, cartRepo, canvas.NewRenderer(nil))
	return svc, productRepo, designRepo, cartRepo, product
}

func TestCreateSessionWithProduct(t *testing.T) {
	svc, _, _, _, product := studioFixture()
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if view.ID == "" {
		t.Error("Expected non-empty session id")
	}
	if view.Color != "white" || view.Size != "S" {
		t.Errorf("Expected defaults white/S, got %s/%s", view.Color, view.Size)
	}
	if view.Quantity != 1 {
		t.Errorf("Expected quantity 1, got %d", view.Quantity)
	}
	if view.UnitPrice != 20.00 {
		t.Errorf("Expected unit price 20.00, got %f", view.UnitPrice)
	}
}

func TestCreateSessionUnknownProduct(t *testing.T) {
	svc, _, _, _, _ := studioFixture()

	_, err := svc.CreateSession(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("Expected error for unknown product")
	}
}

func TestGetSessionUnknownID(t *testing.T) {
	svc, _, _, _, _ := studioFixture()

	_, err := svc.GetSession("01JUNKSESSION")
	if err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSelectionAndPricingFlow(t *testing.T) {
	svc, _, _, _, product := studioFixture()
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	sessionID := view.ID

	if _, err := svc.SelectColor(sessionID, "navy"); err != nil {
		t.Fatalf("SelectColor failed: %v", err)
	}
	if _, err := svc.SelectSize(sessionID, "L"); err != nil {
		t.Fatalf("SelectSize failed: %v", err)
	}

	view, err = svc.AddTextElement(sessionID, "TEAM 42", "#ffffff", 32, "Arial")
	if err != nil {
		t.Fatalf("AddTextElement failed: %v", err)
	}
	if view.UnitPrice != 25.00 {
		t.Errorf("Expected unit price 25.00 with element, got %f", view.UnitPrice)
	}

	view, err = svc.SetQuantity(sessionID, 3)
	if err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if view.TotalPrice != 75.00 {
		t.Errorf("Expected total 75.00, got %f", view.TotalPrice)
	}
}

func TestSelectColorOutsideProductSet(t *testing.T) {
	svc, _, _, _, product := studioFixture()

	view, err := svc.CreateSession(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	_, err = svc.SelectColor(view.ID, "chartreuse")
	if err != canvas.ErrInvalidSelection {
		t.Errorf("Expected ErrInvalidSelection, got %v", err)
	}

	// Prior selection is intact
	after, err := svc.GetSession(view.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if after.Color != "white" {
		t.Errorf("Expected color to remain white, got %s", after.Color)
	}
}

func TestSaveDesignRequiresAuthentication(t *testing.T) {
	svc, _, _, _, product := studioFixture()

	view, err := svc.CreateSession(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	_, err = svc.SaveDesign(context.Background(), view.ID, "My design", uuid.Nil)
	if err != ErrNotAuthenticated {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSaveDesignEmptyDesignFails(t *testing.T) {
	svc, _, designRepo, _, product := studioFixture()

	view, err := svc.CreateSession(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	_, err = svc.SaveDesign(context.Background(), view.ID, "Empty", uuid.New())
	if err != canvas.ErrEmptyDesign {
		t.Errorf("Expected ErrEmptyDesign, got %v", err)
	}
	if designRepo.creates != 0 {
		t.Error("Failed save must not create a record")
	}

	// Session survives the failed save
	after, err := svc.GetSession(view.ID)
	if err != nil {
		t.Fatalf("GetSession failed after rejected save: %v", err)
	}
	if after.Product == nil || after.Product.ID != product.ID {
		t.Error("Session state lost after rejected save")
	}
}

func TestSaveDesignTwiceUpdatesSameRecord(t *testing.T) {
	svc, _, designRepo, _, product := studioFixture()
	ctx := context.Background()
	userID := uuid.New()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.AddTextElement(view.ID, "HELLO", "#000000", 0, ""); err != nil {
		t.Fatalf("AddTextElement failed: %v", err)
	}

	first, err := svc.SaveDesign(ctx, view.ID, "First", userID)
	if err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	if _, err := svc.AddShapeElement(view.ID, domain.ShapeCircle, "red"); err != nil {
		t.Fatalf("AddShapeElement failed: %v", err)
	}

	second, err := svc.SaveDesign(ctx, view.ID, "Second", userID)
	if err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected same design id across saves, got %s and %s", first.ID, second.ID)
	}
	if designRepo.creates != 1 || designRepo.updates != 1 {
		t.Errorf("Expected 1 create and 1 update, got %d/%d", designRepo.creates, designRepo.updates)
	}

	stored := designRepo.designs[first.ID]
	if len(stored.Payload.Elements) != 2 {
		t.Errorf("Expected stored payload with 2 elements, got %d", len(stored.Payload.Elements))
	}
	if stored.Name != "Second" {
		t.Errorf("Expected updated name, got %s", stored.Name)
	}

	// The update keeps the original creation time
	if second.CreatedAt.IsZero() || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Expected re-save to keep creation time %v, got %v", first.CreatedAt, second.CreatedAt)
	}
	if !stored.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Expected stored creation time %v, got %v", first.CreatedAt, stored.CreatedAt)
	}
}

func TestSaveDesignRejectsForeignRecord(t *testing.T) {
	svc, _, designRepo, _, product := studioFixture()
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.AddTextElement(view.ID, "HELLO", "#000000", 0, ""); err != nil {
		t.Fatalf("AddTextElement failed: %v", err)
	}
	design, err := svc.SaveDesign(ctx, view.ID, "Original", owner)
	if err != nil {
		t.Fatalf("SaveDesign failed: %v", err)
	}

	// A session already bound to someone else's record cannot overwrite it
	if _, err := svc.SaveDesign(ctx, view.ID, "Hijacked", stranger); err != ErrDesignNotOwned {
		t.Errorf("Expected ErrDesignNotOwned, got %v", err)
	}

	stored := designRepo.designs[design.ID]
	if stored.Name != "Original" || stored.UserID != owner {
		t.Errorf("Record changed by rejected save: name=%s user=%s", stored.Name, stored.UserID)
	}
}

func TestSaveDesignCapturesThumbnail(t *testing.T) {
	svc, _, designRepo, _, product := studioFixture()
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.AddTextElement(view.ID, "HELLO", "#000000", 0, ""); err != nil {
		t.Fatalf("AddTextElement failed: %v", err)
	}

	design, err := svc.SaveDesign(ctx, view.ID, "", uuid.New())
	if err != nil {
		t.Fatalf("SaveDesign failed: %v", err)
	}

	if design.Name != "Classic Tee design" {
		t.Errorf("Expected default name, got %s", design.Name)
	}
	if design.Thumbnail == "" {
		t.Error("Expected thumbnail to be captured")
	}
	if designRepo.designs[design.ID].Thumbnail != design.Thumbnail {
		t.Error("Stored thumbnail does not match returned one")
	}
}

func TestAddToCartRequiresAuthentication(t *testing.T) {
	svc, _, _, _, product := studioFixture()

	view, err := svc.CreateSession(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	_, err = svc.AddToCart(context.Background(), view.ID, uuid.Nil)
	if err != ErrNotAuthenticated {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestAddToCartPlainProductSkipsDesignSave(t *testing.T) {
	svc, _, designRepo, cartRepo, product := studioFixture()
	ctx := context.Background()
	userID := uuid.New()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	item, err := svc.AddToCart(ctx, view.ID, userID)
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	if item.DesignID != nil {
		t.Error("Plain product cart item should have no design reference")
	}
	if item.UnitPrice != 20.00 {
		t.Errorf("Expected captured price 20.00, got %f", item.UnitPrice)
	}
	if designRepo.creates != 0 {
		t.Error("Plain product must not create a design record")
	}
	if len(cartRepo.items) != 1 {
		t.Errorf("Expected 1 cart item, got %d", len(cartRepo.items))
	}
}

func TestAddToCartImplicitlySavesCustomDesign(t *testing.T) {
	svc, _, designRepo, _, product := studioFixture()
	ctx := context.Background()
	userID := uuid.New()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.AddTextElement(view.ID, "HELLO", "#000000", 0, ""); err != nil {
		t.Fatalf("AddTextElement failed: %v", err)
	}
	if _, err := svc.SetQuantity(view.ID, 2); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}

	item, err := svc.AddToCart(ctx, view.ID, userID)
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	if item.DesignID == nil {
		t.Fatal("Custom item must reference a saved design")
	}
	if designRepo.creates != 1 {
		t.Errorf("Expected implicit save, got %d creates", designRepo.creates)
	}
	if item.UnitPrice != 25.00 {
		t.Errorf("Expected captured price 25.00, got %f", item.UnitPrice)
	}
	if item.Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", item.Quantity)
	}

	// Second add without edits reuses the same design record
	if _, err := svc.AddToCart(ctx, view.ID, userID); err != nil {
		t.Fatalf("Second AddToCart failed: %v", err)
	}
	if designRepo.creates != 1 {
		t.Errorf("Clean re-add must not create another design, got %d creates", designRepo.creates)
	}
}

func TestAddToCartPriceInsensitiveToLaterBaseChange(t *testing.T) {
	svc, productRepo, _, cartRepo, product := studioFixture()
	ctx := context.Background()
	userID := uuid.New()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	item, err := svc.AddToCart(ctx, view.ID, userID)
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	// Later base price change leaves the captured line price alone
	productRepo.products[product.ID].BasePrice = 99.00

	stored := cartRepo.items[item.ID]
	if stored.UnitPrice != 20.00 {
		t.Errorf("Expected captured price 20.00 after base change, got %f", stored.UnitPrice)
	}
}

func TestLoadDesignOpensFreshSession(t *testing.T) {
	svc, _, _, _, product := studioFixture()
	ctx := context.Background()
	userID := uuid.New()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.SelectColor(view.ID, "navy"); err != nil {
		t.Fatalf("SelectColor failed: %v", err)
	}
	if _, err := svc.AddTextElement(view.ID, "HELLO", "#ffffff", 0, ""); err != nil {
		t.Fatalf("AddTextElement failed: %v", err)
	}
	if _, err := svc.SetQuantity(view.ID, 7); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}

	design, err := svc.SaveDesign(ctx, view.ID, "Reload me", userID)
	if err != nil {
		t.Fatalf("SaveDesign failed: %v", err)
	}

	reopened, err := svc.LoadDesign(ctx, design.ID, userID)
	if err != nil {
		t.Fatalf("LoadDesign failed: %v", err)
	}

	if reopened.ID == view.ID {
		t.Error("Expected a fresh session id")
	}
	if reopened.Color != "navy" {
		t.Errorf("Expected restored color navy, got %s", reopened.Color)
	}
	if reopened.Quantity != 1 {
		t.Errorf("Expected quantity reset to 1, got %d", reopened.Quantity)
	}
	if len(reopened.Elements) != 1 {
		t.Errorf("Expected 1 restored element, got %d", len(reopened.Elements))
	}
	if reopened.DesignID == nil || *reopened.DesignID != design.ID {
		t.Error("Reopened session must track the saved design id")
	}
	// Re-saving without edits updates the original record
	if reopened.Dirty {
		t.Error("Freshly loaded design should not be dirty")
	}
}

func TestLoadDesignEnforcesOwnership(t *testing.T) {
	svc, _, designRepo, _, product := studioFixture()
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.AddTextElement(view.ID, "HELLO", "#000000", 0, ""); err != nil {
		t.Fatalf("AddTextElement failed: %v", err)
	}
	design, err := svc.SaveDesign(ctx, view.ID, "Mine", owner)
	if err != nil {
		t.Fatalf("SaveDesign failed: %v", err)
	}

	if _, err := svc.LoadDesign(ctx, design.ID, stranger); err != ErrDesignNotOwned {
		t.Errorf("Expected ErrDesignNotOwned, got %v", err)
	}
	if _, err := svc.LoadDesign(ctx, design.ID, uuid.Nil); err != ErrNotAuthenticated {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}

	stored := designRepo.designs[design.ID]
	if stored.Name != "Mine" || len(stored.Payload.Elements) != 1 {
		t.Error("Record changed by rejected load")
	}

	if _, err := svc.LoadDesign(ctx, design.ID, owner); err != nil {
		t.Errorf("Owner load failed: %v", err)
	}
}

func TestDeleteDesignSemantics(t *testing.T) {
	svc, _, designRepo, _, product := studioFixture()
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	view, err := svc.CreateSession(ctx, product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.AddTextElement(view.ID, "HELLO", "#000000", 0, ""); err != nil {
		t.Fatalf("AddTextElement failed: %v", err)
	}
	design, err := svc.SaveDesign(ctx, view.ID, "Mine", owner)
	if err != nil {
		t.Fatalf("SaveDesign failed: %v", err)
	}

	// Foreign owner cannot delete
	if err := svc.DeleteDesign(ctx, design.ID, stranger); err != ErrDesignNotOwned {
		t.Errorf("Expected ErrDesignNotOwned, got %v", err)
	}
	if _, ok := designRepo.designs[design.ID]; !ok {
		t.Fatal("Design must survive a rejected delete")
	}

	// Owner delete succeeds
	if err := svc.DeleteDesign(ctx, design.ID, owner); err != nil {
		t.Errorf("Owner delete failed: %v", err)
	}

	// Deleting an absent design succeeds quietly
	if err := svc.DeleteDesign(ctx, design.ID, owner); err != nil {
		t.Errorf("Deleting absent design should succeed, got %v", err)
	}
}

func TestRenderPNGFromSession(t *testing.T) {
	svc, _, _, _, product := studioFixture()

	view, err := svc.CreateSession(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	data, err := svc.RenderPNG(view.ID)
	if err != nil {
		t.Fatalf("RenderPNG failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected non-empty PNG output")
	}
}
