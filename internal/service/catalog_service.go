package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkthread/internal/domain"
	"inkthread/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidProduct = errors.New("product must declare at least one color and one size")
	ErrCategoryInUse  = errors.New("category still has products assigned")
)

// ProductInput carries the fields for creating or updating a product
type ProductInput struct {
	Name        string
	Description string
	BasePrice   float64
	CategoryID  uuid.UUID
	Colors      []string
	Sizes       []string
	MockupURL   string
}

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	ListProducts(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// ListProducts returns a page of products with an optional category filter
func (s *catalogService) ListProducts(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
}

// SearchProducts returns products matching the query by name or description
func (s *catalogService) SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.Search(ctx, query, page, pageSize)
}

// GetProduct retrieves a single product
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// CreateProduct adds a product to the catalog. A product must declare
// non-empty color and size sets; design sessions select from them.
func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if len(input.Colors) == 0 || len(input.Sizes) == 0 {
		return nil, ErrInvalidProduct
	}

	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		BasePrice:   input.BasePrice,
		CategoryID:  input.CategoryID,
		Colors:      input.Colors,
		Sizes:       input.Sizes,
		MockupURL:   input.MockupURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// UpdateProduct replaces a product's attributes
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if len(input.Colors) == 0 || len(input.Sizes) == 0 {
		return nil, ErrInvalidProduct
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.BasePrice = input.BasePrice
	existing.CategoryID = input.CategoryID
	existing.Colors = input.Colors
	existing.Sizes = input.Sizes
	existing.MockupURL = input.MockupURL
	existing.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// DeleteProduct removes a product from the catalog
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// ListCategories returns all categories
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// CreateCategory adds a category
func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory removes a category. Products reference categories with a
// restrictive FK, so a category still in use is rejected up front.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	_, total, err := s.productRepo.List(ctx, &id, 1, 1, "", repository.SortOrderAsc)
	if err != nil {
		return err
	}
	if total > 0 {
		return ErrCategoryInUse
	}

	return s.categoryRepo.Delete(ctx, id)
}
