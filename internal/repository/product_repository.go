package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"inkthread/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product. Color and size sets are stored as JSONB arrays.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	colors, sizes, err := encodeVariants(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, name, description, base_price, category_id, colors, sizes, mockup_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.BasePrice,
		product.CategoryID,
		colors,
		sizes,
		product.MockupURL,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	colors, sizes, err := encodeVariants(product)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET name = $2, description = $3, base_price = $4, category_id = $5,
		    colors = $6, sizes = $7, mockup_url = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.BasePrice,
		product.CategoryID,
		colors,
		sizes,
		product.MockupURL,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the catalog
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, description, base_price, category_id, colors, sizes, mockup_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products with optional category filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"name":       true,
		"base_price": true,
		"created_at": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at" // Default sort field
	}

	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc // Default sort order
	}

	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if categoryID != nil {
		whereClause = fmt.Sprintf("WHERE category_id = $%d", argIndex)
		args = append(args, *categoryID)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT id, name, description, base_price, category_id, colors, sizes, mockup_url, created_at, updated_at
		FROM products
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Search searches for products by name or description with pagination
func (r *productRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	// If query is empty, return all products
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, nil, page, pageSize, "created_at", SortOrderDesc)
	}

	// Use ILIKE for case-insensitive search
	searchPattern := "%" + query + "%"

	countQuery := `
		SELECT COUNT(*)
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
	`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, searchPattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	offset := (page - 1) * pageSize

	searchQuery := `
		SELECT id, name, description, base_price, category_id, colors, sizes, mockup_url, created_at, updated_at
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, searchQuery, searchPattern, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func encodeVariants(product *domain.Product) ([]byte, []byte, error) {
	colors, err := json.Marshal(product.Colors)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode colors: %w", err)
	}
	sizes, err := json.Marshal(product.Sizes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode sizes: %w", err)
	}
	return colors, sizes, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var colors, sizes []byte

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.BasePrice,
		&product.CategoryID,
		&colors,
		&sizes,
		&product.MockupURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(colors, &product.Colors); err != nil {
		return nil, fmt.Errorf("failed to decode colors: %w", err)
	}
	if err := json.Unmarshal(sizes, &product.Sizes); err != nil {
		return nil, fmt.Errorf("failed to decode sizes: %w", err)
	}

	return product, nil
}

func collectProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
