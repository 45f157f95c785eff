package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inkthread/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository defines the interface for cart data access
type CartRepository interface {
	Add(ctx context.Context, item *domain.CartItem) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Remove(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Add inserts a new cart line item. The unit price is the captured
// point-in-time price, not a reference to the product's current price.
func (r *cartRepository) Add(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, design_id, quantity, size, color, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.DesignID,
		item.Quantity,
		item.Size,
		item.Color,
		item.UnitPrice,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// ListByUser retrieves all cart items for a user, oldest first
func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, design_id, quantity, size, color, unit_price, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		item := &domain.CartItem{}
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.DesignID,
			&item.Quantity,
			&item.Size,
			&item.Color,
			&item.UnitPrice,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// FindByID retrieves a cart item by ID
func (r *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, design_id, quantity, size, color, unit_price, created_at, updated_at
		FROM cart_items
		WHERE id = $1
	`

	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.DesignID,
		&item.Quantity,
		&item.Size,
		&item.Color,
		&item.UnitPrice,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item by ID: %w", err)
	}

	return item, nil
}

// UpdateQuantity changes the quantity of a cart line item
func (r *cartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// Remove deletes a cart line item
func (r *cartRepository) Remove(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// Clear removes all cart items for a user
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
