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
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, []*domain.OrderItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts an order and its items in a single transaction
func (r *orderRepository) Create(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (id, user_id, status, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(
		ctx,
		orderQuery,
		order.ID,
		order.UserID,
		order.Status,
		order.Total,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, design_id, quantity, size, color, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, item := range items {
		_, err = tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.DesignID,
			item.Quantity,
			item.Size,
			item.Color,
			item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// FindByID retrieves an order and its items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, []*domain.OrderItem, error) {
	orderQuery := `
		SELECT id, user_id, status, total, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, orderQuery, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.Total,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	itemQuery := `
		SELECT id, order_id, product_id, design_id, quantity, size, color, unit_price
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.db.QueryContext(ctx, itemQuery, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []*domain.OrderItem{}
	for rows.Next() {
		item := &domain.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.DesignID,
			&item.Quantity,
			&item.Size,
			&item.Color,
			&item.UnitPrice,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, items, nil
}

// ListByUser retrieves all orders for a user, newest first
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, status, total, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.Total,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus transitions an order's status
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}
