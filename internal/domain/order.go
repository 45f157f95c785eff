package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

// Order represents a placed order
type Order struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Status    string    `json:"status" db:"status"`
	Total     float64   `json:"total" db:"total"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrderItem is one line of a placed order. Prices are the captured cart
// prices, frozen at checkout.
type OrderItem struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	OrderID   uuid.UUID  `json:"order_id" db:"order_id"`
	ProductID uuid.UUID  `json:"product_id" db:"product_id"`
	DesignID  *uuid.UUID `json:"design_id,omitempty" db:"design_id"`
	Quantity  int        `json:"quantity" db:"quantity"`
	Size      string     `json:"size" db:"size"`
	Color     string     `json:"color" db:"color"`
	UnitPrice float64    `json:"unit_price" db:"unit_price"`
}
