package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line in a user's cart. DesignID is nil for an unmodified
// stock product. UnitPrice is captured at the time the item is added and is
// not recomputed if the product's base price later changes.
type CartItem struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	ProductID uuid.UUID  `json:"product_id" db:"product_id"`
	DesignID  *uuid.UUID `json:"design_id,omitempty" db:"design_id"`
	Quantity  int        `json:"quantity" db:"quantity"`
	Size      string     `json:"size" db:"size"`
	Color     string     `json:"color" db:"color"`
	UnitPrice float64    `json:"unit_price" db:"unit_price"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Subtotal returns the line total for this item.
func (c *CartItem) Subtotal() float64 {
	return c.UnitPrice * float64(c.Quantity)
}
