package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a printable garment in the catalog. Colors and Sizes
// are the allowed customization domains; a design session may only select
// values from these sets.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	BasePrice   float64   `json:"base_price" db:"base_price"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id"`
	Colors      []string  `json:"colors" db:"colors"`
	Sizes       []string  `json:"sizes" db:"sizes"`
	MockupURL   string    `json:"mockup_url" db:"mockup_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// HasColor reports whether color is in the product's allowed color set.
func (p *Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// HasSize reports whether size is in the product's allowed size set.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
