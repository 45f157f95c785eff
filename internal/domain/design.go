package domain

import (
	"time"

	"github.com/google/uuid"
)

// Design element kinds
const (
	ElementKindText  = "text"
	ElementKindShape = "shape"
)

// Shape names accepted for shape elements
const (
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
)

// DesignElement is a single visual annotation placed on the canvas. X and Y
// are the element's center. Elements are append-only; the slice order is the
// paint order.
type DesignElement struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	Content    string  `json:"content"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Color      string  `json:"color"`
	FontSize   int     `json:"font_size,omitempty"`
	FontFamily string  `json:"font_family,omitempty"`
}

// DesignPayload is the serialized DesignState attached to a saved design.
// What is saved here must round-trip unchanged: loading it back and rendering
// produces the same composition.
type DesignPayload struct {
	Product  Product         `json:"product"`
	Elements []DesignElement `json:"elements"`
	Color    string          `json:"color"`
	Size     string          `json:"size"`
}

// SavedDesign is the durable snapshot of a design session. Thumbnail is a
// PNG encoded as a data URI.
type SavedDesign struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	UserID    uuid.UUID     `json:"user_id" db:"user_id"`
	Name      string        `json:"name" db:"name"`
	Payload   DesignPayload `json:"payload" db:"payload"`
	Thumbnail string        `json:"thumbnail" db:"thumbnail"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}
