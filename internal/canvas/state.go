package canvas

import (
	"inkthread/internal/domain"

	"github.com/google/uuid"
)

// DesignFee is the flat surcharge applied to the base price whenever the
// design has at least one element. Pricing is insensitive to element count.
const DesignFee = 5.00

// State is the session-scoped aggregate being edited: selected product,
// color, size, quantity and the ordered element sequence. It is owned by
// exactly one editing session and is not safe for concurrent use; the
// session layer serializes access.
//
// All mutating operations either succeed fully or leave the state unchanged.
type State struct {
	product  *domain.Product
	color    string
	size     string
	quantity int
	elements []domain.DesignElement

	// savedID is the durable design id once the state has been persisted.
	// rev/savedRev track unsaved changes.
	savedID  uuid.UUID
	rev      uint64
	savedRev uint64
}

// NewState returns an empty design state with quantity 1.
func NewState() *State {
	return &State{quantity: 1}
}

// SelectProduct replaces the active product and resets color and size to the
// product's first allowed entries. Existing elements are kept: they are
// positioned independent of the product, so a product switch preserves the
// composition as-is.
func (s *State) SelectProduct(p *domain.Product) error {
	if p == nil || len(p.Colors) == 0 || len(p.Sizes) == 0 {
		return ErrInvalidSelection
	}
	s.product = p
	s.color = p.Colors[0]
	s.size = p.Sizes[0]
	s.rev++
	return nil
}

// SelectColor stores color if it belongs to the product's allowed set.
func (s *State) SelectColor(color string) error {
	if s.product == nil {
		return ErrNoProduct
	}
	if !s.product.HasColor(color) {
		return ErrInvalidSelection
	}
	s.color = color
	s.rev++
	return nil
}

// SelectSize stores size if it belongs to the product's allowed set.
func (s *State) SelectSize(size string) error {
	if s.product == nil {
		return ErrNoProduct
	}
	if !s.product.HasSize(size) {
		return ErrInvalidSelection
	}
	s.size = size
	s.rev++
	return nil
}

// SetQuantity sets the order quantity, clamped to a minimum of 1.
func (s *State) SetQuantity(n int) {
	if n < 1 {
		n = 1
	}
	s.quantity = n
	s.rev++
}

// AddTextElement appends a text element. Empty or whitespace-only text is a
// no-op and returns nil.
func (s *State) AddTextElement(text, color string, fontSize int, fontFamily string) *domain.DesignElement {
	el := newTextElement(text, color, fontSize, fontFamily)
	if el == nil {
		return nil
	}
	s.elements = append(s.elements, *el)
	s.rev++
	return el
}

// AddShapeElement appends a rectangle or circle filled with the given color.
func (s *State) AddShapeElement(shape, color string) (*domain.DesignElement, error) {
	el, err := newShapeElement(shape, color)
	if err != nil {
		return nil, err
	}
	s.elements = append(s.elements, *el)
	s.rev++
	return el, nil
}

// Product returns the active product, or nil when none is selected.
func (s *State) Product() *domain.Product { return s.product }

// Color returns the selected color.
func (s *State) Color() string { return s.color }

// Size returns the selected size.
func (s *State) Size() string { return s.size }

// Quantity returns the order quantity.
func (s *State) Quantity() int { return s.quantity }

// Elements returns a copy of the element sequence in paint order.
func (s *State) Elements() []domain.DesignElement {
	out := make([]domain.DesignElement, len(s.elements))
	copy(out, s.elements)
	return out
}

// HasElements reports whether the design has at least one element.
func (s *State) HasElements() bool { return len(s.elements) > 0 }

// UnitPrice is the base price plus the flat design fee when any element is
// present. It is derived on every call and never cached.
func (s *State) UnitPrice() float64 {
	if s.product == nil {
		return 0
	}
	price := s.product.BasePrice
	if len(s.elements) > 0 {
		price += DesignFee
	}
	return price
}

// TotalPrice is the unit price multiplied by the quantity.
func (s *State) TotalPrice() float64 {
	return s.UnitPrice() * float64(s.quantity)
}

// Dirty reports whether the state has changed since the last MarkSaved.
func (s *State) Dirty() bool { return s.rev != s.savedRev }

// SavedID returns the persisted design id for this session, if any.
func (s *State) SavedID() (uuid.UUID, bool) {
	return s.savedID, s.savedID != uuid.Nil
}

// MarkSaved records the persisted design id and the current revision, so a
// re-save without further edits updates the same record.
func (s *State) MarkSaved(id uuid.UUID) {
	s.savedID = id
	s.savedRev = s.rev
}

// Payload captures the state for persistence. The payload round-trips:
// Restore of a Payload yields a state that renders identically.
func (s *State) Payload() (domain.DesignPayload, error) {
	if s.product == nil {
		return domain.DesignPayload{}, ErrNoProduct
	}
	if len(s.elements) == 0 {
		return domain.DesignPayload{}, ErrEmptyDesign
	}
	return domain.DesignPayload{
		Product:  *s.product,
		Elements: s.Elements(),
		Color:    s.color,
		Size:     s.size,
	}, nil
}

// Restore loads a previously saved payload into the state, replacing the
// current product, selection and elements. Quantity is reset to 1.
func (s *State) Restore(p domain.DesignPayload) error {
	product := p.Product
	if len(product.Colors) == 0 || len(product.Sizes) == 0 {
		return ErrInvalidSelection
	}
	if !product.HasColor(p.Color) || !product.HasSize(p.Size) {
		return ErrInvalidSelection
	}
	s.product = &product
	s.color = p.Color
	s.size = p.Size
	s.quantity = 1
	s.elements = make([]domain.DesignElement, len(p.Elements))
	copy(s.elements, p.Elements)
	s.rev++
	return nil
}
