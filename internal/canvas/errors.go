package canvas

import "errors"

var (
	// ErrInvalidSelection is returned when a color or size outside the
	// product's allowed set is selected. The prior selection is kept.
	ErrInvalidSelection = errors.New("selection not in product's allowed set")

	// ErrNoProduct is returned when an operation requires a selected product
	ErrNoProduct = errors.New("no product selected")

	// ErrEmptyDesign is returned when a save is attempted with no elements
	ErrEmptyDesign = errors.New("design has no elements")

	// ErrUnknownShape is returned for shape kinds other than rectangle and circle
	ErrUnknownShape = errors.New("unknown shape kind")
)
