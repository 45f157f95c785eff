package canvas

import (
	"strings"

	"inkthread/internal/domain"

	"github.com/oklog/ulid/v2"
)

const (
	// DefaultFontSize is used when a text element is added without an explicit size
	DefaultFontSize = 24

	// DefaultFontFamily is used when a text element is added without an explicit family
	DefaultFontFamily = "Arial"

	// Default anchor for newly added elements, center-ish of the canvas.
	// Elements are not repositionable after creation.
	defaultAnchorX = CanvasWidth / 2
	defaultAnchorY = CanvasHeight / 2

	defaultShapeWidth  = 120.0
	defaultShapeHeight = 80.0
	defaultCircleSize  = 100.0
)

// newTextElement builds a text element at the default anchor. Returns nil for
// empty or whitespace-only content. IDs are ULIDs so two elements created
// within the same millisecond cannot collide.
func newTextElement(text, color string, fontSize int, fontFamily string) *domain.DesignElement {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	if fontFamily == "" {
		fontFamily = DefaultFontFamily
	}

	w, h := measureText(text, fontSize)
	return &domain.DesignElement{
		ID:         ulid.Make().String(),
		Kind:       domain.ElementKindText,
		Content:    text,
		X:          defaultAnchorX,
		Y:          defaultAnchorY,
		Width:      w,
		Height:     h,
		Color:      color,
		FontSize:   fontSize,
		FontFamily: fontFamily,
	}
}

// newShapeElement builds a shape element at the default anchor with a fixed
// default size. Only rectangle and circle are supported.
func newShapeElement(shape, color string) (*domain.DesignElement, error) {
	var w, h float64
	switch shape {
	case domain.ShapeRectangle:
		w, h = defaultShapeWidth, defaultShapeHeight
	case domain.ShapeCircle:
		w, h = defaultCircleSize, defaultCircleSize
	default:
		return nil, ErrUnknownShape
	}

	return &domain.DesignElement{
		ID:      ulid.Make().String(),
		Kind:    domain.ElementKindShape,
		Content: shape,
		X:       defaultAnchorX,
		Y:       defaultAnchorY,
		Width:   w,
		Height:  h,
		Color:   color,
	}, nil
}
