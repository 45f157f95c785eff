package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"inkthread/internal/domain"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas dimensions used by the studio and the render endpoint.
const (
	CanvasWidth  = 600
	CanvasHeight = 600

	borderWidth   = 2
	labelFontSize = 12
	labelPadding  = 4
)

// Solid background fills used when no mockup image is available for the
// selected garment color. Unknown colors fall back to white.
var garmentFills = map[string]color.RGBA{
	"white":   {R: 255, G: 255, B: 255, A: 255},
	"black":   {R: 17, G: 17, B: 17, A: 255},
	"navy":    {R: 28, G: 44, B: 94, A: 255},
	"red":     {R: 196, G: 30, B: 58, A: 255},
	"natural": {R: 243, G: 237, B: 222, A: 255},
}

var (
	borderColor = color.RGBA{R: 204, G: 204, B: 204, A: 255}
	labelBg     = color.RGBA{A: 140}
	labelFg     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Renderer composites a design state onto a raster surface. It holds only
// the mockup library; rendering is a pure function of the state and writes
// nothing but dst.
type Renderer struct {
	mockups *MockupLibrary
}

// NewRenderer creates a renderer. mockups may be nil, in which case all
// backgrounds use solid fills.
func NewRenderer(mockups *MockupLibrary) *Renderer {
	return &Renderer{mockups: mockups}
}

// Render draws the full composition: background (mockup or solid fill),
// border, each element in append order, then the product/color label
// overlay. It is deterministic and idempotent; callers re-invoke it after
// every committed state change.
func (r *Renderer) Render(dst *image.RGBA, st *State) {
	r.drawBackground(dst, st.Color())
	drawBorder(dst)

	for _, el := range st.Elements() {
		drawElement(dst, el)
	}

	if p := st.Product(); p != nil {
		drawLabel(dst, fmt.Sprintf("%s - %s", p.Name, strings.ToUpper(st.Color())))
	}
}

func (r *Renderer) drawBackground(dst *image.RGBA, garmentColor string) {
	bounds := dst.Bounds()

	fill, ok := garmentFills[garmentColor]
	if !ok {
		fill = garmentFills["white"]
	}
	draw.Draw(dst, bounds, image.NewUniform(fill), image.Point{}, draw.Src)

	if r.mockups == nil {
		return
	}
	img, ok := r.mockups.ImageFor(garmentColor)
	if !ok {
		return
	}

	// Fit-within scaling, preserving aspect ratio, centered.
	ib := img.Bounds()
	sw, sh := float64(ib.Dx()), float64(ib.Dy())
	dw, dh := float64(bounds.Dx()), float64(bounds.Dy())
	scale := dw / sw
	if dh/sh < scale {
		scale = dh / sh
	}
	tw, th := int(sw*scale), int(sh*scale)
	ox := bounds.Min.X + (bounds.Dx()-tw)/2
	oy := bounds.Min.Y + (bounds.Dy()-th)/2
	target := image.Rect(ox, oy, ox+tw, oy+th)

	xdraw.ApproxBiLinear.Scale(dst, target, img, ib, draw.Over, nil)
}

func drawBorder(dst *image.RGBA) {
	b := dst.Bounds()
	edges := []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+borderWidth),
		image.Rect(b.Min.X, b.Max.Y-borderWidth, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+borderWidth, b.Max.Y),
		image.Rect(b.Max.X-borderWidth, b.Min.Y, b.Max.X, b.Max.Y),
	}
	for _, edge := range edges {
		draw.Draw(dst, edge, image.NewUniform(borderColor), image.Point{}, draw.Src)
	}
}

func drawElement(dst *image.RGBA, el domain.DesignElement) {
	c := parseColor(el.Color)

	switch el.Kind {
	case domain.ElementKindText:
		drawTextCentered(dst, el.Content, el.X, el.Y, el.FontSize, c)
	case domain.ElementKindShape:
		switch el.Content {
		case domain.ShapeRectangle:
			fillRectCentered(dst, el.X, el.Y, el.Width, el.Height, c)
		case domain.ShapeCircle:
			fillCircle(dst, el.X, el.Y, el.Width/2, c)
		}
	}
}

func fillRectCentered(dst *image.RGBA, cx, cy, w, h float64, c color.Color) {
	rect := image.Rect(
		int(cx-w/2), int(cy-h/2),
		int(cx+w/2), int(cy+h/2),
	)
	draw.Draw(dst, rect.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func fillCircle(dst *image.RGBA, cx, cy, radius float64, c color.Color) {
	bounds := image.Rect(
		int(cx-radius), int(cy-radius),
		int(cx+radius)+1, int(cy+radius)+1,
	).Intersect(dst.Bounds())

	r2 := radius * radius
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				dst.Set(x, y, c)
			}
		}
	}
}

// drawTextCentered draws s center-anchored at (x, y).
func drawTextCentered(dst *image.RGBA, s string, x, y float64, fontSize int, c color.Color) {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	face := faceForSize(fontSize)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}

	w := d.MeasureString(s)
	m := face.Metrics()
	d.Dot = fixed.Point26_6{
		X: fixed.I(int(x)) - w/2,
		Y: fixed.I(int(y)) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(s)
}

// drawLabel draws the translucent operator label in the top-left corner.
func drawLabel(dst *image.RGBA, text string) {
	w, h := measureText(text, labelFontSize)

	x0 := dst.Bounds().Min.X + borderWidth + labelPadding
	y0 := dst.Bounds().Min.Y + borderWidth + labelPadding
	bg := image.Rect(x0, y0, x0+int(w)+2*labelPadding, y0+int(h)+2*labelPadding)
	draw.Draw(dst, bg.Intersect(dst.Bounds()), image.NewUniform(labelBg), image.Point{}, draw.Over)

	face := faceForSize(labelFontSize)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelFg),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x0 + labelPadding),
			Y: fixed.I(y0+labelPadding) + face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
}

// parseColor resolves an element color. Accepts #rgb and #rrggbb hex forms
// and a small set of named colors; anything unparseable renders black.
func parseColor(s string) color.RGBA {
	if c, ok := garmentFills[s]; ok {
		return c
	}
	if len(s) == 7 && s[0] == '#' {
		r := hexByte(s[1], s[2])
		g := hexByte(s[3], s[4])
		b := hexByte(s[5], s[6])
		return color.RGBA{R: r, G: g, B: b, A: 255}
	}
	if len(s) == 4 && s[0] == '#' {
		r := hexByte(s[1], s[1])
		g := hexByte(s[2], s[2])
		b := hexByte(s[3], s[3])
		return color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return color.RGBA{A: 255}
}

func hexByte(hi, lo byte) uint8 {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(b byte) uint8 {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
