package canvas

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontOnce   sync.Once
	parsedFont *opentype.Font

	faceMu sync.Mutex
	faces  = map[int]font.Face{}
)

// faceForSize returns a cached face for the given point size. The bundled Go
// Regular face stands in for whatever family an element names; the family
// string is preserved in the payload for client-side fidelity.
func faceForSize(size int) font.Face {
	fontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			// The embedded TTF is a compile-time asset; a parse failure
			// means a broken toolchain, not a runtime condition.
			panic("canvas: failed to parse bundled font: " + err.Error())
		}
		parsedFont = f
	})

	faceMu.Lock()
	defer faceMu.Unlock()

	if face, ok := faces[size]; ok {
		return face
	}

	face, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic("canvas: failed to build font face: " + err.Error())
	}
	faces[size] = face
	return face
}

// measureText returns the rendered width and height of s at the given size.
func measureText(s string, size int) (w, h float64) {
	d := &font.Drawer{Face: faceForSize(size)}
	adv := d.MeasureString(s)
	return float64(adv >> 6), float64(size)
}
