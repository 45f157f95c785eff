package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

const (
	thumbnailWidth  = 300
	thumbnailHeight = 300
)

// RenderPNG renders the state at full canvas size and returns the PNG bytes.
func (r *Renderer) RenderPNG(st *State) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	r.Render(img, st)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode canvas: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail renders the state at thumbnail size and returns it as a PNG
// data URI suitable for embedding in a saved design record.
func (r *Renderer) Thumbnail(st *State) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, thumbnailWidth, thumbnailHeight))
	r.Render(img, st)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
