package canvas

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	_ "image/jpeg"
	_ "image/png"
)

const (
	mockupFetchTimeout = 10 * time.Second
	mockupMaxBytes     = 8 << 20
)

// fallbackColor is the variant used when a requested color has no image.
const fallbackColor = "white"

// MockupLibrary holds product mockup images keyed by garment color. Variants
// are fetched best-effort in parallel at startup; a color without an image
// falls back to the white variant, and rendering falls back to a solid fill
// when nothing resolved at all.
type MockupLibrary struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewMockupLibrary returns an empty library; rendering uses solid fills.
func NewMockupLibrary() *MockupLibrary {
	return &MockupLibrary{images: make(map[string]image.Image)}
}

// LoadMockups fetches the mockup variant for each color from
// {baseURL}/{color}.png. Every fetch carries its own timeout so the library
// settles even when a host never responds. Individual failures are logged
// and skipped.
func LoadMockups(ctx context.Context, client *http.Client, baseURL string, colors []string, logger *zap.Logger) *MockupLibrary {
	lib := NewMockupLibrary()
	if baseURL == "" {
		return lib
	}
	if client == nil {
		client = http.DefaultClient
	}

	var wg sync.WaitGroup
	for _, c := range colors {
		wg.Add(1)
		go func(colorName string) {
			defer wg.Done()

			img, err := fetchMockup(ctx, client, fmt.Sprintf("%s/%s.png", baseURL, colorName))
			if err != nil {
				logger.Warn("Mockup fetch failed, falling back to solid fill",
					zap.String("color", colorName),
					zap.Error(err),
				)
				return
			}

			lib.mu.Lock()
			lib.images[colorName] = img
			lib.mu.Unlock()
		}(c)
	}
	wg.Wait()

	return lib
}

// ImageFor returns the mockup for color, falling back to the white variant.
// The second return is false when no usable image exists.
func (l *MockupLibrary) ImageFor(color string) (image.Image, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if img, ok := l.images[color]; ok {
		return img, true
	}
	if img, ok := l.images[fallbackColor]; ok {
		return img, true
	}
	return nil, false
}

func fetchMockup(ctx context.Context, client *http.Client, url string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, mockupFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build mockup request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mockup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mockup fetch returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, mockupMaxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode mockup image: %w", err)
	}

	return img, nil
}
