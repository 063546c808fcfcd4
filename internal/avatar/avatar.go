// Package avatar downloads profile pictures and draws them with terminal
// half-block characters, two pixels per cell.
package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes caps the size of a downloaded image
const DefaultMaxBytes = 4 << 20

// ErrTooLarge is returned when the image exceeds the fetcher's size cap
var ErrTooLarge = errors.New("avatar image too large")

const halfBlock = "▀"

// Fetcher downloads avatar images
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a fetcher. The client should not carry API
// credentials; avatars are served from a separate host.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{client: client, maxBytes: DefaultMaxBytes}
}

// WithMaxBytes returns a copy of f with another size cap
func (f *Fetcher) WithMaxBytes(n int64) *Fetcher {
	cp := *f
	cp.maxBytes = n
	return &cp
}

// Fetch downloads and decodes the image at rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build avatar request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch avatar: unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, ErrTooLarge
	}

	// read one byte past the cap to tell a full read from a truncated one
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, ErrTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar: %w", err)
	}
	return img, nil
}

// Render draws img cols cells wide, keeping its aspect ratio. Each cell
// shows the upper pixel as foreground and the lower one as background.
func Render(img image.Image, cols int) string {
	if img == nil || cols <= 0 {
		return ""
	}
	b := img.Bounds()
	if b.Empty() {
		return ""
	}

	rows := cols * b.Dy() / b.Dx()
	if rows < 2 {
		rows = 2
	}
	if rows%2 != 0 {
		rows++
	}

	dst := image.NewRGBA(image.Rect(0, 0, cols, rows))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			top := dst.RGBAAt(x, y)
			bottom := dst.RGBAAt(x, y+1)
			style := lipgloss.NewStyle().
				Foreground(hexColor(top)).
				Background(hexColor(bottom))
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String()
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
