package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	"storefront/internal/domain"
)

// maxPixels bounds the declared size of an image before it is decoded.
const maxPixels = 40_000_000

// Downscale wraps next so that PNG and JPEG uploads wider than maxWidth are
// shrunk to maxWidth, keeping the aspect ratio. Other formats pass through.
func Downscale(next Store, maxWidth uint) Store {
	if maxWidth == 0 {
		return next
	}
	return &resizingStore{next: next, maxWidth: maxWidth, maxPixels: maxPixels}
}

type resizingStore struct {
	next      Store
	maxWidth  uint
	maxPixels int
}

func (s *resizingStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	var (
		config func(io.Reader) (image.Config, error)
		decode func(io.Reader) (image.Image, error)
		encode func(io.Writer, image.Image) error
	)
	switch ext {
	case ".png":
		config, decode, encode = png.DecodeConfig, png.Decode, png.Encode
	case ".jpg", ".jpeg":
		config, decode = jpeg.DecodeConfig, jpeg.Decode
		encode = func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: 85})
		}
	default:
		return s.next.Save(ctx, originalName, r)
	}

	// The header bytes read by config are replayed into decode.
	var head bytes.Buffer
	cfg, err := config(io.TeeReader(r, &head))
	if err != nil {
		return "", fmt.Errorf("decode %s header: %v: %w", ext, err, domain.ErrInvalidInput)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > s.maxPixels/cfg.Height {
		return "", fmt.Errorf("image %dx%d exceeds %d pixels: %w", cfg.Width, cfg.Height, s.maxPixels, domain.ErrInvalidInput)
	}

	img, err := decode(io.MultiReader(&head, r))
	if err != nil {
		return "", fmt.Errorf("decode %s image: %v: %w", ext, err, domain.ErrInvalidInput)
	}
	if uint(img.Bounds().Dx()) > s.maxWidth {
		img = resize.Resize(s.maxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode %s image: %w", ext, err)
	}
	return s.next.Save(ctx, originalName, &buf)
}

func (s *resizingStore) URL(name string) string {
	return s.next.URL(name)
}
