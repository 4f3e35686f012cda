// Package imagestore persists uploaded product images on local disk or S3.
package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// Store saves an image and returns the file name recorded on the product.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	URL(name string) string
}

// New builds the store selected by cfg.Driver, downscaling uploads wider than
// cfg.MaxWidth.
func New(ctx context.Context, cfg config.ImageConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case "", "local":
		store, err = NewLocal(cfg.Dir, cfg.BaseURL)
	case "s3":
		store, err = NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("imagestore: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return Downscale(store, cfg.MaxWidth), nil
}

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// fileName keeps the extension of the upload and replaces the rest with a
// random id so uploads never overwrite each other.
func fileName(original string) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedExt[ext] {
		return "", fmt.Errorf("image extension %q: %w", ext, domain.ErrInvalidInput)
	}
	return uuid.NewString() + ext, nil
}

type localStore struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: create dir: %w", err)
	}
	return &localStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *localStore) Save(_ context.Context, originalName string, r io.Reader) (string, error) {
	name, err := fileName(originalName)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	return name, f.Close()
}

func (s *localStore) URL(name string) string {
	return s.baseURL + "/" + name
}
