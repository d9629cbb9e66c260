// Package imagestore persists uploaded listing images and returns their public URLs.
package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for uploads that are not images we accept.
var ErrUnsupportedType = errors.New("unsupported image type")

// ErrTooLarge is returned when an upload exceeds the configured size.
var ErrTooLarge = errors.New("image too large")

// Stored identifies a saved image.
type Stored struct {
	ID  string
	URL string
}

// Store saves and deletes image files.
type Store interface {
	Put(ctx context.Context, filename string, r io.Reader) (Stored, error)
	Delete(ctx context.Context, id string) error
}

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalStore writes images to a directory served at baseURL.
type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalStore(dir, baseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

// Put sniffs the content type, then writes the file under a fresh uuid name.
// The original filename is not used for storage.
func (s *LocalStore) Put(ctx context.Context, filename string, r io.Reader) (Stored, error) {
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}

	limit := s.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Stored{}, fmt.Errorf("failed to read upload %s: %w", filename, err)
	}
	if int64(len(data)) > limit {
		return Stored{}, fmt.Errorf("%w: %s", ErrTooLarge, filename)
	}

	ext, ok := allowedTypes[mimetype.Detect(data).String()]
	if !ok {
		return Stored{}, fmt.Errorf("%w: %s", ErrUnsupportedType, filename)
	}

	id := uuid.NewString() + ext
	path := filepath.Join(s.dir, id)
	if err := writeFile(path, bytes.NewReader(data)); err != nil {
		return Stored{}, err
	}
	return Stored{ID: id, URL: s.baseURL + "/" + id}, nil
}

// Delete removes the file for id. Missing files are not an error.
func (s *LocalStore) Delete(ctx context.Context, id string) error {
	if id == "" || id != filepath.Base(id) {
		return fmt.Errorf("invalid image id %q", id)
	}
	if err := os.Remove(filepath.Join(s.dir, id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image %s: %w", id, err)
	}
	return nil
}

func writeFile(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return f.Close()
}
