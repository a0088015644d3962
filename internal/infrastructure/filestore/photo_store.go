package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/storage-platform/storage-service/internal/domain"
)

// PhotoStore persists evidence photos on the local filesystem under
// <root>/<kind>/<shipmentID>/ and returns paths relative to the root.
// The returned paths are what gets recorded; serving the files back is
// someone else's job.
type PhotoStore struct {
	root string
}

// NewPhotoStore creates a PhotoStore rooted at dir
func NewPhotoStore(dir string) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo root: %w", err)
	}
	return &PhotoStore{root: dir}, nil
}

// Store writes the photos and returns their relative paths in input order
func (s *PhotoStore) Store(ctx context.Context, kind, shipmentID string, photos []domain.Photo) ([]string, error) {
	if len(photos) == 0 {
		return nil, nil
	}

	dir := filepath.Join(s.root, kind, shipmentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}

	paths := make([]string, 0, len(photos))
	for _, photo := range photos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := fmt.Sprintf("%s%s", uuid.New().String(), extensionFor(photo))
		if err := os.WriteFile(filepath.Join(dir, name), photo.Data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write photo %s: %w", photo.Name, err)
		}
		paths = append(paths, filepath.ToSlash(filepath.Join(kind, shipmentID, name)))
	}

	return paths, nil
}

// extensionFor derives a file extension from the upload, preferring the
// original filename over the declared content type.
func extensionFor(photo domain.Photo) string {
	if ext := filepath.Ext(photo.Name); ext != "" {
		return strings.ToLower(ext)
	}

	switch photo.ContentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
