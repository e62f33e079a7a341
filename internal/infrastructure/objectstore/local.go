// Package objectstore persists rendered documents. The local store
// writes under a base directory and maps keys to URLs served by the
// application's static file route.
package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"apotheca/internal/core/apperror"
	"apotheca/pkg/logger"
)

// LocalStore writes objects to the local filesystem.
type LocalStore struct {
	baseDir string
	baseURL string
}

// NewLocalStore creates a store rooted at baseDir. Stored objects are
// addressable under baseURL joined with their key.
func NewLocalStore(baseDir, baseURL string) *LocalStore {
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Put writes the object and returns its URL.
func (s *LocalStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", apperror.NewValidation("invalid object key").WithDetail("key", key)
	}

	path := filepath.Join(s.baseDir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write object %s: %w", key, err)
	}

	logger.FromContext(ctx).Debugw("object stored",
		"key", key,
		"content_type", contentType,
		"size", len(data),
	)

	return s.baseURL + "/" + filepath.ToSlash(clean), nil
}
