// Package local implements image storage on the local filesystem, served
// from a static file route.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yosefkovan/storefront/internal/storage"
)

// Storage implements storage.Storage on a local directory.
type Storage struct {
	rootDir string
	baseURL string
}

// New creates a local storage rooted at rootDir. Uploaded files are served
// under baseURL (for example "/images").
func New(rootDir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{
		rootDir: rootDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Upload writes the file to disk under the given key.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	path, err := s.resolve(input.Key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, input.Data); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &storage.UploadResult{
		Key: input.Key,
		URL: s.baseURL + "/" + input.Key,
	}, nil
}

// Delete removes a file by its key. Deleting a missing key is not an error.
func (s *Storage) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// GetURL returns the public URL for the given key.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s", key)
	}
	return s.baseURL + "/" + key, nil
}

// Root returns the directory files are stored in, for serving via a static
// file handler.
func (s *Storage) Root() string {
	return s.rootDir
}

// resolve maps a key to a filesystem path, rejecting keys that escape the
// storage root.
func (s *Storage) resolve(key string) (string, error) {
	cleaned := filepath.Clean("/" + key)
	if cleaned == "/" {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.rootDir, cleaned), nil
}
