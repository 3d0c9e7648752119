package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore saves uploaded files to disk under a base directory and serves them below baseURL.
type FileStore struct {
	basePath string
	baseURL  string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(basePath, baseURL string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &FileStore{basePath: basePath, baseURL: baseURL}, nil
}

// Root is the directory served for baseURL.
func (f *FileStore) Root() string {
	return f.basePath
}

// Put writes r to key, creating intermediate directories.
func (f *FileStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	target := filepath.Join(f.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create picture dir: %w", err)
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		os.Remove(target)
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// URL is the public path of key.
func (f *FileStore) URL(ctx context.Context, key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return f.baseURL + key, nil
}

// Delete removes key. Missing files are not an error.
func (f *FileStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	target := filepath.Join(f.basePath, filepath.FromSlash(key))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
