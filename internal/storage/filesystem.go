package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FilesystemUploader implements Uploader against a local directory. Used in
// development and tests; the reference it returns is the absolute path.
type FilesystemUploader struct {
	baseDir string
}

func NewFilesystemUploader(baseDir string) (*FilesystemUploader, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FilesystemUploader{baseDir: baseDir}, nil
}

func (u *FilesystemUploader) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	path := filepath.Join(u.baseDir, key)

	// Security: prevent directory traversal
	if !filepath.HasPrefix(filepath.Clean(path), filepath.Clean(u.baseDir)) {
		return "", fmt.Errorf("invalid key: path traversal detected")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}
