package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalBlobStore persists media files on disk under a base directory.
type LocalBlobStore struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalBlobStore ensures the base directory exists and returns a handle.
func NewLocalBlobStore(baseDir, publicBaseURL string) (*LocalBlobStore, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalBlobStore{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Store copies from reader into the target file path and returns its URL.
func (s *LocalBlobStore) Store(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare media directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write media stream: %w", err)
	}
	return s.url(key), nil
}

// Delete removes a stored file if present.
func (s *LocalBlobStore) Delete(ctx context.Context, key string) error {
	path := s.resolve(key)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}

// BaseDir exposes the directory served by the static media route.
func (s *LocalBlobStore) BaseDir() string {
	return s.baseDir
}

func (s *LocalBlobStore) url(key string) string {
	return s.publicBaseURL + "/media/" + key
}

func (s *LocalBlobStore) resolve(key string) string {
	cleaned := filepath.Clean("/" + key)
	return filepath.Join(s.baseDir, cleaned)
}
