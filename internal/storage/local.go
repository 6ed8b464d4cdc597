package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type LocalProvider struct {
	baseDir string
}

func NewLocalProvider(baseDir string) (*LocalProvider, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create payload directory: %w", err)
	}

	return &LocalProvider{baseDir: baseDir}, nil
}

func (l *LocalProvider) path(key string) string {
	// Keys are flat tokens; Base guards against traversal anyway.
	return filepath.Join(l.baseDir, filepath.Base(key))
}

func (l *LocalProvider) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	dst, err := os.Create(l.path(key))
	if err != nil {
		return 0, fmt.Errorf("failed to create payload file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, r)
	if err != nil {
		return n, fmt.Errorf("failed to write payload: %w", err)
	}
	return n, nil
}

func (l *LocalProvider) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(l.path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open payload: %w", err)
	}
	return file, nil
}

func (l *LocalProvider) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("error checking payload existence: %w", err)
}

func (l *LocalProvider) Delete(ctx context.Context, key string) error {
	if err := os.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete payload: %w", err)
	}
	return nil
}

func (l *LocalProvider) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("error reading payload directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		keys = append(keys, entry.Name())
	}
	return keys, nil
}

func (l *LocalProvider) Close() error {
	return nil
}
