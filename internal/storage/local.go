package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend writes objects below Dir; the HTTP server exposes Dir at
// BaseURL.
type LocalBackend struct {
	Dir     string
	BaseURL string
}

func NewLocalBackend(dir, baseURL string) *LocalBackend {
	return &LocalBackend{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (b *LocalBackend) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	path := filepath.Join(b.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return b.BaseURL + "/" + key, nil
}
