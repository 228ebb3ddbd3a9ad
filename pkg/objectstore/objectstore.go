// Package objectstore abstracts storage of uploaded artifacts (ID cards,
// payment proofs). The core only ever persists the returned URL, never the
// raw bytes.
package objectstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store saves an artifact and returns a stable URL for it.
type Store interface {
	Save(name string, r io.Reader) (string, error)
}

// DiskStore writes artifacts under a local directory served as static files.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: baseURL}
}

func (s *DiskStore) Save(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	// Randomized filename so uploads can never clobber each other.
	filename := uuid.NewString() + filepath.Ext(name)
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.baseURL + "/" + filename, nil
}
