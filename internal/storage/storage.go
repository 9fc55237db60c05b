// Package storage abstracts uploaded-file persistence behind a small Store
// interface. The local-disk implementation serves single-node deployments;
// an object store would plug in at the same seam.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store saves uploaded files and deletes them by their public URL.
type Store interface {
	Save(folder, filename string, r io.Reader) (string, error)
	Delete(url string) error
}

// LocalStore writes uploads under a base directory and serves them from
// the /uploads URL prefix.
type LocalStore struct {
	baseDir string
}

// URLPrefix is the public path uploads are served from.
const URLPrefix = "/uploads"

// NewLocalStore constructs a LocalStore rooted at baseDir.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{baseDir: baseDir}
}

// Save writes the file under folder with a randomized name and returns its
// public URL.
func (s *LocalStore) Save(folder, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext

	dir := filepath.Join(s.baseDir, folder)
	if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
		return "", fmt.Errorf("storage: create dir: %w", errMkdir)
	}

	dst, errCreate := os.Create(filepath.Join(dir, name))
	if errCreate != nil {
		return "", fmt.Errorf("storage: create file: %w", errCreate)
	}
	defer func() { _ = dst.Close() }()

	if _, errCopy := io.Copy(dst, r); errCopy != nil {
		return "", fmt.Errorf("storage: write file: %w", errCopy)
	}
	return path.Join(URLPrefix, folder, name), nil
}

// Delete removes the file behind a public URL. Unknown URLs are ignored.
func (s *LocalStore) Delete(url string) error {
	rel, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok {
		return nil
	}
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	errRemove := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
	if errRemove != nil && !os.IsNotExist(errRemove) {
		return fmt.Errorf("storage: delete file: %w", errRemove)
	}
	return nil
}

// BaseDir returns the root directory files are stored under.
func (s *LocalStore) BaseDir() string { return s.baseDir }
