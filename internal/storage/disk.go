// Package storage persists uploaded media binaries on the local filesystem.
//
// The store is deliberately dumb: it knows nothing about entries, users, or
// databases. It writes bytes under generated names inside one directory, and
// the web server exposes that directory verbatim under the /uploads/ static
// prefix. Everything clever (classification, ownership, rows) lives in the
// media service.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes media binaries into a single flat directory.
type DiskStore struct {
	dir    string
	logger *slog.Logger
}

// New creates the upload directory if needed and returns a store over it.
func New(dir string, logger *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, logger: logger}, nil
}

// Dir returns the directory the store writes into — the server mounts this
// under the /uploads/ static route.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes data under the given name.
//
// The name must be server-generated (uuid + extension) — client-supplied
// filenames are display-only and never reach the filesystem. cleanName
// enforces that no path separator sneaks in regardless.
func (s *DiskStore) Save(name string, data []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, clean), data, 0o644); err != nil {
		return fmt.Errorf("storage: writing %s: %w", clean, err)
	}
	return nil
}

// Delete removes a stored binary by name. Idempotent: a missing file is not
// an error — the end state (no file) is what the caller wanted.
func (s *DiskStore) Delete(name string) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: removing %s: %w", clean, err)
	}
	return nil
}

// cleanName rejects anything that could escape the upload directory.
// Generated names never trip this; it guards against a future caller
// passing something derived from user input.
func cleanName(name string) (string, error) {
	base := filepath.Base(name)
	if base != name || name == "" || name == "." || strings.Contains(name, "..") {
		return "", fmt.Errorf("storage: invalid file name %q", name)
	}
	return base, nil
}
