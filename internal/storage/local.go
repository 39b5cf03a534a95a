package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Prefix is the directory under the file-store root holding everything
// this module writes, so an uninstall can remove one tree.
const Prefix = "contactus"

// LocalStore keeps attachments on the local filesystem under
// <base>/contactus/<derivative>/<filename>.
type LocalStore struct {
	base string
}

func NewLocalStore(base string) *LocalStore {
	return &LocalStore{base: base}
}

func (s *LocalStore) path(d Derivative, filename string) string {
	return filepath.Join(s.base, Prefix, string(d), filename)
}

func (s *LocalStore) Put(_ context.Context, filename string, r io.Reader) error {
	dest := s.path(Original, filename)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("storage: create: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("storage: write: %w", err)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, d Derivative, filename string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(d, filename))
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Delete(_ context.Context, filename string) error {
	for _, d := range derivatives {
		if err := os.Remove(s.path(d, filename)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("storage: remove: %w", err)
		}
	}
	return nil
}
