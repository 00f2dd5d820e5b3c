package file

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Storage provides file access on top of an afero filesystem.
// The OS filesystem is used in production, an in-memory one in tests.
type Storage struct {
	fs afero.Fs
}

// NewStorage creates a new Storage over the given filesystem.
// A nil fs selects the OS filesystem.
func NewStorage(fs afero.Fs) *Storage {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Storage{fs: fs}
}

// Fs returns the underlying filesystem.
func (s *Storage) Fs() afero.Fs {
	return s.fs
}

// ReadDir lists the entries of dir. Entry modes are taken without following
// symbolic links.
func (s *Storage) ReadDir(dir string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	return entries, nil
}

// Exists reports whether path exists.
func (s *Storage) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// IsDir reports whether path exists and is a directory.
func (s *Storage) IsDir(path string) (bool, error) {
	return afero.IsDir(s.fs, path)
}

// Load opens the file at path for reading.
func (s *Storage) Load(path string) (io.ReadCloser, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	return f, nil
}

// Save writes src to path, truncating any existing file.
func (s *Storage) Save(path string, src io.Reader) error {
	dst, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to save file %s: %w", path, err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", path, err)
	}

	return nil
}
