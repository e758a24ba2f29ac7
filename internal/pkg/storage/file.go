package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileOptions configures the filesystem backend.
type FileOptions struct {
	// Dir is the root directory blobs are written under.
	Dir string
}

// File stores blobs as files under a root directory.
type File struct {
	dir string
}

// NewFile creates the root directory when needed and returns a File backend.
func NewFile(opts FileOptions) (*File, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	return &File{dir: dir}, nil
}

// Put writes data atomically by renaming a temp file over the target.
func (f *File) Put(_ context.Context, key string, data []byte, _ string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Get reads the blob stored under key.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- path is confined to the root directory.
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return data, err
}

// Delete removes the blob stored under key.
func (f *File) Delete(_ context.Context, key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Close is a no-op.
func (f *File) Close() error {
	return nil
}

func (f *File) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(key, "..") || clean == "/" {
		return "", fs.ErrInvalid
	}
	return filepath.Join(f.dir, filepath.FromSlash(clean)), nil
}
