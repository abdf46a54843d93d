// Package osfilesystem provides a filesystem implementation using the os package.
package osfilesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/happlay/pkg/ports"
)

// FileSystem implements ports.FileSystem using the os package.
type FileSystem struct {
	assetRoot string
}

// New creates a new FileSystem whose asset root is the working directory.
func New() *FileSystem {
	return &FileSystem{}
}

// NewWithAssetRoot creates a FileSystem that resolves StreamingAssets paths
// below root.
func NewWithAssetRoot(root string) *FileSystem {
	return &FileSystem{assetRoot: root}
}

// AssetRoot returns the directory StreamingAssets paths are relative to.
func (fs *FileSystem) AssetRoot() string {
	return fs.assetRoot
}

// Open opens a file for reading.
func (fs *FileSystem) Open(path string) (ports.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Resolve returns the absolute path that Open should be given.
// StreamingAssets paths are joined to the asset root unless already absolute.
func (fs *FileSystem) Resolve(path string, mode ports.PathMode) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if mode == ports.StreamingAssets && !filepath.IsAbs(path) {
		path = filepath.Join(fs.assetRoot, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// ReadFile reads the entire contents of a file.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file, creating it if necessary.
func (fs *FileSystem) WriteFile(path string, data []byte) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// MkdirAll creates a directory and all parent directories.
func (fs *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists checks if a file or directory exists.
func (fs *FileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Remove deletes a file or empty directory.
func (fs *FileSystem) Remove(path string) error {
	return os.Remove(path)
}

// Ensure FileSystem implements ports.FileSystem
var _ ports.FileSystem = (*FileSystem)(nil)
