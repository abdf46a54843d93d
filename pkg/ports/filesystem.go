package ports

import (
	"io"
	"io/fs"
)

// PathMode selects how a movie path is interpreted.
type PathMode int

const (
	// StreamingAssets resolves the path relative to the configured asset root.
	StreamingAssets PathMode = iota
	// LocalFileSystem uses the path as given.
	LocalFileSystem
)

// String returns the configuration name of the mode.
func (m PathMode) String() string {
	switch m {
	case StreamingAssets:
		return "streaming_assets"
	case LocalFileSystem:
		return "local"
	default:
		return "unknown"
	}
}

// ParsePathMode parses "streaming_assets" or "local".
// Unknown values fall back to LocalFileSystem.
func ParsePathMode(s string) PathMode {
	switch s {
	case "streaming_assets", "streaming-assets", "assets":
		return StreamingAssets
	default:
		return LocalFileSystem
	}
}

// File is an open movie file. Frame payloads are read with ReadAt so the
// decode worker never shares a seek position with the caller.
type File interface {
	io.ReaderAt
	io.ReadSeeker
	io.Closer
	Stat() (fs.FileInfo, error)
}

// FileSystem abstracts file system operations.
type FileSystem interface {
	// Open opens a file for reading.
	Open(path string) (File, error)

	// Resolve maps a path and mode to the path that will be opened.
	Resolve(path string, mode PathMode) (string, error)

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
