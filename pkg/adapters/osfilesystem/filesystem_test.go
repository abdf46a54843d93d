package osfilesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/happlay/pkg/ports"
)

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "a", "b", "clip.mov")

	if err := fs.WriteFile(testPath, []byte("movie")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(testPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "movie" {
		t.Errorf("expected %q, got %q", "movie", data)
	}
}

func TestFileSystem_OpenReadsAt(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "clip.mov")
	if err := os.WriteFile(testPath, []byte("0123456789"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := fs.Open(testPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	buf := make([]byte, 3)
	if _, err := f.ReadAt(buf, 4); err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if string(buf) != "456" {
		t.Errorf("expected %q, got %q", "456", buf)
	}

	// ReadAt does not move the seek position.
	head := make([]byte, 2)
	if _, err := io.ReadFull(f, head); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(head) != "01" {
		t.Errorf("expected %q, got %q", "01", head)
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 10 {
		t.Errorf("expected size 10, got %d", info.Size())
	}
}

func TestFileSystem_OpenMissing(t *testing.T) {
	_, err := New().Open(filepath.Join(t.TempDir(), "missing.mov"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestFileSystem_Resolve(t *testing.T) {
	root := t.TempDir()
	fs := NewWithAssetRoot(root)
	abs := filepath.Join(root, "elsewhere", "clip.mov")

	tests := []struct {
		name string
		path string
		mode ports.PathMode
		want string
	}{
		{"streaming assets relative", "rgb/24.mov", ports.StreamingAssets, filepath.Join(root, "rgb", "24.mov")},
		{"streaming assets absolute", abs, ports.StreamingAssets, abs},
		{"local absolute", abs, ports.LocalFileSystem, abs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fs.Resolve(tt.path, tt.mode)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	if _, err := fs.Resolve("", ports.LocalFileSystem); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestFileSystem_ResolveLocalIsAbsolute(t *testing.T) {
	got, err := New().Resolve("clip.mov", ports.LocalFileSystem)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %s", got)
	}
}

func TestFileSystem_ExistsAndRemove(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(testPath, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	exists, err := fs.Exists(testPath)
	if err != nil || !exists {
		t.Fatalf("expected file to exist, got %v, %v", exists, err)
	}

	if err := fs.Remove(testPath); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	exists, err = fs.Exists(testPath)
	if err != nil || exists {
		t.Errorf("expected file to be removed, got %v, %v", exists, err)
	}
}
