package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_OpenAppend(t *testing.T) {
	osfs := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "append.csv")

	for _, line := range []string{"first\n", "second\n"} {
		w, err := osfs.OpenAppend(path)
		if err != nil {
			t.Fatalf("OpenAppend failed: %v", err)
		}
		if _, err := io.WriteString(w, line); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
	}

	data, err := osfs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("content = %q, want both lines appended", data)
	}

	info, err := osfs.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != int64(len(data)) {
		t.Errorf("Size() = %d, want %d", info.Size(), len(data))
	}
}

func TestOSFileSystem_MkdirAll(t *testing.T) {
	osfs := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := osfs.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestMemoryFileSystem_AppendAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.OpenAppend("/logs/out.csv")
	if err != nil {
		t.Fatalf("OpenAppend failed: %v", err)
	}
	io.WriteString(w, "a\n")
	io.WriteString(w, "b\n")

	// data is visible before Close
	data, err := mfs.ReadFile("/logs/out.csv")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "a\nb\n" {
		t.Errorf("expected %q, got %q", "a\nb\n", data)
	}
	if got := mfs.Writes("/logs/out.csv"); got != 2 {
		t.Errorf("Writes() = %d, want 2", got)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := w.Write([]byte("c\n")); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("write after close error = %v, want fs.ErrClosed", err)
	}

	// reopening keeps existing content
	w2, _ := mfs.OpenAppend("/logs/out.csv")
	io.WriteString(w2, "c\n")
	data, _ = mfs.ReadFile("/logs/out.csv")
	if string(data) != "a\nb\nc\n" {
		t.Errorf("expected reopened append, got %q", data)
	}
}

func TestMemoryFileSystem_OpenAndStat(t *testing.T) {
	mfs := NewMemoryFileSystem()
	mfs.WriteFile("/cfg.json", []byte(`{"min_radius":12}`), 0o644)

	f, err := mfs.Open("/cfg.json")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != `{"min_radius":12}` {
		t.Errorf("unexpected content %q", data)
	}

	info, err := mfs.Stat("/cfg.json")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != int64(len(data)) || info.IsDir() {
		t.Errorf("unexpected file info: size=%d dir=%v", info.Size(), info.IsDir())
	}

	if _, err := mfs.Open("/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open missing error = %v, want ErrNotExist", err)
	}
	if _, err := mfs.Stat("/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat missing error = %v, want ErrNotExist", err)
	}
}

func TestMemoryFileSystem_MkdirAll(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("/a/b/c", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		if !mfs.Exists(dir) {
			t.Errorf("expected %s to exist", dir)
		}
		info, err := mfs.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("Stat(%s) = %v, %v; want directory", dir, info, err)
		}
	}
}
