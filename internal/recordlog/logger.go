package recordlog

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/banshee-data/positionimu/internal/fsutil"
)

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("recordlog: logger closed")

// Logger appends records to a log. Each record is written with a single
// Write call while holding the lock, so lines never interleave.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	path   string
	count  int
	closed bool
}

// Open opens path for appending, creating it if needed. Existing content is
// kept.
func Open(path string) (*Logger, error) {
	return OpenFS(fsutil.OSFileSystem{}, path)
}

// OpenFS is Open on the given file system.
func OpenFS(fsys fsutil.FileSystem, path string) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "." && !fsys.Exists(dir) {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", dir, err)
		}
	}
	f, err := fsys.OpenAppend(path)
	if err != nil {
		return nil, fmt.Errorf("open record log %s: %w", path, err)
	}
	return &Logger{w: f, closer: f, path: path}, nil
}

// New returns a Logger writing to w. Close does not close w.
func New(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Append writes one line for r.
func (l *Logger) Append(r Record) error {
	line := []byte(FormatLine(r))

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	n, err := l.w.Write(line)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	if n != len(line) {
		return fmt.Errorf("append record: %w", io.ErrShortWrite)
	}
	l.count++
	return nil
}

// Count returns the number of records appended through this Logger.
func (l *Logger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Path returns the file path, or "" for a Logger built with New.
func (l *Logger) Path() string {
	return l.path
}

// Close closes the underlying file. It is safe to call more than once.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
