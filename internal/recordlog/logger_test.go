package recordlog

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/positionimu/internal/fsutil"
	"github.com/banshee-data/positionimu/internal/orientation"
)

func TestOpenAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positionIMU.csv")
	existing := "2017-08-14 18:22:31.1234,(0.0, 0.0, 0.0),None\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Append(Record{Timestamp: ts, Position: &image.Point{X: 1, Y: 2}}))
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, existing+"2024-05-01 12:00:00.25,None,(1, 2)\n", string(data))
	assert.Equal(t, 1, l.Count())
	assert.Equal(t, path, l.Path())
}

func TestOpenFSCreatesDirectory(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	l, err := OpenFS(fsys, "logs/run/positionIMU.csv")
	require.NoError(t, err)
	defer l.Close()

	assert.True(t, fsys.Exists("logs/run"))
	assert.True(t, fsys.Exists("logs/run/positionIMU.csv"))
}

func TestAppendIsOneWritePerRecord(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	l, err := OpenFS(fsys, "positionIMU.csv")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		rec := Record{
			Timestamp:   ts.Add(time.Duration(i) * 40 * time.Millisecond),
			Orientation: &orientation.Sample{Heading: float64(i)},
		}
		require.NoError(t, l.Append(rec))
	}
	require.NoError(t, l.Close())

	assert.Equal(t, 3, fsys.Writes("positionIMU.csv"))
	data, err := fsys.ReadFile("positionIMU.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))

	err = l.Append(Record{Timestamp: ts})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				p := image.Point{X: g, Y: i}
				_ = l.Append(Record{Timestamp: ts, Position: &p})
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 400, l.Count())
	records, skipped, err := ReadAll(&buf)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Len(t, records, 400)
}

type failingWriter struct{ short bool }

func (f failingWriter) Write(p []byte) (int, error) {
	if f.short {
		return len(p) - 1, nil
	}
	return 0, errors.New("disk full")
}

func TestAppendWriteFailure(t *testing.T) {
	l := New(failingWriter{})
	err := l.Append(Record{Timestamp: ts})
	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, l.Count())

	l = New(failingWriter{short: true})
	err = l.Append(Record{Timestamp: ts})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestReaderSkipsBlankLinesAndReportsLineNumbers(t *testing.T) {
	in := "2024-05-01 12:00:00.25,None,None\n\n2024-05-01 12:00:00.50,None,(garbage\n"
	r := NewReader(strings.NewReader(in))

	_, err := r.Read()
	require.NoError(t, err)
	_, err = r.Read()
	assert.ErrorContains(t, err, "line 3")
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)

	records, skipped, err := ReadAll(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, skipped)
}

func ExampleFormatLine() {
	fmt.Print(FormatLine(Record{
		Timestamp:   time.Date(2017, 8, 14, 18, 22, 31, 500000000, time.UTC),
		Orientation: &orientation.Sample{Heading: 90, Roll: -0.5, Pitch: 2.25},
		Position:    &image.Point{X: 300, Y: 150},
	}))
	// Output: 2017-08-14 18:22:31.50,(90.0, -0.5, 2.25),(300, 150)
}
