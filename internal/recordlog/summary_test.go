package recordlog

import (
	"bytes"
	"image"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/positionimu/internal/orientation"
)

func sampleRecords() []Record {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var recs []Record
	for i := 0; i < 5; i++ {
		r := Record{
			Timestamp:   start.Add(time.Duration(i) * 250 * time.Millisecond),
			Orientation: &orientation.Sample{Heading: []float64{350, 355, 0, 5, 10}[i], Roll: 1, Pitch: -1},
		}
		if i%2 == 0 {
			r.Position = &image.Point{X: 100 + 10*i, Y: 50}
		}
		recs = append(recs, r)
	}
	return recs
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRecords())

	assert.Equal(t, 5, s.Records)
	assert.Equal(t, 3, s.Detections)
	assert.Equal(t, 5, s.Orientations)
	assert.InDelta(t, 0.6, s.DetectionRate(), 1e-9)
	assert.Equal(t, time.Second, s.Duration())
	assert.InDelta(t, 4.0, s.FrameRate(), 1e-9)

	assert.InDelta(t, 120, s.MeanX, 1e-9)
	assert.InDelta(t, 20, s.StdX, 1e-9)
	assert.InDelta(t, 50, s.MeanY, 1e-9)
	assert.InDelta(t, 0, s.StdY, 1e-9)

	// Circular mean across the 0/360 wrap.
	wrapped := math.Mod(s.MeanHeading+180, 360) - 180
	assert.InDelta(t, 0, wrapped, 1e-6)
	assert.Greater(t, s.HeadingSpread, 0.0)
	assert.Less(t, s.HeadingSpread, 10.0)
	assert.InDelta(t, 1, s.MeanRoll, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, s.WriteText(&buf))
	assert.Contains(t, buf.String(), "detections:   3 (60.0%)")
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Records)
	assert.Zero(t, s.DetectionRate())
	assert.Zero(t, s.FrameRate())
}

func TestWritePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.png")
	require.NoError(t, WritePlot(sampleRecords(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])

	assert.Error(t, WritePlot(nil, path))
}

func TestWriteChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(sampleRecords(), &buf))
	assert.Contains(t, buf.String(), "Tracked positions")
	assert.Contains(t, buf.String(), "echarts")

	err := WriteChart([]Record{{Timestamp: time.Now()}}, &buf)
	assert.Error(t, err)
}
