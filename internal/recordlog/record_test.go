package recordlog

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/positionimu/internal/orientation"
)

var ts = time.Date(2024, 5, 1, 12, 0, 0, 256789000, time.UTC)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "full record",
			rec: Record{
				Timestamp:   ts,
				Orientation: &orientation.Sample{Heading: 359.9375, Roll: 0, Pitch: -1.5},
				Position:    &image.Point{X: 312, Y: 204},
			},
			want: "2024-05-01 12:00:00.25,(359.9375, 0.0, -1.5),(312, 204)\n",
		},
		{
			name: "no detection",
			rec: Record{
				Timestamp:   ts,
				Orientation: &orientation.Sample{Heading: 12, Roll: 3.25, Pitch: 90},
			},
			want: "2024-05-01 12:00:00.25,(12.0, 3.25, 90.0),None\n",
		},
		{
			name: "no orientation",
			rec:  Record{Timestamp: ts, Position: &image.Point{X: 0, Y: 7}},
			want: "2024-05-01 12:00:00.25,None,(0, 7)\n",
		},
		{
			name: "local time is written as UTC",
			rec:  Record{Timestamp: time.Date(2024, 5, 1, 14, 0, 0, 90000000, time.FixedZone("CEST", 2*3600))},
			want: "2024-05-01 12:00:00.09,None,None\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLine(tt.rec))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.0", formatFloat(0))
	assert.Equal(t, "-0.0625", formatFloat(-0.0625))
	assert.Equal(t, "180.0", formatFloat(180))
}

func TestParseLine(t *testing.T) {
	rec := Record{
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 250000000, time.UTC),
		Orientation: &orientation.Sample{Heading: 359.9375, Roll: 0, Pitch: -1.5},
		Position:    &image.Point{X: 312, Y: 204},
	}
	got, err := ParseLine(FormatLine(rec))
	require.NoError(t, err)
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("ParseLine mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLineFourFractionDigits(t *testing.T) {
	got, err := ParseLine("2017-08-14 18:22:31.1234,(0.0, -2.5, 1.0625),None")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2017, 8, 14, 18, 22, 31, 123400000, time.UTC), got.Timestamp)
	assert.Equal(t, &orientation.Sample{Heading: 0, Roll: -2.5, Pitch: 1.0625}, got.Orientation)
	assert.Nil(t, got.Position)
}

func TestParseLineMalformed(t *testing.T) {
	for _, line := range []string{
		"",
		"not a timestamp,None,None",
		"2024-05-01 12:00:00.25",
		"2024-05-01 12:00:00.25,(1.0, 2.0),None",
		"2024-05-01 12:00:00.25,(1.0, 2.0, 3.0)",
		"2024-05-01 12:00:00.25,None,(1, x)",
		"2024-05-01 12:00:00.25,[1, 2, 3],None",
		"2024-05-01 12:00:00.25,(1.0, 2.0, 3.0,None",
	} {
		_, err := ParseLine(line)
		assert.True(t, errors.Is(err, ErrMalformedLine), "%q: %v", line, err)
	}
}
