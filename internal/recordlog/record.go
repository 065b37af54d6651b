// Package recordlog appends one time-correlated line per processed frame to
// a flat text log and reads such logs back for analysis.
package recordlog

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/positionimu/internal/orientation"
)

// TimestampLayout is the UTC timestamp written at the start of every line.
// Fractional seconds are truncated to hundredths.
const TimestampLayout = "2006-01-02 15:04:05.00"

// parseLayout accepts any number of fractional digits.
const parseLayout = "2006-01-02 15:04:05"

// None marks a missing value.
const None = "None"

// ErrMalformedLine is returned by ParseLine for lines it cannot read.
var ErrMalformedLine = errors.New("recordlog: malformed line")

// Record is one line of the log. Nil fields are written as None.
type Record struct {
	Timestamp   time.Time
	Orientation *orientation.Sample
	Position    *image.Point
}

// FormatLine renders r as a newline terminated log line:
//
//	2024-05-01 12:00:00.25,(359.9375, 0.0, -1.5),(312, 204)
func FormatLine(r Record) string {
	var b strings.Builder
	b.Grow(64)
	b.WriteString(r.Timestamp.UTC().Format(TimestampLayout))
	b.WriteByte(',')
	if r.Orientation == nil {
		b.WriteString(None)
	} else {
		fmt.Fprintf(&b, "(%s, %s, %s)",
			formatFloat(r.Orientation.Heading),
			formatFloat(r.Orientation.Roll),
			formatFloat(r.Orientation.Pitch))
	}
	b.WriteByte(',')
	if r.Position == nil {
		b.WriteString(None)
	} else {
		fmt.Fprintf(&b, "(%d, %d)", r.Position.X, r.Position.Y)
	}
	b.WriteByte('\n')
	return b.String()
}

// formatFloat writes the shortest round-trip form and always keeps a decimal
// point, so integral angles read as 0.0 rather than 0.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// ParseLine reads a line written by FormatLine. Lines with four fractional
// digits in the timestamp are accepted too.
func ParseLine(line string) (Record, error) {
	var r Record
	line = strings.TrimRight(line, "\r\n")

	ts, rest, ok := strings.Cut(line, ",")
	if !ok {
		return r, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	t, err := time.ParseInLocation(parseLayout, ts, time.UTC)
	if err != nil {
		return r, fmt.Errorf("%w: timestamp: %v", ErrMalformedLine, err)
	}
	r.Timestamp = t

	orient, rest, err := cutField(rest)
	if err != nil {
		return r, err
	}
	if orient != None {
		vals, err := parseTuple(orient, 3, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
		if err != nil {
			return r, err
		}
		r.Orientation = &orientation.Sample{Heading: vals[0], Roll: vals[1], Pitch: vals[2]}
	}

	if !strings.HasPrefix(rest, ",") {
		return r, fmt.Errorf("%w: missing position field", ErrMalformedLine)
	}
	pos := strings.TrimSpace(rest[1:])
	if pos != None {
		vals, err := parseTuple(pos, 2, strconv.Atoi)
		if err != nil {
			return r, err
		}
		r.Position = &image.Point{X: vals[0], Y: vals[1]}
	}
	return r, nil
}

// cutField splits off a leading None or parenthesised tuple.
func cutField(s string) (field, rest string, err error) {
	if strings.HasPrefix(s, None) {
		return None, s[len(None):], nil
	}
	if !strings.HasPrefix(s, "(") {
		return "", "", fmt.Errorf("%w: expected tuple in %q", ErrMalformedLine, s)
	}
	end := strings.IndexByte(s, ')')
	if end < 0 {
		return "", "", fmt.Errorf("%w: unterminated tuple in %q", ErrMalformedLine, s)
	}
	return s[:end+1], s[end+1:], nil
}

func parseTuple[T any](s string, n int, parse func(string) (T, error)) ([]T, error) {
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("%w: expected tuple, got %q", ErrMalformedLine, s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%w: tuple %q has %d values, want %d", ErrMalformedLine, s, len(parts), n)
	}
	out := make([]T, n)
	for i, p := range parts {
		v, err := parse(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		out[i] = v
	}
	return out, nil
}
