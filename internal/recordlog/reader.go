package recordlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Reader reads records line by line.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{sc: bufio.NewScanner(r)}
}

// Read returns the next record, or io.EOF at the end. Blank lines are
// skipped.
func (r *Reader) Read() (Record, error) {
	for r.sc.Scan() {
		r.line++
		text := r.sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		rec, err := ParseLine(text)
		if err != nil {
			return Record{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		return rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// ReadAll reads every record. Malformed lines are skipped and counted.
func ReadAll(r io.Reader) (records []Record, skipped int, err error) {
	rd := NewReader(r)
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			return records, skipped, nil
		}
		if err != nil {
			if errors.Is(err, ErrMalformedLine) {
				skipped++
				continue
			}
			return records, skipped, err
		}
		records = append(records, rec)
	}
}
