package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const utf8BOM = "\uFEFF"

// Reader streams rows from a delimited transaction file.
type Reader struct {
	csv    *csv.Reader
	header []string
	line   int
}

// NewReader reads the header line from r. An empty input yields a reader
// with no rows rather than an error.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	rd := &Reader{csv: cr}
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return rd, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrDecode, err)
	}
	rd.line = 1
	rd.header = make([]string, len(header))
	for i, h := range header {
		if !utf8.ValidString(h) {
			return nil, fmt.Errorf("%w: header is not valid UTF-8", ErrDecode)
		}
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		rd.header[i] = strings.TrimSpace(h)
	}
	return rd, nil
}

// Header returns the column names in file order.
func (r *Reader) Header() []string { return r.header }

// Next returns the next row, or io.EOF when the input is exhausted. Short
// lines leave trailing columns absent; extra fields are dropped. Framing or
// encoding problems wrap ErrDecode.
func (r *Reader) Next() (Row, error) {
	if r.header == nil {
		return nil, io.EOF
	}
	for {
		rec, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: line %d: %v", ErrDecode, r.line+1, err)
		}
		r.line++
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := make(Row, len(r.header))
		for i, v := range rec {
			if i >= len(r.header) {
				break
			}
			if !utf8.ValidString(v) {
				return nil, fmt.Errorf("%w: line %d is not valid UTF-8", ErrDecode, r.line)
			}
			row[r.header[i]] = v
		}
		return row, nil
	}
}
