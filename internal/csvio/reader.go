// Package csvio reads the raw track catalog from CSV into a string-columned
// table. No type inference happens here: typing is driven by the canonical
// schema during cleaning, so the loader's only jobs are decoding, header
// capture, and row-to-column transposition.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Options configures CSV reading.
type Options struct {
	Delimiter        rune // Field delimiter (default ',')
	Header           bool // First record is the header row
	Latin1           bool // Decode input as ISO 8859-1 (the catalog's source encoding)
	SkipInitialSpace bool // Trim leading whitespace in fields
}

// DefaultOptions returns reader options matching the published catalog:
// comma-delimited, headered, Latin-1 encoded.
func DefaultOptions() Options {
	return Options{
		Delimiter:        ',',
		Header:           true,
		Latin1:           true,
		SkipInitialSpace: true,
	}
}

// Reader reads CSV data into a RawTable.
type Reader struct {
	reader  io.Reader
	options Options
}

// NewReader creates a Reader over r with the given options.
func NewReader(r io.Reader, options Options) *Reader {
	if options.Delimiter == 0 {
		options.Delimiter = ','
	}
	return &Reader{reader: r, options: options}
}

// Read consumes the entire input and returns the raw table.
func (r *Reader) Read() (*RawTable, error) {
	src := r.reader
	if r.options.Latin1 {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}

	csvReader := csv.NewReader(src)
	csvReader.Comma = r.options.Delimiter
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) == 0 {
		return newRawTable(nil, nil), nil
	}

	var headers []string
	var dataRows [][]string

	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		numCols := len(records[0])
		headers = make([]string, numCols)
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = records
	}

	// Transpose to column-major form; short rows pad with empty strings.
	numCols := len(headers)
	columns := make([][]string, numCols)
	for i := range columns {
		columns[i] = make([]string, len(dataRows))
		for j, row := range dataRows {
			if i < len(row) {
				columns[i][j] = row[i]
			}
		}
	}

	return newRawTable(headers, columns), nil
}

// ReadFile reads an entire CSV file into a RawTable.
func ReadFile(path string, options Options) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return NewReader(f, options).Read()
}
