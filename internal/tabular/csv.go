// Package tabular reads plain attribute tables that accompany the shapefiles.
package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures ReadTable.
type CSVOptions struct {
	Delimiter  rune // default ','
	HasHeader  bool // first record becomes Table.Header
	LazyQuotes bool
	TrimSpace  bool
}

// ReadTable parses every record of r into a Table on the calling goroutine.
// Rows may have differing field counts.
func ReadTable(ctx context.Context, r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1

	t := &Table{}
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}

		if first && opts.HasHeader {
			t.Header = record
		} else {
			t.Rows = append(t.Rows, record)
		}
		first = false
	}
}

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Head returns at most n leading rows.
func (t *Table) Head(n int) [][]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return t.Rows[:n]
}

// Column returns the values of the named column, or nil if absent.
func (t *Table) Column(name string) []string {
	idx := -1
	for i, h := range t.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			out = append(out, row[idx])
		} else {
			out = append(out, "")
		}
	}
	return out
}

// ReadCSV reads a CSV file with a header row into memory.
func ReadCSV(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer func() { _ = f.Close() }()

	t, err := ReadTable(ctx, f, CSVOptions{HasHeader: true, TrimSpace: true})
	if err != nil {
		return nil, eris.Wrapf(err, "csv: read %s", path)
	}
	return t, nil
}
