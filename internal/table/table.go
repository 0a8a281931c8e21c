package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	appLog "github.com/definite-d/complendar/internal/log"
	"github.com/definite-d/complendar/internal/model"
)

// Scanner reads a delimited table lazily, one row at a time. The first
// line is consumed as column headers when the Scanner is constructed and
// the header roles are resolved once; after that each Scan advances over
// exactly one data row. The underlying stream is consumed forward-only
// and exactly once; a Scanner cannot be restarted.
type Scanner struct {
	reader  *csv.Reader
	columns []string
	headers model.ResolvedHeaders
	row     model.RowResult
}

// NewScanner reads and resolves the header row of r. It fails with
// ErrEmptyDocument when the stream holds no columns.
func NewScanner(r io.Reader, probes Probes) (*Scanner, error) {
	cr := csv.NewReader(r)
	// Real-world form exports are sloppy: tolerate ragged rows and loose
	// quoting, and fix up field counts per row instead.
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	columns, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}

	for i := range columns {
		columns[i] = strings.TrimSpace(columns[i])
	}
	columns[0] = strings.TrimPrefix(columns[0], "\ufeff")

	headers, err := ResolveHeaders(columns, probes)
	if err != nil {
		return nil, err
	}
	if headers.Degenerate() {
		appLog.Warn("name and birthday resolved to the same column",
			"column", headers.NameColumn)
	}

	return &Scanner{
		reader:  cr,
		columns: columns,
		headers: headers,
	}, nil
}

// Headers returns the resolved (name, date) column pair. Callers must
// surface this to whoever requested the conversion; the guess can be
// wrong and only a human will notice.
func (s *Scanner) Headers() model.ResolvedHeaders {
	return s.headers
}

// Columns returns the trimmed header row.
func (s *Scanner) Columns() []string {
	return s.columns
}

// Scan advances to the next data row, returning false at end of input.
// Row order is preserved; unusable rows surface as skipped results rather
// than stopping the scan.
func (s *Scanner) Scan() bool {
	raw, err := s.reader.Read()
	if errors.Is(err, io.EOF) {
		return false
	}
	if err != nil {
		appLog.Debug("unreadable row skipped", "reason", err)
		s.row = model.SkippedRow()
		return true
	}

	s.row = ParseRow(s.record(raw), s.headers)
	return true
}

// Row returns the result of the most recent Scan.
func (s *Scanner) Row() model.RowResult {
	return s.row
}

// record maps a raw row onto the header columns, padding short rows with
// empty fields and dropping extras.
func (s *Scanner) record(raw []string) Record {
	rec := make(MapRecord, len(s.columns))
	for i, col := range s.columns {
		if i < len(raw) {
			rec[col] = raw[i]
		} else {
			rec[col] = ""
		}
	}
	return rec
}
