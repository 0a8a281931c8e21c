package table

import (
	"strings"
	"time"

	"github.com/definite-d/complendar/internal/model"
)

// Record exposes one raw table row as lookup-by-column-name. A missing
// column returns ok=false.
type Record interface {
	Lookup(column string) (value string, ok bool)
}

// MapRecord is the plain map-backed Record used by the scanner.
type MapRecord map[string]string

func (m MapRecord) Lookup(column string) (string, bool) {
	v, ok := m[column]
	return v, ok
}

// Birthdays arrive as MM/DD/YYYY, the export format of the source forms.
const dateLayout = "01/02/2006"

// ParseRow turns one raw record into an Entry, or skips it. A missing or
// empty name, and a missing or unparsable date, both produce a skip rather
// than an error: a few malformed rows must not cost the rest of the
// document its calendar.
func ParseRow(rec Record, headers model.ResolvedHeaders) model.RowResult {
	name, _ := rec.Lookup(headers.NameColumn)
	name = strings.TrimSpace(name)
	if name == "" {
		return model.SkippedRow()
	}

	raw, ok := rec.Lookup(headers.DateColumn)
	if !ok {
		return model.SkippedRow()
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return model.SkippedRow()
	}

	return model.RowOf(model.Entry{Name: name, Date: date})
}
