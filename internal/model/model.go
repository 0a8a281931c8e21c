package model

import "time"

// Entry is one parsed (name, birthday) pair extracted from a table row.
// Name is never empty and Date is always a valid calendar date; the row
// parser guarantees both before constructing an Entry. The year of Date
// fixes the first occurrence of the generated event but does not bound
// its recurrence.
type Entry struct {
	Name string
	Date time.Time // date only; time-of-day and timezone carry no meaning
}

// ResolvedHeaders names the source columns interpreted as the name-bearing
// and date-bearing columns. Computed once per document and surfaced to the
// caller so a wrong guess can be caught by a human.
type ResolvedHeaders struct {
	NameColumn string
	DateColumn string
}

// Degenerate reports whether both roles resolved to the same column.
func (h ResolvedHeaders) Degenerate() bool {
	return h.NameColumn == h.DateColumn
}

// RowResult is the outcome of parsing one data row: either an Entry or an
// explicit skip. Skipped rows are policy, not errors; they never abort the
// surrounding conversion.
type RowResult struct {
	Entry Entry
	OK    bool
}

// RowOf wraps a successfully parsed Entry.
func RowOf(e Entry) RowResult {
	return RowResult{Entry: e, OK: true}
}

// SkippedRow marks a row as unusable (missing name, bad date, short record).
func SkippedRow() RowResult {
	return RowResult{}
}
