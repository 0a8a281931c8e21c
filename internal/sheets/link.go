package sheets

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidLink is returned when a source locator does not look like a
// shareable Google Sheets document link.
var ErrInvalidLink = errors.New("invalid spreadsheet link")

// Shareable document links carry a 44-character document ID after /d/.
// Query parameters (e.g. a gid selecting a tab) are optional; when present
// they are forwarded to the export endpoint.
var linkPattern = regexp.MustCompile(
	`^https://docs\.google\.com/spreadsheets/d/(?P<id>[^/?#]{44})(?:/[^?#]*)?(?:\?(?P<query>[^#]*))?(?:#.*)?$`,
)

// Link is a validated spreadsheet locator.
type Link struct {
	ID    string
	Query string
}

// ParseLink validates a raw locator and extracts its document ID and
// optional query parameters. Validation happens before any fetch.
func ParseLink(raw string) (Link, error) {
	m := linkPattern.FindStringSubmatch(raw)
	if m == nil {
		return Link{}, fmt.Errorf("%w: %q", ErrInvalidLink, raw)
	}
	return Link{
		ID:    m[linkPattern.SubexpIndex("id")],
		Query: m[linkPattern.SubexpIndex("query")],
	}, nil
}

// ExportURL returns the CSV export endpoint for the document.
func (l Link) ExportURL() string {
	u := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", l.ID)
	if l.Query != "" {
		u += "&" + l.Query
	}
	return u
}
