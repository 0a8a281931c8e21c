package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appLog "github.com/definite-d/complendar/internal/log"
)

// ErrAccessDenied is returned when the document exists but is not
// publicly readable.
var ErrAccessDenied = errors.New("access denied: perhaps the spreadsheet is not publicly shared?")

// Fetcher downloads the CSV export of a spreadsheet. It does not retry
// and does not cache; each conversion fetches the document fresh.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher with a bounded request timeout. Redirects
// are followed; the export endpoint redirects before serving the CSV.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch retrieves the raw CSV bytes for the given link, or fails with a
// retrievability error. Access failures (401/403) are reported as
// ErrAccessDenied so the caller can show a useful message.
func (f *Fetcher) Fetch(ctx context.Context, link Link) ([]byte, error) {
	url := link.ExportURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	appLog.Info("fetching spreadsheet", "id", link.ID)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch spreadsheet: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read spreadsheet body: %w", err)
		}
		appLog.Info("spreadsheet fetched", "id", link.ID, "bytes", len(body))
		return body, nil

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrAccessDenied

	default:
		return nil, fmt.Errorf("fetch spreadsheet: %s", resp.Status)
	}
}
