package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"

	ical "github.com/arran4/golang-ical"

	"github.com/definite-d/complendar/internal/ics"
	appLog "github.com/definite-d/complendar/internal/log"
	"github.com/definite-d/complendar/internal/model"
	"github.com/definite-d/complendar/internal/sheets"
	"github.com/definite-d/complendar/internal/table"
)

// DocumentFetcher retrieves the raw bytes behind a validated link.
type DocumentFetcher interface {
	Fetch(ctx context.Context, link sheets.Link) ([]byte, error)
}

// Options carries the per-converter knobs. Probes are explicit
// configuration rather than package-level constants so callers can adapt
// header guessing to their form's language.
type Options struct {
	Probes table.Probes
}

// Converter runs the whole pipeline: fetch, scan, synthesize, assemble.
// Converters hold no per-conversion state and are safe for concurrent use.
type Converter struct {
	fetcher DocumentFetcher
	opts    Options
}

func New(fetcher DocumentFetcher, opts Options) *Converter {
	if opts.Probes == (table.Probes{}) {
		opts.Probes = table.DefaultProbes()
	}
	return &Converter{fetcher: fetcher, opts: opts}
}

// Result is one finished conversion: the serialized calendar, the header
// guess to surface to the user, and row accounting.
type Result struct {
	ICS     string
	Headers model.ResolvedHeaders
	Events  int
	Skipped int
}

// Convert validates and fetches rawLink, then converts its CSV payload.
func (c *Converter) Convert(ctx context.Context, rawLink string) (*Result, error) {
	link, err := sheets.ParseLink(rawLink)
	if err != nil {
		return nil, err
	}

	body, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}

	return c.ConvertReader(bytes.NewReader(body))
}

// ConvertReader converts an already-fetched CSV stream. The stream is
// consumed once, forward-only; rows never materialize all at once.
func (c *Converter) ConvertReader(r io.Reader) (*Result, error) {
	scanner, err := table.NewScanner(r, c.opts.Probes)
	if err != nil {
		return nil, err
	}
	headers := scanner.Headers()

	var events []*ical.VEvent
	skipped := 0
	for scanner.Scan() {
		row := scanner.Row()
		if !row.OK {
			skipped++
			continue
		}
		events = append(events, ics.Synthesize(row.Entry))
	}

	cal := ics.Assemble(events)

	appLog.Info("conversion finished",
		"name_column", headers.NameColumn,
		"birthday_column", headers.DateColumn,
		"events", len(events),
		"skipped", skipped,
	)

	return &Result{
		ICS:     cal.Serialize(),
		Headers: headers,
		Events:  len(events),
		Skipped: skipped,
	}, nil
}

// FileName returns a collision-free output name for one web conversion.
func FileName() string {
	return fmt.Sprintf("complendar_%s.ics", randomHex(16))
}
