package table

import (
	"errors"

	"github.com/definite-d/complendar/internal/model"
)

// ErrEmptyDocument is returned when a table has no columns at all.
var ErrEmptyDocument = errors.New("empty document: there is no data to parse")

// Probes are the human-readable phrases each column title is scored
// against when guessing which column holds which role. Source
// spreadsheets are user-authored forms with free-text titles ("What's
// your name?", "When were you born?"), so columns are matched by
// similarity instead of by a fixed schema.
type Probes struct {
	Name     string
	Birthday string
}

// DefaultProbes returns the stock probe phrases.
func DefaultProbes() Probes {
	return Probes{Name: "your name", Birthday: "your birthday"}
}

// ResolveHeaders picks, for each probe, the column whose title is most
// similar to it. Ties keep the first-encountered column, so resolution is
// deterministic for a given column order. The two picks may coincide on
// degenerate input; that is left for the row parser to sort out.
func ResolveHeaders(columns []string, probes Probes) (model.ResolvedHeaders, error) {
	if len(columns) == 0 {
		return model.ResolvedHeaders{}, ErrEmptyDocument
	}
	return model.ResolvedHeaders{
		NameColumn: mostSimilar(columns, probes.Name),
		DateColumn: mostSimilar(columns, probes.Birthday),
	}, nil
}

func mostSimilar(columns []string, probe string) string {
	best := columns[0]
	bestScore := -1.0
	for _, col := range columns {
		score, err := Similarity(probe, col)
		if err != nil {
			// Both strings empty; treat as no overlap.
			score = 0
		}
		if score > bestScore {
			best = col
			bestScore = score
		}
	}
	return best
}
