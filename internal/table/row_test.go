package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/definite-d/complendar/internal/model"
)

func TestParseRow(t *testing.T) {
	headers := model.ResolvedHeaders{NameColumn: "name", DateColumn: "birthday"}

	tests := []struct {
		name string
		rec  MapRecord
		want model.RowResult
	}{
		{
			name: "well formed",
			rec:  MapRecord{"name": "Ana", "birthday": "07/04/1990"},
			want: model.RowOf(model.Entry{Name: "Ana", Date: date(1990, 7, 4)}),
		},
		{
			name: "name is trimmed",
			rec:  MapRecord{"name": "  Ana  ", "birthday": "07/04/1990"},
			want: model.RowOf(model.Entry{Name: "Ana", Date: date(1990, 7, 4)}),
		},
		{
			name: "missing name column",
			rec:  MapRecord{"birthday": "07/04/1990"},
			want: model.SkippedRow(),
		},
		{
			name: "blank name",
			rec:  MapRecord{"name": "   ", "birthday": "07/04/1990"},
			want: model.SkippedRow(),
		},
		{
			name: "missing date column",
			rec:  MapRecord{"name": "Ana"},
			want: model.SkippedRow(),
		},
		{
			name: "invalid calendar date",
			rec:  MapRecord{"name": "Ana", "birthday": "13/40/2020"},
			want: model.SkippedRow(),
		},
		{
			name: "wrong date format",
			rec:  MapRecord{"name": "Ana", "birthday": "1990-07-04"},
			want: model.SkippedRow(),
		},
		{
			name: "two digit year",
			rec:  MapRecord{"name": "Ana", "birthday": "07/04/90"},
			want: model.SkippedRow(),
		},
		{
			name: "empty date",
			rec:  MapRecord{"name": "Ana", "birthday": ""},
			want: model.SkippedRow(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRow(tt.rec, headers)
			require.Equal(t, tt.want.OK, got.OK)
			if tt.want.OK {
				assert.Equal(t, tt.want.Entry.Name, got.Entry.Name)
				assert.True(t, tt.want.Entry.Date.Equal(got.Entry.Date))
			}
		})
	}
}

func TestParseRow_DegenerateHeaders(t *testing.T) {
	// Name and date resolved to the same column. A non-date value fails
	// the date parse and skips; a date-shaped value survives with the raw
	// date text as its name. The header feedback is what makes a human
	// notice either way.
	headers := model.ResolvedHeaders{NameColumn: "col", DateColumn: "col"}

	assert.False(t, ParseRow(MapRecord{"col": "Ana"}, headers).OK)

	got := ParseRow(MapRecord{"col": "07/04/1990"}, headers)
	require.True(t, got.OK)
	assert.Equal(t, "07/04/1990", got.Entry.Name)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
