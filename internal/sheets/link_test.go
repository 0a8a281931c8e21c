package sheets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Document IDs are always 44 characters.
var testID = strings.Repeat("a", 44)

func TestParseLink(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Link
	}{
		{
			name: "bare document link",
			raw:  "https://docs.google.com/spreadsheets/d/" + testID,
			want: Link{ID: testID},
		},
		{
			name: "edit path",
			raw:  "https://docs.google.com/spreadsheets/d/" + testID + "/edit",
			want: Link{ID: testID},
		},
		{
			name: "query parameters are optional but kept",
			raw:  "https://docs.google.com/spreadsheets/d/" + testID + "/edit?gid=123456",
			want: Link{ID: testID, Query: "gid=123456"},
		},
		{
			name: "fragment ignored",
			raw:  "https://docs.google.com/spreadsheets/d/" + testID + "/edit?gid=7#gid=7",
			want: Link{ID: testID, Query: "gid=7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLink(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLink_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"not a link",
		"https://example.com/spreadsheets/d/" + testID,
		"http://docs.google.com/spreadsheets/d/" + testID,
		"https://docs.google.com/spreadsheets/d/" + strings.Repeat("a", 20),
		"https://docs.google.com/documents/d/" + testID,
	}

	for _, raw := range invalid {
		_, err := ParseLink(raw)
		assert.ErrorIs(t, err, ErrInvalidLink, "link %q", raw)
	}
}

func TestExportURL(t *testing.T) {
	plain := Link{ID: testID}
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/"+testID+"/export?format=csv",
		plain.ExportURL(),
	)

	withQuery := Link{ID: testID, Query: "gid=42"}
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/"+testID+"/export?format=csv&gid=42",
		withQuery.ExportURL(),
	)
}
