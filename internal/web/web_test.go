package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/definite-d/complendar/internal/config"
	"github.com/definite-d/complendar/internal/convert"
	"github.com/definite-d/complendar/internal/sheets"
)

type stubFetcher struct {
	body []byte
	err  error
}

func (s stubFetcher) Fetch(_ context.Context, _ sheets.Link) ([]byte, error) {
	return s.body, s.err
}

var testLink = "https://docs.google.com/spreadsheets/d/" + strings.Repeat("a", 44) + "/edit"

const formCSV = `Timestamp,What's your name?,When's your birthday?
1/1/2024 10:00:00,Ana,07/04/1990
1/1/2024 10:05:00,Chris,12/01/1988
`

func newTestServer(t *testing.T, fetcher convert.DocumentFetcher, mutate ...func(*config.Config)) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.TempDir = t.TempDir()
	for _, m := range mutate {
		m(cfg)
	}

	conv := convert.New(fetcher, convert.Options{})
	return NewServer(cfg, conv)
}

func postConvert(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, stubFetcher{body: []byte(formCSV)})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestConvertEndpoint(t *testing.T) {
	s := newTestServer(t, stubFetcher{body: []byte(formCSV)})

	rec := postConvert(t, s.Handler(), `{"link":"`+testLink+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp convertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, strings.HasPrefix(resp.File, "/download/complendar_"))
	assert.Equal(t, "What's your name?", resp.GuessedHeaders.Name)
	assert.Equal(t, "When's your birthday?", resp.GuessedHeaders.Birthday)
	assert.Equal(t, 2, resp.Events)

	// The file it points at is immediately downloadable.
	req := httptest.NewRequest(http.MethodGet, resp.File, nil)
	dl := httptest.NewRecorder()
	s.Handler().ServeHTTP(dl, req)

	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", dl.Header().Get("Content-Type"))
	assert.Contains(t, dl.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, dl.Body.String(), "Ana's Birthday")
}

func TestConvertEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fetcher    convert.DocumentFetcher
		body       string
		wantStatus int
	}{
		{
			name:       "invalid link",
			fetcher:    stubFetcher{body: []byte(formCSV)},
			body:       `{"link":"https://example.com/whatever"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "access denied",
			fetcher:    stubFetcher{err: sheets.ErrAccessDenied},
			body:       `{"link":"` + testLink + `"}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "empty document",
			fetcher:    stubFetcher{body: nil},
			body:       `{"link":"` + testLink + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed JSON",
			fetcher:    stubFetcher{body: []byte(formCSV)},
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.fetcher)
			rec := postConvert(t, s.Handler(), tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestConvertEndpoint_GETRejected(t *testing.T) {
	s := newTestServer(t, stubFetcher{body: []byte(formCSV)})

	req := httptest.NewRequest(http.MethodGet, "/api/convert", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDownload_NameValidation(t *testing.T) {
	s := newTestServer(t, stubFetcher{body: []byte(formCSV)})

	for _, path := range []string{
		"/download/notours.ics",
		"/download/complendar_deadbeef.txt",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, "path %s", path)
	}
}

func TestValidDownloadName(t *testing.T) {
	assert.True(t, validDownloadName("complendar_deadbeef.ics"))

	for _, name := range []string{
		"",
		"notours.ics",
		"complendar_deadbeef.txt",
		"complendar_../../etc/passwd.ics",
		`complendar_..\..\etc.ics`,
		"complendar_a/b.ics",
	} {
		assert.False(t, validDownloadName(name), "name %q", name)
	}
}

func TestBasicAuth(t *testing.T) {
	withAuth := func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}
	}
	s := newTestServer(t, stubFetcher{body: []byte(formCSV)}, withAuth)
	h := s.Handler()

	// /health stays open.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Everything else requires credentials.
	rec = postConvert(t, h, `{"link":"`+testLink+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/convert",
		strings.NewReader(`{"link":"`+testLink+`"}`))
	req.SetBasicAuth("u", "p")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
