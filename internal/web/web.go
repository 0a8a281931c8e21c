package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/definite-d/complendar/internal/config"
	"github.com/definite-d/complendar/internal/convert"
	appLog "github.com/definite-d/complendar/internal/log"
	"github.com/definite-d/complendar/internal/sheets"
	"github.com/definite-d/complendar/internal/table"
)

// Server exposes the conversion pipeline over HTTP: a JSON convert API,
// a download endpoint for finished calendars, and a small static UI.
type Server struct {
	cfg  *config.Config
	conv *convert.Converter
	mux  *http.ServeMux
}

//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server around an already-configured
// Converter.
func NewServer(cfg *config.Config, conv *convert.Converter) *Server {
	s := &Server{
		cfg:  cfg,
		conv: conv,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Complendar", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/convert", s.handleConvert)
	s.mux.HandleFunc("/download/", s.handleDownload)
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// convertRequest is the JSON body of POST /api/convert.
type convertRequest struct {
	Link string `json:"link"`
}

// guessedHeaders echoes the resolved columns back to the user so a wrong
// guess is visible before the calendar is trusted.
type guessedHeaders struct {
	Name     string `json:"name"`
	Birthday string `json:"birthday"`
}

// convertResponse is the JSON response of POST /api/convert.
type convertResponse struct {
	File           string         `json:"file"`
	GuessedHeaders guessedHeaders `json:"guessed_headers"`
	Events         int            `json:"events"`
	Skipped        int            `json:"skipped"`
}

// handleConvert runs one conversion and stores the result under the temp
// dir with a per-request random name, returning a /download/ path.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	result, err := s.conv.Convert(ctx, req.Link)
	if err != nil {
		appLog.Error("conversion failed", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	filename := convert.FileName()
	if _, err := convert.WriteFile(s.cfg.TempDir, filename, result.ICS); err != nil {
		appLog.Error("calendar write failed", err)
		writeError(w, http.StatusInternalServerError, "failed to store calendar")
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		File: "/download/" + filename,
		GuessedHeaders: guessedHeaders{
			Name:     result.Headers.NameColumn,
			Birthday: result.Headers.DateColumn,
		},
		Events:  result.Events,
		Skipped: result.Skipped,
	})
}

// statusFor maps conversion errors onto HTTP statuses. Everything is a
// visible failure response; nothing reaches the client as a crash.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sheets.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, sheets.ErrInvalidLink), errors.Is(err, table.ErrEmptyDocument):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// handleDownload serves a previously converted calendar from the temp
// dir. Names are validated against the generator's shape so the endpoint
// cannot be used to read arbitrary files.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/download/")
	if !validDownloadName(name) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	http.ServeFile(w, r, path.Join(s.cfg.TempDir, name))
}

func validDownloadName(name string) bool {
	if !strings.HasPrefix(name, "complendar_") || !strings.HasSuffix(name, ".ics") {
		return false
	}
	return !strings.ContainsAny(name, "/\\") && !strings.Contains(name, "..")
}

// staticFileServer serves the embedded UI for everything that is not an
// API route.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		// API paths never fall through to the static UI.
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to encode JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
