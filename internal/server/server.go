package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"openshelf/internal/app"
	"openshelf/internal/ratelimit"
	"openshelf/internal/store"
	"openshelf/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                    *app.App
	RedisAddr              string
	RedisPassword          string
	LendRateLimitPerMinute int
}

// Server exposes the catalog and lending endpoints.
type Server struct {
	app         *app.App
	mux         *http.ServeMux
	lendLimiter *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured. A positive lend rate
// limit requires a reachable Redis.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	s := &Server{app: cfg.App, mux: http.NewServeMux()}
	if cfg.LendRateLimitPerMinute > 0 {
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "openshelf:lend",
			cfg.LendRateLimitPerMinute, time.Minute)
		if err != nil {
			return nil, err
		}
		s.lendLimiter = limiter
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler wrapped in the middleware chain.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("openshelf", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/books", s.handleBooks)
	s.mux.HandleFunc("/books/search", s.handleSearch)
	s.mux.HandleFunc("/books/", s.handleBookSubtree)

	s.mux.HandleFunc("/patrons", s.handlePatrons)
	s.mux.HandleFunc("/employees", s.handleEmployees)

	s.mux.HandleFunc("/loans", s.handleLoans)
	s.mux.HandleFunc("/loans/sweep", s.handleSweep)
	s.mux.HandleFunc("/returns", s.handleReturns)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerBookRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	ISBN    string `json:"isbn"`
	Pages   int    `json:"pages"`
	Digital *struct {
		Format     string  `json:"format"`
		SizeMB     float64 `json:"sizeMB"`
		StorageKey string  `json:"storageKey"`
	} `json:"digital,omitempty"`
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.app.Catalog())
	case http.MethodPost:
		var req registerBookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var view app.BookView
		if req.Digital != nil {
			view = s.app.RegisterDigitalBook(req.Title, req.Author, req.ISBN, req.Pages,
				req.Digital.Format, req.Digital.SizeMB, req.Digital.StorageKey)
		} else {
			view = s.app.RegisterBook(req.Title, req.Author, req.ISBN, req.Pages)
		}
		writeJSON(w, http.StatusCreated, view)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "title query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, s.app.Search(title))
}

// handleBookSubtree serves /books/{isbn}/download.
func (s *Server) handleBookSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/books/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "download" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	url, err := s.app.DownloadURL(r.Context(), parts[0])
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	case errors.Is(err, app.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "book not found")
	case errors.Is(err, app.ErrNotDigital):
		writeError(w, http.StatusConflict, "book has no digital edition")
	case errors.Is(err, app.ErrQuotaExhausted):
		writeError(w, http.StatusConflict, "download quota exhausted")
	case errors.Is(err, app.ErrDownloadsUnavailable):
		writeError(w, http.StatusServiceUnavailable, "downloads unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "download failed")
	}
}

type registerPatronRequest struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

func (s *Server) handlePatrons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req registerPatronRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "name and id are required")
		return
	}
	s.app.RegisterPatron(req.Name, req.ID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

type registerEmployeeRequest struct {
	Name     string  `json:"name"`
	ID       string  `json:"id"`
	Salary   float64 `json:"salary"`
	Position string  `json:"position"`
}

func (s *Server) handleEmployees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req registerEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "name and id are required")
		return
	}
	s.app.RegisterEmployee(req.Name, req.ID, req.Salary, req.Position)
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

type lendRequest struct {
	ISBN       string `json:"isbn"`
	PatronID   string `json:"patronId"`
	EmployeeID string `json:"employeeId"`
}

func (s *Server) handleLoans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		recs, err := s.app.Loans(store.Filter{
			PatronID: q.Get("patronId"),
			ISBN:     q.Get("isbn"),
			Status:   q.Get("status"),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list loans failed")
			return
		}
		writeJSON(w, http.StatusOK, recs)
	case http.MethodPost:
		if s.lendLimiter != nil && !s.lendLimiter.Allow(util.ClientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		var req lendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		rec, ok := s.app.Lend(r.Context(), req.ISBN, req.PatronID, req.EmployeeID)
		if !ok {
			// The domain reports failure as a bare boolean; the cause is
			// deliberately not disclosed.
			writeError(w, http.StatusConflict, "loan refused")
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type returnRequest struct {
	ISBN       string `json:"isbn"`
	EmployeeID string `json:"employeeId"`
}

func (s *Server) handleReturns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req returnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, ok := s.app.Return(r.Context(), req.ISBN, req.EmployeeID)
	if !ok {
		writeError(w, http.StatusConflict, "return refused")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	n := s.app.SweepOverdue(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"overdue": n})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}
