// Package mockserver serves the remote table API from a static fixture.
//
// It backs the "serve" command for local development and the HTTP round-trip
// tests of the adapter.
package mockserver

import (
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server handles the listing and row-fetch endpoints.
type Server struct {
	fixture *Fixture
	apiKey  string
	logger  *slog.Logger

	listCalls  atomic.Int64
	fetchCalls atomic.Int64
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey requires bearer authentication with key.
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server for fixture.
func New(fixture *Fixture, opts ...Option) *Server {
	s := &Server{
		fixture: fixture,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats counts the calls served so far.
type Stats struct {
	ListCalls  int64 `json:"list_calls"`
	FetchCalls int64 `json:"fetch_calls"`
}

func (s *Server) Stats() Stats {
	return Stats{
		ListCalls:  s.listCalls.Load(),
		FetchCalls: s.fetchCalls.Load(),
	}
}

// Handler returns the chi router for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(s.apiKey))
		r.Route("/fdw/connections/{cid}/tables/{table}/rows", func(r chi.Router) {
			r.Post("/", s.listRows)
			r.Post("/{rowID}", s.getRow)
		})
	})

	return r
}

type listRowsResponse struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type getRowRequest struct {
	CID       string   `json:"cid"`
	TableName string   `json:"tableName"`
	RowID     string   `json:"rowId"`
	Columns   []string `json:"columns"`
}

type getRowResponse struct {
	Columns []string `json:"columns"`
	Values  []any    `json:"values"`
}

func (s *Server) listRows(w http.ResponseWriter, r *http.Request) {
	s.listCalls.Add(1)

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	table, ok := s.table(w, r)
	if !ok {
		return
	}

	// Only identifiers are listed; full rows come from the fetch endpoint.
	resp := listRowsResponse{Columns: table.Columns[:min(1, len(table.Columns))], Rows: make([][]any, 0, len(table.Rows))}
	for _, row := range table.Rows {
		resp.Rows = append(resp.Rows, row[:min(1, len(row))])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getRow(w http.ResponseWriter, r *http.Request) {
	s.fetchCalls.Add(1)

	var req getRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	table, ok := s.table(w, r)
	if !ok {
		return
	}

	row, found := table.find(pathParam(r, "rowID"))
	if !found {
		writeError(w, http.StatusNotFound, "row not found")
		return
	}

	wanted := req.Columns
	if len(wanted) == 0 {
		wanted = table.Columns
	}
	resp := getRowResponse{Columns: []string{}, Values: []any{}}
	for _, name := range wanted {
		for i, col := range table.Columns {
			if col != name {
				continue
			}
			var v any
			if i < len(row) {
				v = row[i]
			}
			resp.Columns = append(resp.Columns, col)
			resp.Values = append(resp.Values, v)
			break
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) table(w http.ResponseWriter, r *http.Request) (Table, bool) {
	cid := pathParam(r, "cid")
	if s.fixture.ConnectionID != "" && cid != s.fixture.ConnectionID {
		writeError(w, http.StatusNotFound, "connection not found")
		return Table{}, false
	}
	name := pathParam(r, "table")
	table, ok := s.fixture.Tables[name]
	if !ok {
		writeError(w, http.StatusNotFound, "table not found")
		return Table{}, false
	}
	return table, true
}

// pathParam returns a route parameter with any percent-encoding removed.
// chi matches on the raw path when the request carries escaped separators.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
