// Package fdw implements the scan lifecycle of a foreign table backed by the
// remote row API.
//
// A Session is driven by the host through Init, BeginScan, IterScan (once per
// output row) and EndScan. BeginScan buffers every row identifier of the
// table; each IterScan then fetches exactly one row, in listing order, and
// coerces its values into typed cells.
//
// A Session carries mutable scan state and must not be used by two scans at
// once. Hosts that scan concurrently create one Session per scan.
package fdw

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bisegni/rowfdw/pkg/cell"
	"github.com/bisegni/rowfdw/pkg/options"
	"github.com/bisegni/rowfdw/pkg/remote"
)

// RowSource is the remote side of a scan. *remote.Client implements it.
type RowSource interface {
	ListIdentifiers(ctx context.Context, p options.ConnectionParams) ([]string, error)
	FetchRow(ctx context.Context, p options.ConnectionParams, rowID string, columns []string) (*remote.RowResponse, error)
}

// Column is a target column requested by the host.
type Column struct {
	Name string
	Type cell.Type
}

// Row holds one cell per requested column, in request order.
type Row struct {
	ID    string
	Cells []cell.Cell
}

// State is the lifecycle position of a Session.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateScanning
	StateExhausted
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateScanning:
		return "scanning"
	case StateExhausted:
		return "exhausted"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the adapter's state for one scan at a time.
type Session struct {
	id       string
	source   RowSource
	logger   *slog.Logger
	reporter Reporter

	params  options.ConnectionParams
	pending []string
	cursor  int
	state   State
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithReporter sets where host-visible notices go.
func WithReporter(r Reporter) Option {
	return func(s *Session) {
		s.reporter = r
	}
}

// New creates an uninitialized Session reading from source.
func New(source RowSource, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reporter == nil {
		s.reporter = NewSlogReporter(s.logger)
	}
	s.logger = s.logger.With("session", s.id[:8])
	return s
}

// Init resolves the server-scope options over the compiled defaults and
// resets the scan buffer.
func (s *Session) Init(serverOpts options.Options) error {
	s.params = options.Resolve(serverOpts, options.Defaults())
	s.pending = nil
	s.cursor = 0
	s.state = StateInitialized
	s.logger.Debug("session initialized", "api_url", s.params.BaseURL, "connection_id", s.params.ConnectionID)
	return nil
}

// BeginScan overlays the table-scope options and buffers the identifiers of
// every row. Remote failures are returned as-is and leave the buffer empty.
func (s *Session) BeginScan(ctx context.Context, tableOpts options.Options) error {
	if s.state == StateUninitialized {
		return fmt.Errorf("begin scan: %w", ErrNotInitialized)
	}

	s.params = options.Resolve(tableOpts, s.params)
	s.pending = nil
	s.cursor = 0

	ids, err := s.source.ListIdentifiers(ctx, s.params)
	if err != nil {
		s.state = StateInitialized
		return err
	}

	s.pending = ids
	s.state = StateScanning
	if len(ids) == 0 {
		s.state = StateExhausted
	}
	s.reporter.Info(fmt.Sprintf("We got response array length: %d", len(ids)))
	return nil
}

// IterScan produces the next row. It returns ok == false once every buffered
// identifier has been consumed, without calling the remote, until the next
// BeginScan. A failed fetch returns the error and does not advance.
func (s *Session) IterScan(ctx context.Context, columns []Column) (*Row, bool, error) {
	if s.cursor >= len(s.pending) {
		return nil, false, nil
	}

	rowID := s.pending[s.cursor]
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}

	resp, err := s.source.FetchRow(ctx, s.params, rowID, names)
	if err != nil {
		return nil, false, err
	}

	row := &Row{ID: rowID, Cells: make([]cell.Cell, len(columns))}
	for i, col := range columns {
		v, found := resp.Lookup(col.Name)
		if !found {
			continue
		}
		if c, ok := cell.Coerce(col.Type, v); ok {
			row.Cells[i] = c
		} else if !v.IsNull() {
			s.reporter.Warning(fmt.Sprintf("row %s: %s value of column '%s' does not fit %s, read as null", rowID, v.Kind(), col.Name, col.Type))
		}
	}

	s.cursor++
	if s.cursor == len(s.pending) {
		s.state = StateExhausted
	}
	return row, true, nil
}

// ReScan always fails: a scan cannot be rewound. End it and begin a new one.
func (s *Session) ReScan() error {
	return &UnsupportedOperationError{Op: "re_scan"}
}

// EndScan releases the buffered identifiers. Connection parameters are kept
// for the next scan. Calling it again is harmless.
func (s *Session) EndScan() error {
	s.pending = nil
	s.cursor = 0
	if s.state != StateUninitialized {
		s.state = StateEnded
	}
	return nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return s.state }

// Cursor is the index of the next identifier to fetch.
func (s *Session) Cursor() int { return s.cursor }

// Pending returns a copy of the buffered identifiers.
func (s *Session) Pending() []string {
	out := make([]string, len(s.pending))
	copy(out, s.pending)
	return out
}

// Remaining is the number of rows left in the current scan.
func (s *Session) Remaining() int { return len(s.pending) - s.cursor }

func (s *Session) Params() options.ConnectionParams { return s.params }
