package fdw

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/bisegni/rowfdw/pkg/cell"
	"github.com/bisegni/rowfdw/pkg/options"
	"github.com/bisegni/rowfdw/pkg/remote"
	"github.com/bisegni/rowfdw/pkg/value"
)

// fakeSource serves rows from memory and counts calls.
type fakeSource struct {
	ids      []string
	rows     map[string]*remote.RowResponse
	listErr  error
	fetchErr error

	listCalls  int
	fetchCalls int
	lastParams options.ConnectionParams
	lastCols   []string
}

func (f *fakeSource) ListIdentifiers(ctx context.Context, p options.ConnectionParams) ([]string, error) {
	f.listCalls++
	f.lastParams = p
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.ids...), nil
}

func (f *fakeSource) FetchRow(ctx context.Context, p options.ConnectionParams, rowID string, columns []string) (*remote.RowResponse, error) {
	f.fetchCalls++
	f.lastParams = p
	f.lastCols = columns
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if r, ok := f.rows[rowID]; ok {
		return r, nil
	}
	return &remote.RowResponse{}, nil
}

type recordingReporter struct {
	infos    []string
	warnings []string
}

func (r *recordingReporter) Info(msg string)    { r.infos = append(r.infos, msg) }
func (r *recordingReporter) Warning(msg string) { r.warnings = append(r.warnings, msg) }

func rowResp(pairs ...any) *remote.RowResponse {
	r := &remote.RowResponse{}
	for i := 0; i < len(pairs); i += 2 {
		r.Columns = append(r.Columns, pairs[i].(string))
		r.Values = append(r.Values, value.MustParse(pairs[i+1].(string)))
	}
	return r
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type SessionSuite struct {
	suite.Suite
	source   *fakeSource
	reporter *recordingReporter
	session  *Session
	columns  []Column
	ctx      context.Context
}

func (s *SessionSuite) SetupTest() {
	s.ctx = context.Background()
	s.source = &fakeSource{
		ids: []string{"a", "b", "7"},
		rows: map[string]*remote.RowResponse{
			"a": rowResp("id", `"a"`, "age", `30`),
			"b": rowResp("age", `"41"`, "id", `"b"`),
			"7": rowResp("id", `7`, "age", `2.5`),
		},
	}
	s.reporter = &recordingReporter{}
	s.session = New(s.source, WithLogger(quietLogger), WithReporter(s.reporter))
	s.columns = []Column{
		{Name: "id", Type: cell.TypeString},
		{Name: "age", Type: cell.TypeI64},
	}
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) TestEndToEnd() {
	s.Require().NoError(s.session.Init(options.Options{options.KeyAPIURL: "http://srv"}))
	s.Require().NoError(s.session.BeginScan(s.ctx, options.Options{options.KeyObject: "people"}))
	s.Equal(1, s.source.listCalls)
	s.Equal([]string{"We got response array length: 3"}, s.reporter.infos)
	s.Equal(StateScanning, s.session.State())

	var rows []*Row
	for i := 0; i < 3; i++ {
		row, ok, err := s.session.IterScan(s.ctx, s.columns)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal(i+1, s.session.Cursor())
		rows = append(rows, row)
	}
	s.Equal(3, s.source.fetchCalls)
	s.Equal([]string{"id", "age"}, s.source.lastCols)
	s.Equal(StateExhausted, s.session.State())

	s.Equal([]cell.Cell{cell.String("a"), cell.I64(30)}, rows[0].Cells)
	s.Equal([]cell.Cell{cell.String("b"), cell.I64(41)}, rows[1].Cells)
	// id 7 is a number and age is fractional: both columns read as null
	s.Equal([]cell.Cell{{}, {}}, rows[2].Cells)
	s.Equal("7", rows[2].ID)
	s.Equal([]string{
		"row 7: number value of column 'id' does not fit text, read as null",
		"row 7: number value of column 'age' does not fit int8, read as null",
	}, s.reporter.warnings)

	row, ok, err := s.session.IterScan(s.ctx, s.columns)
	s.NoError(err)
	s.False(ok)
	s.Nil(row)
	s.Equal(3, s.source.fetchCalls)
	s.Equal(1, s.source.listCalls)

	s.NoError(s.session.EndScan())
	s.Equal(StateEnded, s.session.State())
	s.Empty(s.session.Pending())
	s.Equal("http://srv", s.session.Params().BaseURL)
}

func (s *SessionSuite) TestExhaustedStaysExhausted() {
	s.source.ids = []string{"a"}
	s.Require().NoError(s.session.Init(nil))
	s.Require().NoError(s.session.BeginScan(s.ctx, nil))

	_, ok, err := s.session.IterScan(s.ctx, s.columns)
	s.Require().NoError(err)
	s.True(ok)

	for i := 0; i < 5; i++ {
		_, ok, err := s.session.IterScan(s.ctx, s.columns)
		s.NoError(err)
		s.False(ok)
		s.Equal(1, s.session.Cursor())
	}
	s.Equal(1, s.source.fetchCalls)

	s.Require().NoError(s.session.BeginScan(s.ctx, nil))
	s.Equal(0, s.session.Cursor())
	_, ok, err = s.session.IterScan(s.ctx, s.columns)
	s.NoError(err)
	s.True(ok)
}

func (s *SessionSuite) TestEmptyListing() {
	s.source.ids = nil
	s.Require().NoError(s.session.Init(nil))
	s.Require().NoError(s.session.BeginScan(s.ctx, nil))
	s.Equal(StateExhausted, s.session.State())
	s.Equal([]string{"We got response array length: 0"}, s.reporter.infos)

	_, ok, err := s.session.IterScan(s.ctx, s.columns)
	s.NoError(err)
	s.False(ok)
	s.Equal(0, s.source.fetchCalls)
}

func (s *SessionSuite) TestMissingColumnIsNull() {
	s.source.ids = []string{"a"}
	s.Require().NoError(s.session.Init(nil))
	s.Require().NoError(s.session.BeginScan(s.ctx, nil))

	cols := []Column{
		{Name: "nope", Type: cell.TypeString},
		{Name: "age", Type: cell.TypeI32},
		{Name: "id", Type: cell.TypeString},
	}
	row, ok, err := s.session.IterScan(s.ctx, cols)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal([]cell.Cell{{}, cell.I32(30), cell.String("a")}, row.Cells)
	// absent columns are not reported
	s.Empty(s.reporter.warnings)
}

func (s *SessionSuite) TestParamsLayering() {
	s.Require().NoError(s.session.Init(options.Options{
		options.KeyAPIURL: "http://srv",
		options.KeyAPIKey: "k",
	}))
	s.Equal(options.DefaultConnectionID, s.session.Params().ConnectionID)

	s.Require().NoError(s.session.BeginScan(s.ctx, options.Options{
		options.KeyObject:       "people",
		options.KeyConnectionID: "c2",
	}))
	s.Equal(options.ConnectionParams{
		BaseURL:      "http://srv",
		APIKey:       "k",
		ConnectionID: "c2",
		Object:       "people",
	}, s.source.lastParams)

	// Table options of a later scan overlay what the previous scan resolved.
	s.Require().NoError(s.session.BeginScan(s.ctx, options.Options{options.KeyObject: "pets"}))
	s.Equal("c2", s.source.lastParams.ConnectionID)
	s.Equal("pets", s.source.lastParams.Object)
}

func (s *SessionSuite) TestBeginScanFailure() {
	listErr := &remote.TransportError{Op: "list rows", URL: "http://x", Err: errors.New("boom")}
	s.source.listErr = listErr
	s.Require().NoError(s.session.Init(nil))

	err := s.session.BeginScan(s.ctx, nil)
	s.Same(listErr, err)
	s.Empty(s.session.Pending())
	s.Empty(s.reporter.infos)

	_, ok, err := s.session.IterScan(s.ctx, s.columns)
	s.NoError(err)
	s.False(ok)
	s.Equal(0, s.source.fetchCalls)
}

func (s *SessionSuite) TestIterScanFailureDoesNotAdvance() {
	s.Require().NoError(s.session.Init(nil))
	s.Require().NoError(s.session.BeginScan(s.ctx, nil))

	fetchErr := &remote.ResponseParseError{Op: "get row", Err: errors.New("bad")}
	s.source.fetchErr = fetchErr
	_, ok, err := s.session.IterScan(s.ctx, s.columns)
	s.False(ok)
	var perr *remote.ResponseParseError
	s.True(errors.As(err, &perr))
	s.Equal(0, s.session.Cursor())
}

func (s *SessionSuite) TestReScanAlwaysFails() {
	err := s.session.ReScan()
	s.ErrorIs(err, ErrUnsupported)

	s.Require().NoError(s.session.Init(nil))
	s.Require().NoError(s.session.BeginScan(s.ctx, nil))
	_, _, err = s.session.IterScan(s.ctx, s.columns)
	s.Require().NoError(err)

	pending := s.session.Pending()
	err = s.session.ReScan()
	s.ErrorIs(err, ErrUnsupported)
	s.Equal("re_scan on foreign table is not supported", err.Error())
	s.Equal(1, s.session.Cursor())
	s.Equal(pending, s.session.Pending())
	s.Equal(StateScanning, s.session.State())
}

func (s *SessionSuite) TestEndScanTwice() {
	s.Require().NoError(s.session.Init(nil))
	s.Require().NoError(s.session.BeginScan(s.ctx, nil))
	s.NoError(s.session.EndScan())
	s.NoError(s.session.EndScan())
	s.Equal(0, s.session.Cursor())
	s.Equal(0, s.session.Remaining())

	_, ok, err := s.session.IterScan(s.ctx, s.columns)
	s.NoError(err)
	s.False(ok)
}

func (s *SessionSuite) TestBeginScanRequiresInit() {
	err := s.session.BeginScan(s.ctx, nil)
	s.ErrorIs(err, ErrNotInitialized)
	s.Equal(0, s.source.listCalls)
}

func TestWritePathIsGated(t *testing.T) {
	s := New(&fakeSource{}, WithLogger(quietLogger))
	require.NoError(t, s.Init(nil))

	// A host that never calls BeginModify still cannot write.
	assert.ErrorIs(t, s.Insert([]cell.Cell{cell.I64(1)}), ErrUnsupported)
	assert.ErrorIs(t, s.Update(cell.String("a"), []cell.Cell{cell.I64(1)}), ErrUnsupported)
	assert.ErrorIs(t, s.Delete(cell.String("a")), ErrUnsupported)
	assert.ErrorIs(t, s.EndModify(), ErrUnsupported)

	err := s.BeginModify()
	assert.ErrorIs(t, err, ErrUnsupported)
	var uerr *UnsupportedOperationError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "modify", uerr.Op)
	assert.Equal(t, "modify on foreign table is not supported", err.Error())
}

func TestSessionIDsAreDistinct(t *testing.T) {
	a := New(&fakeSource{}, WithLogger(quietLogger))
	b := New(&fakeSource{}, WithLogger(quietLogger))
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, StateUninitialized, a.State())
}
