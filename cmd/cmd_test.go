package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bisegni/rowfdw/pkg/cell"
	"github.com/bisegni/rowfdw/pkg/database"
	"github.com/bisegni/rowfdw/pkg/fdw"
	"github.com/bisegni/rowfdw/pkg/mockserver"
	"github.com/bisegni/rowfdw/pkg/options"
)

const fixtureYAML = `
tables:
  people:
    columns: [id, name, age]
    rows:
      - [a1, alice, 30]
      - [b2, bob, "x"]
`

func newFixtureURL(t *testing.T) string {
	t.Helper()
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	f, err := mockserver.ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)
	ts := httptest.NewServer(mockserver.New(f, mockserver.WithLogger(logger)).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func testConfig(url string) *options.File {
	return &options.File{
		Server: options.Options{options.KeyAPIURL: url},
		Tables: map[string]options.TableConfig{
			"people": {
				Options: options.Options{options.KeyObject: "people"},
				Columns: []options.ColumnConfig{
					{Name: "name", Type: cell.TypeString},
					{Name: "age", Type: cell.TypeI32},
				},
			},
		},
	}
}

func TestParseColumns(t *testing.T) {
	cols, err := parseColumns([]string{"id:bigint", " meta :jsonb"})
	require.NoError(t, err)
	assert.Equal(t, []options.ColumnConfig{
		{Name: "id", Type: cell.TypeI64},
		{Name: "meta", Type: cell.TypeJSON},
	}, cols)

	_, err = parseColumns([]string{"id"})
	assert.Error(t, err)
	_, err = parseColumns([]string{"id:widget"})
	assert.Error(t, err)
}

func TestResolveTable(t *testing.T) {
	f := testConfig("http://remote")
	c := newCatalog(f)

	declared, err := resolveTable(f, c, "people", nil, nil)
	require.NoError(t, err)
	assert.Len(t, declared.Columns(), 2)

	overridden, err := resolveTable(f, c, "people", []string{"id:text"}, []string{"connection_id=c2"})
	require.NoError(t, err)
	assert.Equal(t, []fdw.Column{{Name: "id", Type: cell.TypeString}}, overridden.Columns())
	assert.Equal(t, "c2", overridden.Params().ConnectionID)
	assert.Equal(t, "people", overridden.Params().Object)

	adhoc, err := resolveTable(f, c, "orders", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "orders", adhoc.Params().Object)
	assert.Equal(t, "http://remote", adhoc.Params().BaseURL)

	_, err = resolveTable(f, c, "people", nil, []string{"bad"})
	assert.Error(t, err)
}

func TestScanAndStats(t *testing.T) {
	f := testConfig(newFixtureURL(t))
	tbl, err := resolveTable(f, newCatalog(f), "people", nil, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	scanCmd.SetContext(context.Background())
	n, err := runScan(scanCmd, tbl, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "{\"name\":\"alice\",\"age\":30}\n{\"name\":\"bob\",\"age\":null}\n", buf.String())

	it, err := tbl.Iterate(context.Background())
	require.NoError(t, err)
	defer it.Close()
	var rows []*database.CellRow
	for it.Next() {
		rows = append(rows, it.Row().(*database.CellRow))
	}
	stats := gatherStats(rows)
	assert.Equal(t, 2, stats.total)
	assert.Equal(t, map[string]int{"i32": 1, "null": 1}, stats.fields["age"])
	assert.Equal(t, map[string]int{"string": 2}, stats.fields["name"])
}

func TestShellLifecycle(t *testing.T) {
	url := newFixtureURL(t)
	var out bytes.Buffer
	sh := newShell(newCatalog(&options.File{Server: options.Options{}, Tables: map[string]options.TableConfig{}}), &out)
	ctx := context.Background()

	run := func(line string) error {
		t.Helper()
		quit, err := sh.execute(ctx, line)
		assert.False(t, quit)
		return err
	}

	assert.Error(t, run("begin"), "no session yet")
	require.NoError(t, run(`CREATE SERVER local OPTIONS (api_url '`+url+`')`))
	require.NoError(t, run(`CREATE FOREIGN TABLE people (id text, age bigint) SERVER local OPTIONS (object 'people')`))
	require.NoError(t, run("init people"))
	require.NoError(t, run("begin"))
	assert.Contains(t, out.String(), "2 row(s) pending")

	// init over an open scan ends it and starts a fresh session
	first := sh.session
	require.NoError(t, run("init people"))
	assert.Equal(t, fdw.StateEnded, first.State())
	out.Reset()
	require.NoError(t, run("state"))
	assert.Equal(t, "initialized (cursor 0, 0 remaining)\n", out.String())
	require.NoError(t, run("begin"))

	out.Reset()
	require.NoError(t, run("next 5"))
	assert.Equal(t, "{\"id\":\"a1\",\"age\":30}\n{\"id\":\"b2\",\"age\":null}\n(end of scan)\n", out.String())

	err := run("rescan")
	assert.ErrorIs(t, err, fdw.ErrUnsupported)
	for _, op := range []string{"insert", "update", "delete"} {
		assert.ErrorIs(t, run(op), fdw.ErrUnsupported, op)
	}

	require.NoError(t, run("end"))
	out.Reset()
	require.NoError(t, run("state"))
	assert.Equal(t, "ended (cursor 0, 0 remaining)\n", out.String())

	assert.Error(t, run("next x"))
	assert.Error(t, run("bogus"))

	quit, err := sh.execute(ctx, "quit")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestRunQuery(t *testing.T) {
	f := testConfig(newFixtureURL(t))
	c := newCatalog(f)
	var buf bytes.Buffer

	n, err := runQuery(context.Background(), c, "SELECT name AS who FROM people WHERE age IS NULL", &buf, false, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "{\"who\":\"bob\"}\n", buf.String())

	buf.Reset()
	_, err = runQuery(context.Background(), c, "SELECT name FROM people", &buf, false, true)
	require.NoError(t, err)
	assert.Equal(t, "Execution Plan:\nProject(1 fields)\n-> Scan(table: people, columns: name)\n", buf.String())

	_, err = runQuery(context.Background(), c, "SELECT FROM", &buf, false, false)
	assert.Error(t, err)
}

func TestShellQuery(t *testing.T) {
	f := testConfig(newFixtureURL(t))
	var out bytes.Buffer
	sh := newShell(newCatalog(f), &out)

	quit, err := sh.execute(context.Background(), "select age from people limit 1")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, "{\"age\":30}\n", out.String())
}

func TestClientSendsUserAgent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Write([]byte(`{"columns":["id"],"rows":[]}`))
	}))
	defer ts.Close()

	prev := UserAgent
	UserAgent = "rowfdw-test"
	defer func() { UserAgent = prev }()

	ids, err := newClient().ListIdentifiers(context.Background(), options.ConnectionParams{BaseURL: ts.URL, Object: "people"})
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, "rowfdw-test", got)
}
