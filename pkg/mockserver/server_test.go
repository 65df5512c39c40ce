package mockserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
connection_id: cid1
tables:
  people:
    columns: [id, name, age]
    rows:
      - [a1, alice, 30]
      - [7, bob]
      - []
`

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	f, err := ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	s := New(f, opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, url, auth, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestListRows(t *testing.T) {
	s, ts := newTestServer(t)

	status, body := post(t, ts.URL+"/fdw/connections/cid1/tables/people/rows", "", `{}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"columns":["id"],"rows":[["a1"],[7],[]]}`, body)
	assert.Equal(t, Stats{ListCalls: 1}, s.Stats())
}

func TestGetRow(t *testing.T) {
	s, ts := newTestServer(t)
	base := ts.URL + "/fdw/connections/cid1/tables/people/rows/"

	status, body := post(t, base+"a1", "", `{"cid":"cid1","tableName":"people","rowId":"a1","columns":["age","name","nope"]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"columns":["age","name"],"values":[30,"alice"]}`, body)

	status, body = post(t, base+"7", "", `{"columns":[]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"columns":["id","name","age"],"values":[7,"bob",null]}`, body)

	status, _ = post(t, base+"missing", "", `{"columns":[]}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = post(t, base+"a1", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	assert.Equal(t, int64(4), s.Stats().FetchCalls)
}

func TestUnknownTableAndConnection(t *testing.T) {
	_, ts := newTestServer(t)

	status, _ := post(t, ts.URL+"/fdw/connections/cid1/tables/ghosts/rows", "", `{}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = post(t, ts.URL+"/fdw/connections/other/tables/people/rows", "", `{}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBearerAuth(t *testing.T) {
	_, ts := newTestServer(t, WithAPIKey("secret"))
	url := ts.URL + "/fdw/connections/cid1/tables/people/rows"

	status, _ := post(t, url, "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = post(t, url, "Bearer wrong", `{}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = post(t, url, "Bearer secret", `{}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestRequestIDHeader(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Request-ID"), 8)
}

func TestParseFixtureRejectsWideRows(t *testing.T) {
	_, err := ParseFixture([]byte("tables:\n  t:\n    columns: [id]\n    rows:\n      - [1, 2]\n"))
	assert.Error(t, err)
}
