// Package remote talks to the HTTP API that backs a foreign table.
//
// The API has two calls, both POST with a JSON body:
//
//	{base}/fdw/connections/{cid}/tables/{object}/rows          list row identifiers
//	{base}/fdw/connections/{cid}/tables/{object}/rows/{rowId}  fetch one row
//
// Every call is synchronous and nothing is retried. Failures surface as
// *TransportError or *ResponseParseError.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/bisegni/rowfdw/pkg/options"
	"github.com/bisegni/rowfdw/pkg/value"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultUserAgent is sent on every request.
const DefaultUserAgent = "Huruli FDW"

const (
	opListRows = "list rows"
	opGetRow   = "get row"
)

// Client issues the listing and row-fetch calls.
type Client struct {
	transport Transport
	userAgent string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client. Without options it uses an HTTPTransport with
// DefaultTimeout.
func New(opts ...Option) *Client {
	c := &Client{
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(DefaultTimeout)
	}
	return c
}

type listRowsRequest struct{}

type listRowsResponse struct {
	Columns *[]string        `json:"columns"`
	Rows    *[][]value.Value `json:"rows"`
}

type getRowRequest struct {
	CID       string   `json:"cid"`
	TableName string   `json:"tableName"`
	RowID     string   `json:"rowId"`
	Columns   []string `json:"columns"`
}

type getRowResponse struct {
	Columns *[]string      `json:"columns"`
	Values  *[]value.Value `json:"values"`
}

// RowResponse is one fetched row: Columns[i] names the value in Values[i].
type RowResponse struct {
	Columns []string
	Values  []value.Value
}

// Lookup returns the value of the named column, if the row carries it.
func (r *RowResponse) Lookup(name string) (value.Value, bool) {
	for i, col := range r.Columns {
		if col == name {
			return r.Values[i], true
		}
	}
	return value.Value{}, false
}

// RowsURL is the listing endpoint for params.
func RowsURL(p options.ConnectionParams) string {
	return fmt.Sprintf("%s/fdw/connections/%s/tables/%s/rows",
		strings.TrimRight(p.BaseURL, "/"),
		url.PathEscape(p.ConnectionID),
		url.PathEscape(p.Object))
}

// RowURL is the fetch endpoint of one row.
func RowURL(p options.ConnectionParams, rowID string) string {
	return RowsURL(p) + "/" + url.PathEscape(rowID)
}

// ListIdentifiers returns the row identifiers of the table, in the order the
// remote listed them. The first element of every listed row is its
// identifier; rows without one are skipped.
func (c *Client) ListIdentifiers(ctx context.Context, p options.ConnectionParams) ([]string, error) {
	body, err := c.post(ctx, opListRows, p, RowsURL(p), listRowsRequest{})
	if err != nil {
		return nil, err
	}

	var resp listRowsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ResponseParseError{Op: opListRows, Err: err}
	}
	if resp.Columns == nil {
		return nil, &ResponseParseError{Op: opListRows, Err: errors.New("missing field 'columns'")}
	}
	if resp.Rows == nil {
		return nil, &ResponseParseError{Op: opListRows, Err: errors.New("missing field 'rows'")}
	}

	ids := make([]string, 0, len(*resp.Rows))
	for _, row := range *resp.Rows {
		if len(row) == 0 {
			continue
		}
		ids = append(ids, row[0].String())
	}

	c.logger.Debug("listed rows", "object", p.Object, "rows", len(*resp.Rows), "ids", len(ids))
	return ids, nil
}

// FetchRow fetches the requested columns of one row.
func (c *Client) FetchRow(ctx context.Context, p options.ConnectionParams, rowID string, columns []string) (*RowResponse, error) {
	if columns == nil {
		columns = []string{}
	}
	req := getRowRequest{
		CID:       p.ConnectionID,
		TableName: p.Object,
		RowID:     rowID,
		Columns:   columns,
	}

	body, err := c.post(ctx, opGetRow, p, RowURL(p, rowID), req)
	if err != nil {
		return nil, err
	}

	var resp getRowResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ResponseParseError{Op: opGetRow, Err: err}
	}
	if resp.Columns == nil {
		return nil, &ResponseParseError{Op: opGetRow, Err: errors.New("missing field 'columns'")}
	}
	if resp.Values == nil {
		return nil, &ResponseParseError{Op: opGetRow, Err: errors.New("missing field 'values'")}
	}
	if len(*resp.Columns) != len(*resp.Values) {
		return nil, &ResponseParseError{
			Op:  opGetRow,
			Err: fmt.Errorf("%d columns but %d values", len(*resp.Columns), len(*resp.Values)),
		}
	}

	return &RowResponse{Columns: *resp.Columns, Values: *resp.Values}, nil
}

func (c *Client) post(ctx context.Context, op string, p options.ConnectionParams, target string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", op, err)
	}

	c.logger.Debug("remote call", "op", op, "url", target)

	resp, err := c.transport.Do(ctx, &Request{
		Method: http.MethodPost,
		URL:    target,
		Headers: map[string]string{
			"user-agent":    c.userAgent,
			"authorization": "Bearer " + p.APIKey,
			"content-type":  "application/json",
		},
		Body: data,
	})
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:         op,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(resp.Body), 512),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return resp.Body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
