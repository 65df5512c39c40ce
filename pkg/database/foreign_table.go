package database

import (
	"context"
	"fmt"

	"github.com/bisegni/rowfdw/pkg/fdw"
	"github.com/bisegni/rowfdw/pkg/options"
)

// ForeignTable adapts a remote row API to the Table interface.
// Every Iterate call runs its own scan session.
type ForeignTable struct {
	name    string
	server  options.Options
	table   options.Options
	columns []fdw.Column
	source  fdw.RowSource
	opts    []fdw.Option
}

// NewForeignTable declares a foreign table. Session options are applied to
// every scan session the table starts.
func NewForeignTable(name string, source fdw.RowSource, server, table options.Options, columns []fdw.Column, opts ...fdw.Option) *ForeignTable {
	return &ForeignTable{
		name:    name,
		server:  server,
		table:   table,
		columns: columns,
		source:  source,
		opts:    opts,
	}
}

func (t *ForeignTable) Name() string { return t.name }

// Columns returns the declared columns in order.
func (t *ForeignTable) Columns() []fdw.Column { return t.columns }

// TableOptions returns the table-scope options.
func (t *ForeignTable) TableOptions() options.Options { return t.table }

// Params resolves the connection parameters a scan of this table would use.
func (t *ForeignTable) Params() options.ConnectionParams {
	return options.ResolveScopes(t.server, t.table)
}

// NewSession returns an initialized session that has not begun scanning.
func (t *ForeignTable) NewSession() (*fdw.Session, error) {
	s := fdw.New(t.source, t.opts...)
	if err := s.Init(t.server); err != nil {
		return nil, fmt.Errorf("init session for '%s': %w", t.name, err)
	}
	return s, nil
}

func (t *ForeignTable) Iterate(ctx context.Context) (RowIterator, error) {
	return t.iterate(ctx, t.columns)
}

// IterateColumns scans the table requesting only the named columns, in the
// given order. Every name must be a declared column.
func (t *ForeignTable) IterateColumns(ctx context.Context, columns []string) (RowIterator, error) {
	selected := make([]fdw.Column, 0, len(columns))
	for _, name := range columns {
		col, ok := t.column(name)
		if !ok {
			return nil, fmt.Errorf("table '%s' has no column '%s'", t.name, name)
		}
		selected = append(selected, col)
	}
	return t.iterate(ctx, selected)
}

func (t *ForeignTable) column(name string) (fdw.Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return fdw.Column{}, false
}

func (t *ForeignTable) iterate(ctx context.Context, columns []fdw.Column) (RowIterator, error) {
	s, err := t.NewSession()
	if err != nil {
		return nil, err
	}
	if err := s.BeginScan(ctx, t.table); err != nil {
		return nil, fmt.Errorf("begin scan of '%s': %w", t.name, err)
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return &foreignIterator{ctx: ctx, session: s, columns: columns, names: names}, nil
}

type foreignIterator struct {
	ctx     context.Context
	session *fdw.Session
	columns []fdw.Column
	names   []string
	current Row
	err     error
}

func (it *foreignIterator) Next() bool {
	if it.err != nil {
		return false
	}
	row, ok, err := it.session.IterScan(it.ctx, it.columns)
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		return false
	}
	it.current = NewCellRow(row.ID, it.names, row.Cells)
	return true
}

func (it *foreignIterator) Row() Row {
	return it.current
}

func (it *foreignIterator) Error() error {
	return it.err
}

func (it *foreignIterator) Close() error {
	return it.session.EndScan()
}
