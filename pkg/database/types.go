package database

import (
	"context"

	"github.com/bisegni/rowfdw/pkg/cell"
)

// Row represents a single record read from a foreign table.
type Row interface {
	// ID returns the remote row identifier.
	ID() string
	// Get returns the cell of a declared column.
	Get(column string) (cell.Cell, error)
}

// RowIterator allows iterating over rows in a table.
type RowIterator interface {
	// Next advances the iterator. Returns false if no more rows or error.
	Next() bool
	// Row returns the current row.
	Row() Row
	// Error returns any error that occurred during iteration.
	Error() error
	// Close releases resources.
	Close() error
}

// Table represents a dataset that can be scanned.
type Table interface {
	// Iterate returns a new iterator for scanning the table.
	Iterate(ctx context.Context) (RowIterator, error)
}

// ColumnTable is a Table whose scans can be restricted to some of its
// columns. Only the named columns are requested from the source.
type ColumnTable interface {
	Table
	IterateColumns(ctx context.Context, columns []string) (RowIterator, error)
}
