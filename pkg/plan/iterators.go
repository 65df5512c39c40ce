package plan

import (
	"github.com/bisegni/rowfdw/pkg/cell"
	"github.com/bisegni/rowfdw/pkg/database"
	"github.com/bisegni/rowfdw/pkg/query"
)

// --- Filter Iterator ---

type filterIterator struct {
	source     database.RowIterator
	expression query.Expression
}

func (it *filterIterator) Next() bool {
	for it.source.Next() {
		if it.expression.Evaluate(it.source.Row()) {
			return true
		}
	}
	return false
}

func (it *filterIterator) Row() database.Row {
	return it.source.Row()
}

func (it *filterIterator) Error() error {
	return it.source.Error()
}

func (it *filterIterator) Close() error {
	return it.source.Close()
}

// --- Project Iterator ---

type projectIterator struct {
	source     database.RowIterator
	fields     []query.Field
	currentRow database.Row
}

func (it *projectIterator) Next() bool {
	if !it.source.Next() {
		return false
	}
	src := it.source.Row()

	names := make([]string, len(it.fields))
	cells := make([]cell.Cell, len(it.fields))
	for i, f := range it.fields {
		names[i] = f.Alias
		if c, err := src.Get(f.Column); err == nil {
			cells[i] = c
		}
	}
	it.currentRow = database.NewCellRow(src.ID(), names, cells)
	return true
}

func (it *projectIterator) Row() database.Row {
	return it.currentRow
}

func (it *projectIterator) Error() error {
	return it.source.Error()
}

func (it *projectIterator) Close() error {
	return it.source.Close()
}

// --- Limit Iterator ---

type limitIterator struct {
	source    database.RowIterator
	remaining int
}

func (it *limitIterator) Next() bool {
	if it.remaining <= 0 {
		return false
	}
	if !it.source.Next() {
		return false
	}
	it.remaining--
	return true
}

func (it *limitIterator) Row() database.Row {
	return it.source.Row()
}

func (it *limitIterator) Error() error {
	return it.source.Error()
}

func (it *limitIterator) Close() error {
	return it.source.Close()
}
