package database

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/bisegni/rowfdw/pkg/cell"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ColumnCell pairs a column name with the cell read for it.
type ColumnCell struct {
	Name string
	Cell cell.Cell
}

// CellRow is a row of cells in declared column order.
// It marshals to a JSON object whose keys keep that order.
type CellRow struct {
	id    string
	cells []ColumnCell
}

// NewCellRow builds a row from parallel column and cell slices.
func NewCellRow(id string, columns []string, cells []cell.Cell) *CellRow {
	r := &CellRow{id: id, cells: make([]ColumnCell, 0, len(columns))}
	for i, name := range columns {
		var c cell.Cell
		if i < len(cells) {
			c = cells[i]
		}
		r.cells = append(r.cells, ColumnCell{Name: name, Cell: c})
	}
	return r
}

func (r *CellRow) ID() string { return r.id }

func (r *CellRow) Get(column string) (cell.Cell, error) {
	for _, cc := range r.cells {
		if cc.Name == column {
			return cc.Cell, nil
		}
	}
	return cell.Cell{}, fmt.Errorf("column '%s' not found", column)
}

// Cells returns the row's cells in column order.
func (r *CellRow) Cells() []ColumnCell { return r.cells }

// MarshalJSON implements the json.Marshaler interface.
func (r *CellRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cc := range r.cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(cc.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(cc.Cell)
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String implements fmt.Stringer
func (r *CellRow) String() string {
	b, _ := r.MarshalJSON()
	return string(b)
}
