package fdw

import "github.com/bisegni/rowfdw/pkg/cell"

// The foreign table is read-only. Every write operation passes through
// writeGate, so a host that skips BeginModify still cannot write.

func (s *Session) writeGate(op string) error {
	return &UnsupportedOperationError{Op: op}
}

func (s *Session) BeginModify() error {
	return s.writeGate("modify")
}

func (s *Session) Insert(row []cell.Cell) error {
	return s.writeGate("insert")
}

func (s *Session) Update(rowID cell.Cell, row []cell.Cell) error {
	return s.writeGate("update")
}

func (s *Session) Delete(rowID cell.Cell) error {
	return s.writeGate("delete")
}

func (s *Session) EndModify() error {
	return s.writeGate("end modify")
}
