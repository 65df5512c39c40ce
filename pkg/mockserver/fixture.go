package mockserver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bisegni/rowfdw/pkg/value"
)

// Fixture is the data served by the mock remote.
//
//	connection_id: cid1        # optional; any id is accepted when empty
//	tables:
//	  people:
//	    columns: [id, name, meta]
//	    rows:
//	      - [1, alice, {team: a}]
//
// The first column of every row is its identifier.
type Fixture struct {
	ConnectionID string           `yaml:"connection_id"`
	Tables       map[string]Table `yaml:"tables"`
}

// Table is one fixture table.
type Table struct {
	Columns []string `yaml:"columns"`
	Rows    [][]any  `yaml:"rows"`
}

// ParseFixture decodes a fixture from YAML (or JSON) text.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for name, t := range f.Tables {
		for i, row := range t.Rows {
			if len(row) > len(t.Columns) {
				return nil, fmt.Errorf("table '%s': row %d has %d values for %d columns", name, i, len(row), len(t.Columns))
			}
		}
	}
	if f.Tables == nil {
		f.Tables = map[string]Table{}
	}
	return &f, nil
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// rowID renders the identifier of row the way the adapter stringifies it.
func rowID(row []any) (string, bool) {
	if len(row) == 0 {
		return "", false
	}
	data, err := json.Marshal(row[0])
	if err != nil {
		return "", false
	}
	v, err := value.Parse(data)
	if err != nil {
		return "", false
	}
	return v.String(), true
}

func (t Table) find(id string) ([]any, bool) {
	for _, row := range t.Rows {
		if rid, ok := rowID(row); ok && rid == id {
			return row, true
		}
	}
	return nil, false
}
