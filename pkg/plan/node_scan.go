package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/bisegni/rowfdw/pkg/database"
)

// ScanNode scans a table. When Columns is set and the table supports it,
// only those columns are requested from the source.
type ScanNode struct {
	TableName string
	Table     database.Table
	Columns   []string
}

func (n *ScanNode) Execute(ctx context.Context) (database.RowIterator, error) {
	if ct, ok := n.Table.(database.ColumnTable); ok && n.Columns != nil {
		return ct.IterateColumns(ctx, n.Columns)
	}
	return n.Table.Iterate(ctx)
}

func (n *ScanNode) Children() []Node {
	return nil
}

func (n *ScanNode) Explain() string {
	if n.Columns == nil {
		return fmt.Sprintf("Scan(table: %s, columns: *)", n.TableName)
	}
	return fmt.Sprintf("Scan(table: %s, columns: %s)", n.TableName, strings.Join(n.Columns, ", "))
}
