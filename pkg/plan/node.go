package plan

import (
	"context"

	"github.com/bisegni/rowfdw/pkg/database"
)

// Node represents an execution node in the query plan
type Node interface {
	Execute(ctx context.Context) (database.RowIterator, error)
	Children() []Node
	Explain() string
}
