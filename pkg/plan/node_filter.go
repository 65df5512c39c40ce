package plan

import (
	"context"

	"github.com/bisegni/rowfdw/pkg/database"
	"github.com/bisegni/rowfdw/pkg/query"
)

// FilterNode keeps the rows for which Expression holds.
type FilterNode struct {
	Input      Node
	Expression query.Expression
}

func (n *FilterNode) Execute(ctx context.Context) (database.RowIterator, error) {
	inputIter, err := n.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return &filterIterator{source: inputIter, expression: n.Expression}, nil
}

func (n *FilterNode) Children() []Node {
	return []Node{n.Input}
}

func (n *FilterNode) Explain() string {
	return "Filter(expression: " + n.Expression.String() + ")"
}
