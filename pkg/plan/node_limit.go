package plan

import (
	"context"
	"fmt"

	"github.com/bisegni/rowfdw/pkg/database"
)

// LimitNode stops after Count rows. The scan below it is closed early, so
// no further rows are fetched.
type LimitNode struct {
	Input Node
	Count int
}

func (n *LimitNode) Execute(ctx context.Context) (database.RowIterator, error) {
	inputIter, err := n.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return &limitIterator{source: inputIter, remaining: n.Count}, nil
}

func (n *LimitNode) Children() []Node {
	return []Node{n.Input}
}

func (n *LimitNode) Explain() string {
	return fmt.Sprintf("Limit(%d)", n.Count)
}
