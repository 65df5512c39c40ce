package planner

import (
	"fmt"

	"github.com/bisegni/rowfdw/pkg/database"
	"github.com/bisegni/rowfdw/pkg/plan"
	"github.com/bisegni/rowfdw/pkg/query"
)

// TableResolver looks up the table a query reads from.
type TableResolver interface {
	ResolveTable(name string) (database.Table, error)
}

// CreatePlan converts a Query IR into an Execution Plan. The scan requests
// only the projected columns followed by any other column the filter reads;
// SELECT * requests every declared column.
func CreatePlan(q *query.SelectQuery, tables TableResolver) (plan.Node, error) {
	// 1. Resolve Input (FROM)
	table, err := tables.ResolveTable(q.FromTable)
	if err != nil {
		return nil, fmt.Errorf("planning error: %w", err)
	}

	scan := &plan.ScanNode{TableName: q.FromTable, Table: table}
	if !q.Star() {
		scan.Columns = RequiredColumns(q)
	}
	var currentNode plan.Node = scan

	// 2. Apply WHERE (Filter)
	if q.Filter != nil {
		currentNode = &plan.FilterNode{
			Input:      currentNode,
			Expression: q.Filter,
		}
	}

	// 3. Projection
	if !q.Star() {
		currentNode = &plan.ProjectNode{
			Input:  currentNode,
			Fields: q.Fields,
		}
	}

	// 4. LIMIT
	if q.Limit >= 0 {
		currentNode = &plan.LimitNode{
			Input: currentNode,
			Count: q.Limit,
		}
	}

	return currentNode, nil
}

// RequiredColumns lists the columns a scan must fetch for q: projected
// columns first, then columns only the filter reads, without duplicates.
func RequiredColumns(q *query.SelectQuery) []string {
	var columns []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			columns = append(columns, name)
		}
	}

	for _, f := range q.Fields {
		add(f.Column)
	}
	if q.Filter != nil {
		for _, name := range q.Filter.Columns() {
			add(name)
		}
	}
	return columns
}
