package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bisegni/rowfdw/pkg/database"
	"github.com/bisegni/rowfdw/pkg/plan"
	"github.com/bisegni/rowfdw/pkg/planner"
	"github.com/bisegni/rowfdw/pkg/query"
)

var (
	QueryPretty  bool
	QueryExplain bool
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a SELECT over a declared foreign table",
	Long: `Run a SELECT over a declared foreign table. Only the selected columns and
the columns the WHERE clause reads are requested from the remote; the WHERE
clause itself is evaluated locally on every fetched row.

Supports:
  SELECT * | col [AS alias], ... FROM table
    [WHERE cond [AND|OR cond]...] [LIMIT n]
  conditions: col = | != | <> | > | >= | < | <= literal, col CONTAINS 'text',
    col IS [NOT] NULL, NOT cond, (cond)

Examples:
  rowfdw query "SELECT name, age FROM people WHERE age > 30"
  rowfdw query "SELECT * FROM people LIMIT 5" --pretty
  rowfdw query "EXPLAIN SELECT name FROM people WHERE team = 'core'"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadConfig()
		if err != nil {
			return err
		}
		n, err := runQuery(cmd.Context(), newCatalog(f), args[0], cmd.OutOrStdout(), QueryPretty, QueryExplain)
		logger.Info("query finished", "rows", n)
		return err
	},
}

func init() {
	queryCmd.Flags().BoolVar(&QueryPretty, "pretty", false, "Pretty print output")
	queryCmd.Flags().BoolVar(&QueryExplain, "explain", false, "Print the execution plan instead of running it")
}

// runQuery parses, plans and runs sql against the catalog, writing rows as
// JSONL, or the plan when explain is set or the statement is an EXPLAIN.
func runQuery(ctx context.Context, c *database.Catalog, sql string, w io.Writer, pretty, explain bool) (int, error) {
	q, err := query.ParseQuery(sql)
	if err != nil {
		return 0, fmt.Errorf("failed to parse query: %w", err)
	}

	root, err := planner.CreatePlan(q, c)
	if err != nil {
		return 0, err
	}

	if explain || q.Explain {
		_, err := fmt.Fprint(w, "Execution Plan:\n"+plan.FormatPlan(root))
		return 0, err
	}

	it, err := root.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return writeRows(it, w, pretty, 0)
}
