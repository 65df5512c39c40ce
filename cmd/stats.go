package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bisegni/rowfdw/pkg/database"
)

var (
	StatsColumns  []string
	StatsTableOpt []string
)

var statsCmd = &cobra.Command{
	Use:   "stats <table>",
	Short: "Show statistics about a foreign table",
	Long: `Scan a foreign table and report, for every declared column, how many
rows produced each kind of cell. Values that could not be converted to the
column type are counted as null.

Examples:
  rowfdw stats people
  rowfdw stats people --column age:int`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringArrayVar(&StatsColumns, "column", nil, "Column as name:type (repeatable, overrides the declaration)")
	statsCmd.Flags().StringArrayVar(&StatsTableOpt, "table-opt", nil, "Table option override as key=value (repeatable)")
}

func runStats(cmd *cobra.Command, args []string) error {
	f, err := loadConfig()
	if err != nil {
		return err
	}
	t, err := resolveTable(f, newCatalog(f), args[0], StatsColumns, StatsTableOpt)
	if err != nil {
		return err
	}

	it, err := t.Iterate(cmd.Context())
	if err != nil {
		return err
	}
	defer it.Close()

	var rows []*database.CellRow
	for it.Next() {
		rows = append(rows, it.Row().(*database.CellRow))
	}
	if err := it.Error(); err != nil {
		return err
	}

	printStats(cmd.OutOrStdout(), args[0], t, gatherStats(rows))
	return nil
}

// columnStats counts cell kinds per column.
type columnStats struct {
	total  int
	fields map[string]map[string]int
}

func gatherStats(rows []*database.CellRow) columnStats {
	stats := columnStats{
		total:  len(rows),
		fields: make(map[string]map[string]int),
	}

	for _, row := range rows {
		for _, cc := range row.Cells() {
			if _, exists := stats.fields[cc.Name]; !exists {
				stats.fields[cc.Name] = make(map[string]int)
			}
			stats.fields[cc.Name][cc.Cell.Kind().String()]++
		}
	}
	return stats
}

func printStats(w io.Writer, name string, t *database.ForeignTable, stats columnStats) {
	p := t.Params()
	fmt.Fprintf(w, "Table: %s\n", name)
	fmt.Fprintf(w, "Remote: %s\n", p.Object)
	fmt.Fprintf(w, "Total rows: %d\n", stats.total)

	if stats.total == 0 {
		return
	}
	fmt.Fprintf(w, "\nColumns:\n")
	for _, col := range t.Columns() {
		fmt.Fprintf(w, "  %s (%s):\n", col.Name, col.Type)
		kinds := stats.fields[col.Name]
		names := make([]string, 0, len(kinds))
		for kind := range kinds {
			names = append(names, kind)
		}
		sort.Strings(names)
		for _, kind := range names {
			count := kinds[kind]
			fmt.Fprintf(w, "    %s: %d (%.1f%%)\n", kind, count, float64(count)/float64(stats.total)*100)
		}
	}
}
