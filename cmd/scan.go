package cmd

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/bisegni/rowfdw/pkg/database"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ScanPretty   bool
	ScanColumns  []string
	ScanTableOpt []string
	ScanLimit    int
)

var scanCmd = &cobra.Command{
	Use:   "scan <table>",
	Short: "Scan a foreign table and print its rows as JSONL",
	Long: `Run one full scan of a foreign table: list the row identifiers, then
fetch and convert each row. Every row is printed as one JSON object whose
keys follow the declared column order.

Examples:
  rowfdw scan people
  rowfdw scan people --column id:bigint --column meta:jsonb
  rowfdw scan orders --table-opt connection_id=c2 --limit 10 --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadConfig()
		if err != nil {
			return err
		}
		t, err := resolveTable(f, newCatalog(f), args[0], ScanColumns, ScanTableOpt)
		if err != nil {
			return err
		}
		n, err := runScan(cmd, t, cmd.OutOrStdout())
		logger.Info("scan finished", "table", args[0], "rows", n)
		return err
	},
}

func init() {
	scanCmd.Flags().BoolVar(&ScanPretty, "pretty", false, "Pretty print output")
	scanCmd.Flags().StringArrayVar(&ScanColumns, "column", nil, "Column as name:type (repeatable, overrides the declaration)")
	scanCmd.Flags().StringArrayVar(&ScanTableOpt, "table-opt", nil, "Table option override as key=value (repeatable)")
	scanCmd.Flags().IntVar(&ScanLimit, "limit", 0, "Stop after this many rows (0 for all)")
}

func runScan(cmd *cobra.Command, t database.Table, w io.Writer) (int, error) {
	it, err := t.Iterate(cmd.Context())
	if err != nil {
		return 0, err
	}
	return writeRows(it, w, ScanPretty, ScanLimit)
}

// writeRows encodes rows as JSONL until the iterator is done or limit rows
// were written (limit <= 0 means all). The iterator is closed.
func writeRows(it database.RowIterator, w io.Writer, pretty bool, limit int) (int, error) {
	defer it.Close()

	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}

	count := 0
	for it.Next() {
		if err := encoder.Encode(it.Row()); err != nil {
			return count, fmt.Errorf("encode row: %w", err)
		}
		count++
		if limit > 0 && count >= limit {
			break
		}
	}
	if err := it.Error(); err != nil {
		return count, err
	}
	return count, nil
}
