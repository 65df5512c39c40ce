package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/bisegni/rowfdw/pkg/cell"
	"github.com/bisegni/rowfdw/pkg/database"
	"github.com/bisegni/rowfdw/pkg/ddl"
	"github.com/bisegni/rowfdw/pkg/fdw"
	"github.com/bisegni/rowfdw/pkg/query"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Step through the scan lifecycle interactively",
	Long: `Open a REPL that drives one scan session by hand.

Commands:
  tables              list declared foreign tables
  init <table>        start a session for a table (server scope applied)
  begin               list the row identifiers (table scope applied)
  next [n]            fetch the next n rows (default 1)
  rescan              attempt a rescan (always refused)
  insert|update|delete
                      attempt a write (always refused)
  end                 end the scan
  params              show the resolved connection parameters
  state               show the session state and cursor
  CREATE ...          declare a server or foreign table
  SELECT ...          run a query (EXPLAIN SELECT ... shows the plan)
  quit                leave the shell`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadConfig()
		if err != nil {
			return err
		}
		return runInteractive(cmd.Context(), newShell(newCatalog(f), cmd.OutOrStdout()))
	},
}

func runInteractive(ctx context.Context, sh *shell) error {
	fmt.Fprintln(sh.out, "Interactive mode enabled. Type 'quit' or 'exit' to leave.")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "rowfdw> ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		quit, err := sh.execute(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if quit {
			break
		}
	}

	if sh.session != nil {
		return sh.session.EndScan()
	}
	return nil
}

// shell holds the session driven by the REPL.
type shell struct {
	catalog *database.Catalog
	out     io.Writer
	table   *database.ForeignTable
	session *fdw.Session
}

func newShell(c *database.Catalog, out io.Writer) *shell {
	return &shell{catalog: c, out: out}
}

// execute runs one input line. It reports whether the shell should exit.
func (sh *shell) execute(ctx context.Context, line string) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false, nil
	}
	if ddl.IsDDL(trimmed) {
		return false, sh.applyDDL(trimmed)
	}
	if query.IsQuery(trimmed) {
		_, err := runQuery(ctx, sh.catalog, trimmed, sh.out, false, false)
		return false, err
	}

	fields := strings.Fields(trimmed)
	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return true, nil
	case "tables":
		for _, name := range sh.catalog.TableNames() {
			fmt.Fprintln(sh.out, name)
		}
		return false, nil
	case "init":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: init <table>")
		}
		return false, sh.init(fields[1])
	}

	if sh.session == nil {
		return false, fmt.Errorf("no session, run 'init <table>' first")
	}

	switch strings.ToLower(fields[0]) {
	case "begin":
		if err := sh.session.BeginScan(ctx, sh.table.TableOptions()); err != nil {
			return false, err
		}
		fmt.Fprintf(sh.out, "%d row(s) pending\n", sh.session.Remaining())
		return false, nil
	case "next":
		n := 1
		if len(fields) > 1 {
			parsed, err := strconv.Atoi(fields[1])
			if err != nil || parsed < 1 {
				return false, fmt.Errorf("invalid row count '%s'", fields[1])
			}
			n = parsed
		}
		return false, sh.next(ctx, n)
	case "rescan":
		return false, sh.session.ReScan()
	case "insert":
		return false, sh.session.Insert(nil)
	case "update":
		return false, sh.session.Update(cell.Cell{}, nil)
	case "delete":
		return false, sh.session.Delete(cell.Cell{})
	case "end":
		return false, sh.session.EndScan()
	case "params":
		p := sh.session.Params().Redacted()
		fmt.Fprintf(sh.out, "api_url: %s\napi_key: %s\nconnection_id: %s\nobject: %s\n", p.BaseURL, p.APIKey, p.ConnectionID, p.Object)
		return false, nil
	case "state":
		fmt.Fprintf(sh.out, "%s (cursor %d, %d remaining)\n", sh.session.State(), sh.session.Cursor(), sh.session.Remaining())
		return false, nil
	default:
		return false, fmt.Errorf("unknown command '%s'", fields[0])
	}
}

func (sh *shell) init(name string) error {
	t, err := sh.catalog.GetTable(name)
	if err != nil {
		return err
	}
	s, err := t.NewSession()
	if err != nil {
		return err
	}
	if sh.session != nil {
		if err := sh.session.EndScan(); err != nil {
			return fmt.Errorf("end previous scan: %w", err)
		}
	}
	sh.table, sh.session = t, s
	fmt.Fprintf(sh.out, "session %s on %s\n", s.ID()[:8], name)
	return nil
}

func (sh *shell) next(ctx context.Context, n int) error {
	columns := sh.table.Columns()
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}

	for i := 0; i < n; i++ {
		row, ok, err := sh.session.IterScan(ctx, columns)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(sh.out, "(end of scan)")
			return nil
		}
		fmt.Fprintln(sh.out, database.NewCellRow(row.ID, names, row.Cells).String())
	}
	return nil
}

func (sh *shell) applyDDL(input string) error {
	stmts, err := ddl.Parse(input)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := sh.catalog.Apply(stmt); err != nil {
			return err
		}
		switch {
		case stmt.Server != nil:
			fmt.Fprintf(sh.out, "CREATE SERVER %s\n", stmt.Server.Name)
		case stmt.Table != nil:
			fmt.Fprintf(sh.out, "CREATE FOREIGN TABLE %s\n", stmt.Table.Name)
		}
	}
	return nil
}
