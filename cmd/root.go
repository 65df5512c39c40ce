package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bisegni/rowfdw/pkg/cell"
	"github.com/bisegni/rowfdw/pkg/database"
	"github.com/bisegni/rowfdw/pkg/fdw"
	"github.com/bisegni/rowfdw/pkg/options"
	"github.com/bisegni/rowfdw/pkg/remote"
)

var (
	ConfigPath string
	ServerOpts []string
	LogLevel   string

	UserAgent = remote.DefaultUserAgent
	Timeout   = remote.DefaultTimeout

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "rowfdw",
	Short: "Read-only foreign tables over the Huruli row API",
	Long: `rowfdw scans remote tables exposed by the Huruli row API as if they were
local foreign tables: it lists the row identifiers of a table, then fetches
and type-converts one row at a time.

Tables are declared in an options file (--config, $ROWFDW_CONFIG,
./rowfdw.yaml or ~/.config/rowfdw/config.yaml) or with CREATE statements
in the shell.

Examples:
  rowfdw scan people
  rowfdw scan people --column id:bigint --column name:text --pretty
  rowfdw query "SELECT name FROM people WHERE age > 30"
  rowfdw --server-opt api_url=http://localhost:8080 options people
  rowfdw serve fixture.yaml --addr :8080
  rowfdw shell`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(LogLevel)); err != nil {
			return fmt.Errorf("invalid log level '%s': %w", LogLevel, err)
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command. Interrupts cancel in-flight remote calls.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "Options file (YAML)")
	rootCmd.PersistentFlags().StringArrayVarP(&ServerOpts, "server-opt", "o", nil, "Server option override as key=value (repeatable)")
	rootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&UserAgent, "user-agent", remote.DefaultUserAgent, "User agent sent to the remote API")
	rootCmd.PersistentFlags().DurationVar(&Timeout, "timeout", remote.DefaultTimeout, "Timeout of each remote call")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
}

// loadConfig reads the options file and layers --server-opt on top of its
// server scope. A missing file yields an empty configuration.
func loadConfig() (*options.File, error) {
	path := ConfigPath
	if path == "" {
		path = options.Find()
	}

	f := &options.File{Server: options.Options{}, Tables: map[string]options.TableConfig{}}
	if path != "" {
		loaded, err := options.LoadFile(path)
		if err != nil {
			return nil, err
		}
		f = loaded
		logger.Debug("loaded options file", "path", path, "tables", len(f.Tables))
	}

	overrides, err := options.ParseAssignments(ServerOpts)
	if err != nil {
		return nil, fmt.Errorf("--server-opt: %w", err)
	}
	f.Server = options.Merge(f.Server, overrides)
	return f, nil
}

func newClient() *remote.Client {
	transport := remote.NewHTTPTransportWithClient(&http.Client{Timeout: Timeout})
	return remote.New(
		remote.WithTransport(transport),
		remote.WithUserAgent(UserAgent),
		remote.WithLogger(logger),
	)
}

func newCatalog(f *options.File) *database.Catalog {
	return database.NewCatalogFromFile(f, newClient(), fdw.WithLogger(logger))
}

// resolveTable returns the declared table, or declares one on the fly that
// reads the remote object of the same name. Non-empty columns and table
// options override the declaration.
func resolveTable(f *options.File, c *database.Catalog, name string, columns []string, tableOpts []string) (*database.ForeignTable, error) {
	overrides, err := options.ParseAssignments(tableOpts)
	if err != nil {
		return nil, fmt.Errorf("--table-opt: %w", err)
	}
	cols, err := parseColumns(columns)
	if err != nil {
		return nil, err
	}

	tc, declared := f.Tables[name]
	if !declared {
		tc.Options = options.Options{options.KeyObject: name}
	}
	if len(cols) > 0 {
		tc.Columns = cols
	}
	tc.Options = options.Merge(tc.Options, overrides)

	if declared && len(cols) == 0 && len(overrides) == 0 {
		return c.GetTable(name)
	}

	colDefs := make([]fdw.Column, len(tc.Columns))
	for i, cc := range tc.Columns {
		colDefs[i] = fdw.Column{Name: cc.Name, Type: cc.Type}
	}
	t := database.NewForeignTable(name, newClient(), f.Server, tc.Options, colDefs, fdw.WithLogger(logger))
	c.RegisterTable(name, t)
	return t, nil
}

// parseColumns parses name:type column flags.
func parseColumns(specs []string) ([]options.ColumnConfig, error) {
	cols := make([]options.ColumnConfig, 0, len(specs))
	for _, arg := range specs {
		name, typeName, ok := strings.Cut(arg, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid column '%s', expected name:type", arg)
		}
		t, err := cell.ParseType(typeName)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", name, err)
		}
		cols = append(cols, options.ColumnConfig{Name: strings.TrimSpace(name), Type: t})
	}
	return cols, nil
}
