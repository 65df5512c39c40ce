package database

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bisegni/rowfdw/pkg/ddl"
	"github.com/bisegni/rowfdw/pkg/fdw"
	"github.com/bisegni/rowfdw/pkg/options"
)

// DefaultServer names the server that options files declare implicitly.
const DefaultServer = "default"

// Catalog manages the declared foreign servers and tables.
type Catalog struct {
	servers map[string]options.Options
	tables  map[string]*ForeignTable
	source  fdw.RowSource
	opts    []fdw.Option
	mu      sync.RWMutex
}

// NewCatalog creates a new empty catalog whose tables read from source.
func NewCatalog(source fdw.RowSource, opts ...fdw.Option) *Catalog {
	return &Catalog{
		servers: make(map[string]options.Options),
		tables:  make(map[string]*ForeignTable),
		source:  source,
		opts:    opts,
	}
}

// NewCatalogFromFile declares the default server and every table of an
// options file.
func NewCatalogFromFile(f *options.File, source fdw.RowSource, opts ...fdw.Option) *Catalog {
	c := NewCatalog(source, opts...)
	c.RegisterServer(DefaultServer, f.Server)
	for name, tc := range f.Tables {
		c.RegisterTable(name, NewForeignTable(name, source, f.Server, tc.Options, toColumns(tc.Columns), opts...))
	}
	return c
}

// RegisterServer adds or replaces a server's options.
func (c *Catalog) RegisterServer(name string, opts options.Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.servers[name] = opts
}

// RegisterTable adds a table to the catalog
func (c *Catalog) RegisterTable(name string, t *ForeignTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[name] = t
}

// GetServer retrieves a server's options by name
func (c *Catalog) GetServer(name string) (options.Options, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.servers[name]
	if !ok {
		return nil, fmt.Errorf("server '%s' not found", name)
	}
	return s, nil
}

// GetTable retrieves a table by name
func (c *Catalog) GetTable(name string) (*ForeignTable, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("table '%s' not found", name)
	}
	return t, nil
}

// ResolveTable is GetTable typed as a Table, for query planning.
func (c *Catalog) ResolveTable(name string) (Table, error) {
	t, err := c.GetTable(name)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// TableNames returns the declared table names, sorted.
func (c *Catalog) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply executes a parsed CREATE statement against the catalog. A table must
// name a server that is already declared.
func (c *Catalog) Apply(stmt ddl.Statement) error {
	switch {
	case stmt.Server != nil:
		c.RegisterServer(stmt.Server.Name, stmt.Server.Options)
		return nil
	case stmt.Table != nil:
		def := stmt.Table
		server, err := c.GetServer(def.Server)
		if err != nil {
			return fmt.Errorf("create foreign table '%s': %w", def.Name, err)
		}
		c.RegisterTable(def.Name, NewForeignTable(def.Name, c.source, server, def.Options, toColumns(def.Columns), c.opts...))
		return nil
	default:
		return fmt.Errorf("empty statement")
	}
}

func toColumns(cfg []options.ColumnConfig) []fdw.Column {
	cols := make([]fdw.Column, len(cfg))
	for i, c := range cfg {
		cols[i] = fdw.Column{Name: c.Name, Type: c.Type}
	}
	return cols
}
