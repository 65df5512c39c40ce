// Package ddl parses the statements that declare foreign servers and tables:
//
//	CREATE SERVER huruli OPTIONS (api_url 'https://fdw.huruli.dev', api_key 'secret');
//	CREATE FOREIGN TABLE people (id bigint, name text, meta jsonb)
//	  SERVER huruli OPTIONS (object 'people');
//
// Keywords are case-insensitive. Identifiers may be double-quoted and option
// values are single-quoted strings.
package ddl

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/bisegni/rowfdw/pkg/cell"
	"github.com/bisegni/rowfdw/pkg/options"
)

// ServerDef is a parsed CREATE SERVER.
type ServerDef struct {
	Name    string
	Wrapper string
	Options options.Options
}

// TableDef is a parsed CREATE FOREIGN TABLE.
type TableDef struct {
	Name    string
	Server  string
	Columns []options.ColumnConfig
	Options options.Options
}

// Statement holds exactly one of Server or Table.
type Statement struct {
	Server *ServerDef
	Table  *TableDef
}

var (
	ddlLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `--[^\n]*`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"`},
		{Name: "String", Pattern: `'(?:[^']|'')*'`},
		{Name: "Punct", Pattern: `[(),;]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	ddlParser = participle.MustBuild[astScript](
		participle.Lexer(ddlLexer),
		participle.CaseInsensitive("Ident"),
		participle.Elide("Whitespace", "Comment"),
	)
)

// Parse parses a script of ';'-separated statements.
func Parse(input string) ([]Statement, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty statement")
	}

	ast, err := ddlParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	stmts := make([]Statement, 0, len(ast.Statements))
	for _, s := range ast.Statements {
		stmt, err := s.toStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// IsDDL reports whether input looks like a statement Parse understands.
func IsDDL(input string) bool {
	fields := strings.Fields(input)
	return len(fields) > 0 && strings.EqualFold(fields[0], "CREATE")
}

func (s *astStatement) toStatement() (Statement, error) {
	if s.Server != nil {
		return Statement{Server: &ServerDef{
			Name:    ident(s.Server.Name),
			Wrapper: ident(s.Server.Wrapper),
			Options: toOptions(s.Server.Options),
		}}, nil
	}

	t := s.Table
	def := &TableDef{
		Name:    ident(t.Name),
		Server:  ident(t.Server),
		Options: toOptions(t.Options),
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		name := ident(c.Name)
		if seen[name] {
			return Statement{}, fmt.Errorf("table '%s': duplicate column '%s'", def.Name, name)
		}
		seen[name] = true

		typ, err := cell.ParseType(strings.Join(c.Type, " "))
		if err != nil {
			return Statement{}, fmt.Errorf("table '%s', column '%s': %w", def.Name, name, err)
		}
		def.Columns = append(def.Columns, options.ColumnConfig{Name: name, Type: typ})
	}
	return Statement{Table: def}, nil
}

func toOptions(opts []*astOption) options.Options {
	out := options.Options{}
	for _, o := range opts {
		out[ident(o.Key)] = unquote(o.Value)
	}
	return out
}

// ident strips double quotes from a quoted identifier.
func ident(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

// unquote strips single quotes from a string literal.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], `''`, `'`)
	}
	return s
}
