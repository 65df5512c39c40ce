package query

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Field is a selected column with its output name.
type Field struct {
	Column string
	Alias  string
}

func (f Field) String() string {
	if f.Alias != "" && f.Alias != f.Column {
		return f.Column + " AS " + f.Alias
	}
	return f.Column
}

// SelectQuery is a parsed SELECT over one foreign table.
type SelectQuery struct {
	Fields    []Field    // empty for SELECT *
	FromTable string
	Filter    Expression // nil without WHERE
	Limit     int        // -1 for no limit
	Explain   bool
}

// Star reports whether the query selects every declared column.
func (q *SelectQuery) Star() bool {
	return len(q.Fields) == 0
}

// Lexer definition
var (
	sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Keyword", Pattern: `(?i)\b(EXPLAIN|SELECT|FROM|WHERE|LIMIT|AS|AND|OR|NOT|IS|NULL|TRUE|FALSE|CONTAINS)\b`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`},
		{Name: "String", Pattern: `'(?:[^']|'')*'`},
		{Name: "Operator", Pattern: `>=|<=|!=|<>|[=<>]`},
		{Name: "Punct", Pattern: `[(),*;]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	sqlParser = participle.MustBuild[ASTSelect](
		participle.Lexer(sqlLexer),
		participle.CaseInsensitive("Keyword"),
		participle.Elide("Whitespace"),
	)
)

// ParseQuery parses a SELECT string using Participle
func ParseQuery(input string) (*SelectQuery, error) {
	input = strings.TrimSuffix(strings.TrimSpace(input), ";")
	if input == "" {
		return nil, fmt.Errorf("empty query")
	}

	ast, err := sqlParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return ast.ToSelectQuery()
}

// IsQuery reports whether input starts like a statement ParseQuery accepts.
func IsQuery(input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}
	return strings.EqualFold(fields[0], "SELECT") || strings.EqualFold(fields[0], "EXPLAIN")
}
