package query

import (
	"fmt"
	"strings"

	"github.com/bisegni/rowfdw/pkg/value"
)

// AST for Participle Parser

type ASTSelect struct {
	Explain bool              `parser:"@'EXPLAIN'?"`
	Fields  []*ASTSelectField `parser:"'SELECT' @@ (',' @@)*"`
	From    string            `parser:"'FROM' (@Ident | @QuotedIdent)"`
	Where   *ASTExpression    `parser:"('WHERE' @@)?"`
	Limit   *int              `parser:"('LIMIT' @Number)?"`
}

type ASTSelectField struct {
	Star   bool   `parser:"( @'*'"`
	Column string `parser:"| (@Ident | @QuotedIdent) )"`
	Alias  string `parser:"('AS' (@Ident | @QuotedIdent))?"`
}

type ASTExpression struct {
	Or []*ASTOrCondition `parser:"@@ ('OR' @@)*"`
}

type ASTOrCondition struct {
	And []*ASTCondition `parser:"@@ ('AND' @@)*"`
}

type ASTCondition struct {
	Not     bool                `parser:"@'NOT'?"`
	Grouped *ASTExpression      `parser:"(  '(' @@ ')'"`
	Simple  *ASTSimpleCondition `parser:"| @@ )"`
}

type ASTSimpleCondition struct {
	Column string      `parser:"(@Ident | @QuotedIdent)"`
	IsNull *ASTIsNull  `parser:"( @@"`
	Op     string      `parser:"| @(Operator | 'CONTAINS')"`
	Value  *ASTLiteral `parser:"  @@ )"`
}

type ASTIsNull struct {
	Not bool `parser:"'IS' @'NOT'? 'NULL'"`
}

type ASTLiteral struct {
	Number *string `parser:"  @Number"`
	StrVal *string `parser:"| @String"`
	Bool   *string `parser:"| @('TRUE' | 'FALSE')"`
}

// Helpers

func (s *ASTSelect) ToSelectQuery() (*SelectQuery, error) {
	sq := &SelectQuery{
		FromTable: ident(s.From),
		Limit:     -1,
		Explain:   s.Explain,
	}

	for _, f := range s.Fields {
		if f.Star {
			if len(s.Fields) > 1 {
				return nil, fmt.Errorf("'*' cannot be combined with other columns")
			}
			continue
		}
		column := ident(f.Column)
		alias := ident(f.Alias)
		if alias == "" {
			alias = column
		}
		sq.Fields = append(sq.Fields, Field{Column: column, Alias: alias})
	}

	if s.Where != nil {
		expr, err := s.Where.ToExpression()
		if err != nil {
			return nil, err
		}
		sq.Filter = expr
	}

	if s.Limit != nil {
		if *s.Limit < 0 {
			return nil, fmt.Errorf("negative limit %d", *s.Limit)
		}
		sq.Limit = *s.Limit
	}
	return sq, nil
}

// Map AST to Expression interface

func (e *ASTExpression) ToExpression() (Expression, error) {
	var expr Expression
	for _, or := range e.Or {
		right, err := or.ToExpression()
		if err != nil {
			return nil, err
		}
		if expr == nil {
			expr = right
			continue
		}
		expr = &OrExpression{Left: expr, Right: right}
	}
	return expr, nil
}

func (o *ASTOrCondition) ToExpression() (Expression, error) {
	var expr Expression
	for _, and := range o.And {
		right, err := and.ToExpression()
		if err != nil {
			return nil, err
		}
		if expr == nil {
			expr = right
			continue
		}
		expr = &AndExpression{Left: expr, Right: right}
	}
	return expr, nil
}

func (c *ASTCondition) ToExpression() (Expression, error) {
	var (
		expr Expression
		err  error
	)
	switch {
	case c.Grouped != nil:
		expr, err = c.Grouped.ToExpression()
	case c.Simple != nil:
		expr, err = c.Simple.ToExpression()
	default:
		err = fmt.Errorf("empty condition")
	}
	if err != nil {
		return nil, err
	}
	if c.Not {
		expr = &NotExpression{Inner: expr}
	}
	return expr, nil
}

func (c *ASTSimpleCondition) ToExpression() (Expression, error) {
	column := ident(c.Column)
	if c.IsNull != nil {
		return &NullCheck{Column: column, Negate: c.IsNull.Not}, nil
	}

	lit, err := c.Value.ToValue()
	if err != nil {
		return nil, err
	}
	op := strings.ToUpper(c.Op)
	if op == "<>" {
		op = "!="
	}
	return &Condition{Column: column, Operator: op, Value: lit}, nil
}

func (l *ASTLiteral) ToValue() (value.Value, error) {
	switch {
	case l.Number != nil:
		return value.NewNumber(*l.Number)
	case l.StrVal != nil:
		return value.NewString(unquote(*l.StrVal)), nil
	case l.Bool != nil:
		return value.NewBool(strings.EqualFold(*l.Bool, "TRUE")), nil
	default:
		return value.Value{}, fmt.Errorf("empty literal")
	}
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
