package query

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/bisegni/rowfdw/pkg/cell"
	"github.com/bisegni/rowfdw/pkg/database"
	"github.com/bisegni/rowfdw/pkg/value"
)

// Expression is a boolean expression evaluated against a row on the host.
type Expression interface {
	Evaluate(row database.Row) bool
	// Columns lists the columns the expression reads, in first-use order.
	Columns() []string
	String() string
}

// Condition compares a column with a literal. A null cell, or a literal
// of a kind the cell cannot be compared with, never matches.
type Condition struct {
	Column   string
	Operator string
	Value    value.Value
}

func (c *Condition) Evaluate(row database.Row) bool {
	got, err := row.Get(c.Column)
	if err != nil || got.IsNull() {
		return false
	}
	return compare(got, c.Operator, c.Value)
}

func (c *Condition) Columns() []string { return []string{c.Column} }

func (c *Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Column, c.Operator, literalString(c.Value))
}

// NullCheck is IS NULL, or IS NOT NULL when Negate is set.
type NullCheck struct {
	Column string
	Negate bool
}

func (n *NullCheck) Evaluate(row database.Row) bool {
	got, err := row.Get(n.Column)
	isNull := err != nil || got.IsNull()
	return isNull != n.Negate
}

func (n *NullCheck) Columns() []string { return []string{n.Column} }

func (n *NullCheck) String() string {
	if n.Negate {
		return n.Column + " IS NOT NULL"
	}
	return n.Column + " IS NULL"
}

// AndExpression represents Logical AND
type AndExpression struct {
	Left  Expression
	Right Expression
}

func (a *AndExpression) Evaluate(row database.Row) bool {
	return a.Left.Evaluate(row) && a.Right.Evaluate(row)
}

func (a *AndExpression) Columns() []string { return mergeColumns(a.Left.Columns(), a.Right.Columns()) }

func (a *AndExpression) String() string {
	return "(" + a.Left.String() + " AND " + a.Right.String() + ")"
}

// OrExpression represents Logical OR
type OrExpression struct {
	Left  Expression
	Right Expression
}

func (o *OrExpression) Evaluate(row database.Row) bool {
	return o.Left.Evaluate(row) || o.Right.Evaluate(row)
}

func (o *OrExpression) Columns() []string { return mergeColumns(o.Left.Columns(), o.Right.Columns()) }

func (o *OrExpression) String() string {
	return "(" + o.Left.String() + " OR " + o.Right.String() + ")"
}

// NotExpression represents Logical NOT
type NotExpression struct {
	Inner Expression
}

func (n *NotExpression) Evaluate(row database.Row) bool { return !n.Inner.Evaluate(row) }

func (n *NotExpression) Columns() []string { return n.Inner.Columns() }

func (n *NotExpression) String() string { return "NOT " + n.Inner.String() }

func mergeColumns(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, col := range b {
		seen := false
		for _, have := range out {
			if have == col {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, col)
		}
	}
	return out
}

func literalString(v value.Value) string {
	if s, ok := v.AsString(); ok {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return v.Text()
}

// compare applies op to a non-null cell and a literal.
func compare(c cell.Cell, op string, lit value.Value) bool {
	if op == "CONTAINS" {
		s, ok := lit.AsString()
		if !ok {
			return false
		}
		switch c.Kind() {
		case cell.KindString, cell.KindJSON:
			return strings.Contains(c.StringValue(), s)
		default:
			return false
		}
	}

	switch c.Kind() {
	case cell.KindBool:
		b, ok := lit.AsBool()
		if !ok || (op != "=" && op != "!=") {
			return false
		}
		return (c.BoolValue() == b) == (op == "=")
	case cell.KindString:
		s, ok := lit.AsString()
		if !ok {
			return false
		}
		return holds(strings.Compare(c.StringValue(), s), op)
	case cell.KindI32, cell.KindI64:
		n, ok := lit.AsNumber()
		if !ok {
			return false
		}
		return compareNumber(c.Int(), n, op)
	case cell.KindTimestamp:
		return compareTimestamp(c, lit, op)
	case cell.KindJSON:
		s, ok := lit.AsString()
		if !ok || (op != "=" && op != "!=") {
			return false
		}
		return (c.StringValue() == s) == (op == "=")
	default:
		return false
	}
}

// compareNumber compares an integer cell with a numeric literal exactly.
func compareNumber(i int64, literal, op string) bool {
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return false
	}
	// beyond the int64 range only the sign matters
	if f > math.MaxInt64 {
		return holds(-1, op)
	}
	if f < math.MinInt64 {
		return holds(1, op)
	}
	r, ok := new(big.Rat).SetString(literal)
	if !ok {
		return false
	}
	return holds(new(big.Rat).SetInt64(i).Cmp(r), op)
}

// compareTimestamp accepts an RFC 3339 string or a number of seconds.
func compareTimestamp(c cell.Cell, lit value.Value, op string) bool {
	if s, ok := lit.AsString(); ok {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return false
		}
		return holds(c.Time().Compare(t), op)
	}
	if n, ok := lit.AsNumber(); ok {
		secs, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return false
		}
		ms := float64(c.Int())
		want := secs * 1000
		switch {
		case ms < want:
			return holds(-1, op)
		case ms > want:
			return holds(1, op)
		default:
			return holds(0, op)
		}
	}
	return false
}

func holds(cmp int, op string) bool {
	switch op {
	case "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	default:
		return false
	}
}
