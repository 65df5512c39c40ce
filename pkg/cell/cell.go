// Package cell converts dynamic JSON values into typed column cells.
package cell

import (
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind identifies what a Cell holds. KindNull is the zero value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindString
	KindI32
	KindI64
	KindTimestamp
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindTimestamp:
		return "timestamp"
	case KindJSON:
		return "json"
	default:
		return "null"
	}
}

// Cell is one typed column value. The zero Cell is null.
type Cell struct {
	kind Kind
	b    bool
	i    int64 // I32, I64 and Timestamp (milliseconds since epoch)
	s    string
}

func Bool(b bool) Cell             { return Cell{kind: KindBool, b: b} }
func String(s string) Cell         { return Cell{kind: KindString, s: s} }
func I32(i int32) Cell             { return Cell{kind: KindI32, i: int64(i)} }
func I64(i int64) Cell             { return Cell{kind: KindI64, i: i} }
func Timestamp(ms int64) Cell      { return Cell{kind: KindTimestamp, i: ms} }
func JSON(text string) Cell        { return Cell{kind: KindJSON, s: text} }
func (c Cell) Kind() Kind          { return c.kind }
func (c Cell) IsNull() bool        { return c.kind == KindNull }
func (c Cell) BoolValue() bool     { return c.b }
func (c Cell) StringValue() string { return c.s }

// Int returns the integer payload of I32, I64 and Timestamp cells.
func (c Cell) Int() int64 { return c.i }

// Time returns the instant held by a Timestamp cell.
func (c Cell) Time() time.Time {
	return time.UnixMilli(c.i).UTC()
}

// MarshalJSON renders the cell as plain JSON. JSON cells are emitted as-is.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindBool:
		return []byte(strconv.FormatBool(c.b)), nil
	case KindString:
		return json.Marshal(c.s)
	case KindI32, KindI64:
		return []byte(strconv.FormatInt(c.i, 10)), nil
	case KindTimestamp:
		return json.Marshal(c.Time().Format("2006-01-02T15:04:05.000Z07:00"))
	case KindJSON:
		return []byte(c.s), nil
	default:
		return []byte("null"), nil
	}
}

// String renders the cell for tabular display.
func (c Cell) String() string {
	switch c.kind {
	case KindBool:
		return strconv.FormatBool(c.b)
	case KindString, KindJSON:
		return c.s
	case KindI32, KindI64:
		return strconv.FormatInt(c.i, 10)
	case KindTimestamp:
		return c.Time().Format(time.RFC3339Nano)
	default:
		return "NULL"
	}
}
