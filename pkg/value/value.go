// Package value holds the dynamic JSON node returned by the remote table API.
//
// A Value is a closed union over the six JSON kinds. It keeps the compact
// textual form it was decoded from, so object cells and non-string row
// identifiers can be rendered exactly as the remote sent them.
package value

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind identifies which JSON kind a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded JSON node. The zero Value is JSON null.
type Value struct {
	kind   Kind
	b      bool
	s      string // string content, or the literal text of a number
	items  []Value
	fields map[string]Value
	raw    []byte
}

// Null returns the JSON null value.
func Null() Value {
	return Value{kind: KindNull}
}

// NewBool returns a JSON boolean.
func NewBool(b bool) Value {
	return Value{kind: KindBool, b: b, raw: []byte(strconv.FormatBool(b))}
}

// NewString returns a JSON string.
func NewString(s string) Value {
	raw, _ := json.Marshal(s)
	return Value{kind: KindString, s: s, raw: raw}
}

// NewNumber returns a JSON number from its literal text, e.g. "42" or "42.5".
func NewNumber(literal string) (Value, error) {
	if _, err := strconv.ParseFloat(literal, 64); err != nil {
		return Value{}, fmt.Errorf("invalid number literal %q: %w", literal, err)
	}
	return Value{kind: KindNumber, s: literal, raw: []byte(literal)}, nil
}

// Parse decodes a single JSON document into a Value.
func Parse(data []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Value{}, err
	}
	return v, nil
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var buf bytes.Buffer
	if err := stdjson.Compact(&buf, data); err != nil {
		return fmt.Errorf("invalid JSON value: %w", err)
	}
	raw := buf.Bytes()
	if len(raw) == 0 {
		return fmt.Errorf("invalid JSON value: empty input")
	}

	switch raw[0] {
	case 'n':
		*v = Value{kind: KindNull, raw: raw}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return fmt.Errorf("decode boolean: %w", err)
		}
		*v = Value{kind: KindBool, b: b, raw: raw}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("decode string: %w", err)
		}
		*v = Value{kind: KindString, s: s, raw: raw}
	case '[':
		var items []Value
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("decode array: %w", err)
		}
		if items == nil {
			items = []Value{}
		}
		*v = Value{kind: KindArray, items: items, raw: raw}
	case '{':
		var fields map[string]Value
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("decode object: %w", err)
		}
		if fields == nil {
			fields = map[string]Value{}
		}
		*v = Value{kind: KindObject, fields: fields, raw: raw}
	default:
		n, err := NewNumber(string(raw))
		if err != nil {
			return err
		}
		*v = n
	}
	return nil
}

// MarshalJSON implements json.Marshaler and returns the compact text.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v.Text()), nil
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean if v is a JSON boolean.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsString returns the string content if v is a JSON string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsNumber returns the literal text if v is a JSON number.
func (v Value) AsNumber() (string, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.s, true
}

// AsArray returns the elements if v is a JSON array.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.items, true
}

// AsObject returns the members if v is a JSON object.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.fields, true
}

// Text returns the compact JSON serialization of v.
func (v Value) Text() string {
	if v.raw == nil {
		if v.kind == KindNull {
			return "null"
		}
		raw, err := json.Marshal(v.primitive())
		if err != nil {
			return "null"
		}
		return string(raw)
	}
	return string(v.raw)
}

// String renders v as a plain string: string content verbatim, any other
// kind as its JSON text.
func (v Value) String() string {
	if v.kind == KindString {
		return v.s
	}
	return v.Text()
}

func (v Value) primitive() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return stdjson.Number(v.s)
	case KindString:
		return v.s
	case KindArray:
		return v.items
	case KindObject:
		return v.fields
	default:
		return nil
	}
}
