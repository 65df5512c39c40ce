package cell

import (
	"fmt"
	"strings"
)

// Type is the declared type of a target column.
type Type int

const (
	TypeUnknown Type = iota
	TypeBool
	TypeString
	TypeI32
	TypeI64
	TypeTimestamp
	TypeJSON

	// Engine types this source does not produce. Columns declared with them
	// always read as null.
	TypeI8
	TypeI16
	TypeF32
	TypeF64
	TypeNumeric
	TypeDate
	TypeUUID
)

var typeNames = map[Type]string{
	TypeUnknown:   "unknown",
	TypeBool:      "bool",
	TypeString:    "text",
	TypeI32:       "int4",
	TypeI64:       "int8",
	TypeTimestamp: "timestamp",
	TypeJSON:      "json",
	TypeI8:        "char",
	TypeI16:       "int2",
	TypeF32:       "float4",
	TypeF64:       "float8",
	TypeNumeric:   "numeric",
	TypeDate:      "date",
	TypeUUID:      "uuid",
}

var typeAliases = map[string]Type{
	"bool":             TypeBool,
	"boolean":          TypeBool,
	"text":             TypeString,
	"varchar":          TypeString,
	"string":           TypeString,
	"int":              TypeI32,
	"int4":             TypeI32,
	"integer":          TypeI32,
	"i32":              TypeI32,
	"bigint":           TypeI64,
	"int8":             TypeI64,
	"i64":              TypeI64,
	"timestamp":        TypeTimestamp,
	"timestamptz":      TypeTimestamp,
	"json":             TypeJSON,
	"jsonb":            TypeJSON,
	"char":             TypeI8,
	"smallint":         TypeI16,
	"int2":             TypeI16,
	"real":             TypeF32,
	"float4":           TypeF32,
	"double":           TypeF64,
	"float8":           TypeF64,
	"double precision": TypeF64,
	"numeric":          TypeNumeric,
	"decimal":          TypeNumeric,
	"date":             TypeDate,
	"uuid":             TypeUUID,
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType maps a SQL type name to a Type. Names are case-insensitive.
func ParseType(name string) (Type, error) {
	key := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if t, ok := typeAliases[key]; ok {
		return t, nil
	}
	return TypeUnknown, fmt.Errorf("unknown column type '%s'", name)
}

// MarshalYAML and UnmarshalYAML let column types appear by name in options files.
func (t Type) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *Type) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
