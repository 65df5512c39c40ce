package cell

import (
	"math"
	"math/big"
	"strconv"

	"github.com/bisegni/rowfdw/pkg/value"
)

// Coerce converts a source value into a cell of type t. It never fails: any
// value that does not fit t yields a null cell and false.
func Coerce(t Type, v value.Value) (Cell, bool) {
	switch t {
	case TypeBool:
		if b, ok := v.AsBool(); ok {
			return Bool(b), true
		}
	case TypeString:
		if s, ok := v.AsString(); ok {
			return String(s), true
		}
	case TypeI32:
		if i, ok := toInt64(v); ok {
			return I32(int32(i)), true
		}
	case TypeI64:
		if i, ok := toInt64(v); ok {
			return I64(i), true
		}
	case TypeTimestamp:
		// seconds in, milliseconds out
		if i, ok := toInt64(v); ok && i <= math.MaxInt64/1000 && i >= math.MinInt64/1000 {
			return Timestamp(i * 1000), true
		}
	case TypeJSON:
		if v.Kind() == value.KindObject {
			return JSON(v.Text()), true
		}
	default:
		return Cell{}, false
	}
	return Cell{}, false
}

// toInt64 accepts a base-10 integer string or an integral JSON number.
func toInt64(v value.Value) (int64, bool) {
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	case value.KindNumber:
		lit, _ := v.AsNumber()
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return i, true
		}
		// range check on the float first keeps huge exponents out of big.Rat
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil || f < math.MinInt64 || f > math.MaxInt64 {
			return 0, false
		}
		r, ok := new(big.Rat).SetString(lit)
		if !ok || !r.IsInt() || !r.Num().IsInt64() {
			return 0, false
		}
		return r.Num().Int64(), true
	default:
		return 0, false
	}
}
