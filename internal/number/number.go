// Package number normalizes the numeric representations that JSON and YAML
// decoders produce so that values can be compared independently of their Go type.
package number

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// IsNumber reports whether value is one of the numeric types a decoder may produce.
func IsNumber(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	default:
		return false
	}
}

// ToFloat64 converts supported numeric values to float64.
func ToFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case int:
		return float64(current), true
	case int8:
		return float64(current), true
	case int16:
		return float64(current), true
	case int32:
		return float64(current), true
	case int64:
		return float64(current), true
	case uint:
		return float64(current), true
	case uint8:
		return float64(current), true
	case uint16:
		return float64(current), true
	case uint32:
		return float64(current), true
	case uint64:
		return float64(current), true
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// ToStrictInt converts integer-typed values into int.
func ToStrictInt(value any) (int, error) {
	switch current := value.(type) {
	case int:
		return current, nil
	case int8:
		return int(current), nil
	case int16:
		return int(current), nil
	case int32:
		return int(current), nil
	case int64:
		return int(current), nil
	case uint:
		return int(current), nil
	case uint8:
		return int(current), nil
	case uint16:
		return int(current), nil
	case uint32:
		return int(current), nil
	case uint64:
		return int(current), nil
	case json.Number:
		parsed, err := current.Int64()
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", current.String())
		}
		return int(parsed), nil
	default:
		return 0, fmt.Errorf("value %T is not an integer", value)
	}
}

// Key maps a number onto a comparable canonical form: int64 for integral
// values that fit, uint64 above math.MaxInt64 and float64 otherwise.
// Equal numbers of different Go types yield equal keys.
func Key(value any) (any, bool) {
	switch current := value.(type) {
	case int:
		return int64(current), true
	case int8:
		return int64(current), true
	case int16:
		return int64(current), true
	case int32:
		return int64(current), true
	case int64:
		return current, true
	case uint:
		return unsignedKey(uint64(current)), true
	case uint8:
		return int64(current), true
	case uint16:
		return int64(current), true
	case uint32:
		return int64(current), true
	case uint64:
		return unsignedKey(current), true
	case float32:
		return floatKey(float64(current)), true
	case float64:
		return floatKey(current), true
	case json.Number:
		if parsed, err := current.Int64(); err == nil {
			return parsed, true
		}
		if parsed, err := strconv.ParseUint(current.String(), 10, 64); err == nil {
			return unsignedKey(parsed), true
		}
		parsed, err := current.Float64()
		if err != nil {
			return nil, false
		}
		return floatKey(parsed), true
	default:
		return nil, false
	}
}

// Equal compares two numbers by value. It returns false when either
// argument is not a number.
func Equal(a, b any) bool {
	ka, ok := Key(a)
	if !ok {
		return false
	}
	kb, ok := Key(b)
	if !ok {
		return false
	}
	return ka == kb
}

func unsignedKey(v uint64) any {
	if v <= math.MaxInt64 {
		return int64(v)
	}
	return v
}

func floatKey(v float64) any {
	if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
		return int64(v)
	}
	return v
}
