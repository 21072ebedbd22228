package graphql

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// CoerceInt converts an argument or variable value to an int.
// It accepts the integer kinds, integral floats (JSON numbers decode to float64),
// json.Number and numeric strings. Values outside the 32-bit range GraphQL allows
// for Int are rejected.
func CoerceInt(v interface{}) (int, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, fmt.Errorf("Int cannot represent non-integer value: %v", x)
		}
		if x > math.MaxInt32 || x < math.MinInt32 {
			return 0, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", x)
		}
		n = int64(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("Int cannot represent non-integer value: %s", x)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("Int cannot represent non-integer value: %q", x)
		}
		n = i
	default:
		return 0, fmt.Errorf("Int cannot represent value of type %T", v)
	}

	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", n)
	}
	return int(n), nil
}

// IntArg returns the named argument as an int. The bool is false when the
// argument is absent or null.
func IntArg(args map[string]interface{}, name string) (int, bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, false, nil
	}
	n, err := CoerceInt(v)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// StringArg returns the named argument as a string. Absent or null yields "".
func StringArg(args map[string]interface{}, name string) (string, bool) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// serializeScalar converts a resolved value to the JSON representation of a
// built-in scalar. Custom scalars pass through unchanged.
func serializeScalar(typeName string, v interface{}) (interface{}, error) {
	switch typeName {
	case "Int":
		return CoerceInt(v)
	case "Float":
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case json.Number:
			return x.Float64()
		default:
			if n, err := CoerceInt(v); err == nil {
				return float64(n), nil
			}
			return nil, fmt.Errorf("Float cannot represent value of type %T", v)
		}
	case "String":
		switch x := v.(type) {
		case string:
			return x, nil
		case fmt.Stringer:
			return x.String(), nil
		case bool:
			return strconv.FormatBool(x), nil
		default:
			if n, err := CoerceInt(v); err == nil {
				return strconv.Itoa(n), nil
			}
			return nil, fmt.Errorf("String cannot represent value of type %T", v)
		}
	case "Boolean":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("Boolean cannot represent value of type %T", v)
		}
		return b, nil
	case "ID":
		switch x := v.(type) {
		case string:
			return x, nil
		default:
			if n, err := CoerceInt(v); err == nil {
				return strconv.Itoa(n), nil
			}
			return nil, fmt.Errorf("ID cannot represent value of type %T", v)
		}
	default:
		return v, nil
	}
}
