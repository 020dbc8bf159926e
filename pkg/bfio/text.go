package bfio

import (
	"strconv"
)

// ParseValue converts text into the Go value carrying DataType t.
func ParseValue(t DataType, s string) (interface{}, error) {
	var (
		u   uint64
		i   int64
		f   float64
		err error
	)
	switch t {
	case Bool:
		var b bool
		if b, err = strconv.ParseBool(s); err == nil {
			return b, nil
		}
	case UnsignedChar:
		if u, err = strconv.ParseUint(s, 0, 8); err == nil {
			return uint8(u), nil
		}
	case Char:
		if i, err = strconv.ParseInt(s, 0, 8); err == nil {
			return int8(i), nil
		}
	case UnsignedShort:
		if u, err = strconv.ParseUint(s, 0, 16); err == nil {
			return uint16(u), nil
		}
	case Short:
		if i, err = strconv.ParseInt(s, 0, 16); err == nil {
			return int16(i), nil
		}
	case UnsignedInt:
		if u, err = strconv.ParseUint(s, 0, 32); err == nil {
			return uint32(u), nil
		}
	case Int:
		if i, err = strconv.ParseInt(s, 0, 32); err == nil {
			return int32(i), nil
		}
	case UnsignedLong:
		if u, err = strconv.ParseUint(s, 0, 64); err == nil {
			return uint(u), nil
		}
	case Long:
		if i, err = strconv.ParseInt(s, 0, 64); err == nil {
			return int(i), nil
		}
	case UnsignedLongLong:
		if u, err = strconv.ParseUint(s, 0, 64); err == nil {
			return u, nil
		}
	case LongLong:
		if i, err = strconv.ParseInt(s, 0, 64); err == nil {
			return i, nil
		}
	case Float:
		if f, err = strconv.ParseFloat(s, 32); err == nil {
			return float32(f), nil
		}
	case Double:
		if f, err = strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	case String:
		return s, nil
	default:
		return nil, Errorf(Incompatibility, "data.parse", "type %s not supported", t)
	}
	return nil, Errorf(Failed, "data.parse", "%q is not a valid %s", s, t)
}

// FormatValue renders a value produced by Decode or ParseValue.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return "?"
}

// FormatValues renders every value.
func FormatValues(vals []interface{}) []string {
	out := make([]string, len(vals))
	for n, v := range vals {
		out[n] = FormatValue(v)
	}
	return out
}
