package bfio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DataType enumerates the scalar kinds carried in segments.
type DataType byte

// Supported data types. Widths follow a 64-bit reference architecture.
const (
	Bool DataType = iota
	UnsignedChar
	Char
	UnsignedShort
	Short
	UnsignedInt
	Int
	UnsignedLong
	Long
	UnsignedLongLong
	LongLong
	Float
	Double
	LongDouble
	String
)

var dataTypeNames = [...]string{
	Bool:             "bool",
	UnsignedChar:     "uchar",
	Char:             "char",
	UnsignedShort:    "ushort",
	Short:            "short",
	UnsignedInt:      "uint",
	Int:              "int",
	UnsignedLong:     "ulong",
	Long:             "long",
	UnsignedLongLong: "ulonglong",
	LongLong:         "longlong",
	Float:            "float",
	Double:           "double",
	LongDouble:       "longdouble",
	String:           "string",
}

var dataTypeWidths = [...]int{
	Bool:             1,
	UnsignedChar:     1,
	Char:             1,
	UnsignedShort:    2,
	Short:            2,
	UnsignedInt:      4,
	Int:              4,
	UnsignedLong:     8,
	Long:             8,
	UnsignedLongLong: 8,
	LongLong:         8,
	Float:            4,
	Double:           8,
}

// String implements fmt.Stringer.
func (t DataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("DataType(%d)", byte(t))
}

// ParseDataType resolves a name produced by DataType.String.
func ParseDataType(name string) (DataType, error) {
	for n, s := range dataTypeNames {
		if s == name {
			return DataType(n), nil
		}
	}
	return 0, Errorf(Failed, "data.parse", "unknown type %q", name)
}

// GetArraySize returns the fixed serialized width of a type.
// String has no fixed width and returns Bypassed, LongDouble is Incompatibility.
func GetArraySize(t DataType) (int, error) {
	switch {
	case t == String:
		return 0, Errorf(Bypassed, "data.size", "string has no fixed width")
	case t == LongDouble:
		return 0, Errorf(Incompatibility, "data.size", "long double is not supported")
	case int(t) < len(dataTypeWidths):
		return dataTypeWidths[t], nil
	}
	return 0, Errorf(Incompatibility, "data.size", "unknown type %d", byte(t))
}

// ToType maps a Go value to its DataType.
// Platform sized int and uint map to Long and UnsignedLong.
func ToType(v interface{}) (DataType, error) {
	switch v.(type) {
	case bool:
		return Bool, nil
	case uint8:
		return UnsignedChar, nil
	case int8:
		return Char, nil
	case uint16:
		return UnsignedShort, nil
	case int16:
		return Short, nil
	case uint32:
		return UnsignedInt, nil
	case int32:
		return Int, nil
	case uint:
		return UnsignedLong, nil
	case int:
		return Long, nil
	case uint64:
		return UnsignedLongLong, nil
	case int64:
		return LongLong, nil
	case float32:
		return Float, nil
	case float64:
		return Double, nil
	case string:
		return String, nil
	}
	return 0, Errorf(Incompatibility, "data.type", "unsupported value %T", v)
}

// SizeOf returns the serialized width of a value.
func SizeOf(v interface{}) (int, error) {
	if s, ok := v.(string); ok {
		return len(s), nil
	}
	t, err := ToType(v)
	if err != nil {
		return 0, err
	}
	return GetArraySize(t)
}

// ToBytes serializes v little-endian into buf and returns the width used.
// Nothing is written when buf is too small.
func ToBytes(v interface{}, buf []byte) (int, error) {
	size, err := SizeOf(v)
	if err != nil {
		return 0, err
	}
	if len(buf) < size {
		return 0, Errorf(Failed, "data.tobytes", "%T needs %d bytes, buffer has %d", v, size, len(buf))
	}
	le := binary.LittleEndian
	switch val := v.(type) {
	case bool:
		buf[0] = 0
		if val {
			buf[0] = 1
		}
	case uint8:
		buf[0] = val
	case int8:
		buf[0] = byte(val)
	case uint16:
		le.PutUint16(buf, val)
	case int16:
		le.PutUint16(buf, uint16(val))
	case uint32:
		le.PutUint32(buf, val)
	case int32:
		le.PutUint32(buf, uint32(val))
	case uint:
		le.PutUint64(buf, uint64(val))
	case int:
		le.PutUint64(buf, uint64(val))
	case uint64:
		le.PutUint64(buf, val)
	case int64:
		le.PutUint64(buf, uint64(val))
	case float32:
		le.PutUint32(buf, math.Float32bits(val))
	case float64:
		le.PutUint64(buf, math.Float64bits(val))
	case string:
		copy(buf, val)
	}
	return size, nil
}

// Encode serializes v into a new buffer.
func Encode(v interface{}) ([]byte, error) {
	size, err := SizeOf(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err = ToBytes(v, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ToData deserializes buf into the value pointed to by out.
// A string consumes the whole buffer.
func ToData(out interface{}, buf []byte) error {
	if s, ok := out.(*string); ok {
		*s = string(buf)
		return nil
	}
	v, ok := deref(out)
	if !ok {
		return Errorf(Incompatibility, "data.todata", "unsupported output %T", out)
	}
	size, err := SizeOf(v)
	if err != nil {
		return err
	}
	if len(buf) < size {
		return Errorf(Failed, "data.todata", "%T needs %d bytes, got %d", out, size, len(buf))
	}
	le := binary.LittleEndian
	switch p := out.(type) {
	case *bool:
		*p = buf[0] != 0
	case *uint8:
		*p = buf[0]
	case *int8:
		*p = int8(buf[0])
	case *uint16:
		*p = le.Uint16(buf)
	case *int16:
		*p = int16(le.Uint16(buf))
	case *uint32:
		*p = le.Uint32(buf)
	case *int32:
		*p = int32(le.Uint32(buf))
	case *uint:
		*p = uint(le.Uint64(buf))
	case *int:
		*p = int(le.Uint64(buf))
	case *uint64:
		*p = le.Uint64(buf)
	case *int64:
		*p = int64(le.Uint64(buf))
	case *float32:
		*p = math.Float32frombits(le.Uint32(buf))
	case *float64:
		*p = math.Float64frombits(le.Uint64(buf))
	default:
		return Errorf(Incompatibility, "data.todata", "unsupported output %T", out)
	}
	return nil
}

// Decode deserializes buf as a value of type t.
func Decode(t DataType, buf []byte) (interface{}, error) {
	var out interface{}
	switch t {
	case Bool:
		out = new(bool)
	case UnsignedChar:
		out = new(uint8)
	case Char:
		out = new(int8)
	case UnsignedShort:
		out = new(uint16)
	case Short:
		out = new(int16)
	case UnsignedInt:
		out = new(uint32)
	case Int:
		out = new(int32)
	case UnsignedLong:
		out = new(uint)
	case Long:
		out = new(int)
	case UnsignedLongLong:
		out = new(uint64)
	case LongLong:
		out = new(int64)
	case Float:
		out = new(float32)
	case Double:
		out = new(float64)
	case String:
		out = new(string)
	default:
		return nil, Errorf(Incompatibility, "data.decode", "type %s not supported", t)
	}
	if err := ToData(out, buf); err != nil {
		return nil, err
	}
	v, _ := deref(out)
	return v, nil
}

func deref(p interface{}) (interface{}, bool) {
	switch v := p.(type) {
	case *bool:
		return *v, true
	case *uint8:
		return *v, true
	case *int8:
		return *v, true
	case *uint16:
		return *v, true
	case *int16:
		return *v, true
	case *uint32:
		return *v, true
	case *int32:
		return *v, true
	case *uint:
		return *v, true
	case *int:
		return *v, true
	case *uint64:
		return *v, true
	case *int64:
		return *v, true
	case *float32:
		return *v, true
	case *float64:
		return *v, true
	case *string:
		return *v, true
	}
	return p, false
}
