package bfio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataRoundTrip(t *testing.T) {
	testCases := []struct {
		val  interface{}
		typ  DataType
		size int
	}{
		{true, Bool, 1},
		{false, Bool, 1},
		{uint8(255), UnsignedChar, 1},
		{int8(-128), Char, 1},
		{uint16(0xbeef), UnsignedShort, 2},
		{int16(-1234), Short, 2},
		{uint32(0xdeadbeef), UnsignedInt, 4},
		{int32(math.MinInt32), Int, 4},
		{uint(123456789), UnsignedLong, 8},
		{int(-1), Long, 8},
		{uint64(math.MaxUint64), UnsignedLongLong, 8},
		{int64(math.MinInt64), LongLong, 8},
		{float32(3.25), Float, 4},
		{math.Pi, Double, 8},
		{"gamepad", String, 7},
		{"", String, 0},
	}
	for _, tc := range testCases {
		typ, err := ToType(tc.val)
		require.NoError(t, err)
		require.Equal(t, tc.typ, typ)
		b, err := Encode(tc.val)
		require.NoError(t, err)
		require.Len(t, b, tc.size)
		v, err := Decode(tc.typ, b)
		require.NoError(t, err)
		require.Equal(t, tc.val, v)
	}
}

func TestDataLittleEndian(t *testing.T) {
	b, err := Encode(uint32(0x01020304))
	require.NoError(t, err)
	require.Equal(t, []byte{4, 3, 2, 1}, b)
	// long is always 8 bytes.
	b, err = Encode(int(1))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, b)
}

func TestDataShortBuffer(t *testing.T) {
	buf := []byte{0xaa, 0xaa, 0xaa}
	n, err := ToBytes(uint32(7), buf)
	require.Equal(t, Failed, KindOf(err))
	require.Zero(t, n)
	require.Equal(t, []byte{0xaa, 0xaa, 0xaa}, buf)

	var v uint64
	require.Equal(t, Failed, KindOf(ToData(&v, buf)))
	require.Zero(t, v)
}

func TestDataUnsupported(t *testing.T) {
	_, err := ToType(struct{}{})
	require.Equal(t, Incompatibility, KindOf(err))
	_, err = GetArraySize(LongDouble)
	require.Equal(t, Incompatibility, KindOf(err))
	_, err = GetArraySize(String)
	require.Equal(t, Bypassed, KindOf(err))
	n, err := GetArraySize(Double)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	var i32 int32
	require.Equal(t, Incompatibility, KindOf(ToData(i32, []byte{1, 2, 3, 4})))
	require.Equal(t, Incompatibility, KindOf(ToData(int(0), make([]byte, 8))))
	require.Equal(t, Incompatibility, KindOf(ToData([]byte{}, []byte{1})))
	require.Equal(t, Incompatibility, KindOf(ToData(new(complex64), make([]byte, 8))))
	require.Zero(t, i32)
	typ, err := ParseDataType("ushort")
	require.NoError(t, err)
	require.Equal(t, UnsignedShort, typ)
}
