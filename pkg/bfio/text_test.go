package bfio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	testCases := []struct {
		t    DataType
		text string
		want interface{}
	}{
		{Bool, "true", true},
		{UnsignedChar, "0x2a", uint8(42)},
		{Char, "-5", int8(-5)},
		{UnsignedShort, "65535", uint16(65535)},
		{Int, "-100000", int32(-100000)},
		{UnsignedLong, "7", uint(7)},
		{Long, "-7", -7},
		{UnsignedLongLong, "202305091044", uint64(202305091044)},
		{Float, "0.5", float32(0.5)},
		{Double, "1.25", 1.25},
		{String, "hello world", "hello world"},
	}
	for _, tc := range testCases {
		t.Run(tc.t.String()+"/"+tc.text, func(t *testing.T) {
			v, err := ParseValue(tc.t, tc.text)
			require.NoError(t, err)
			require.Equal(t, tc.want, v)
			require.Equal(t, tc.t, mustType(t, v))
		})
	}
}

func mustType(t *testing.T, v interface{}) DataType {
	typ, err := ToType(v)
	require.NoError(t, err)
	return typ
}

func TestParseValueErrors(t *testing.T) {
	_, err := ParseValue(UnsignedChar, "256")
	require.Equal(t, Failed, KindOf(err))
	_, err = ParseValue(Bool, "maybe")
	require.Equal(t, Failed, KindOf(err))
	_, err = ParseValue(LongDouble, "1")
	require.Equal(t, Incompatibility, KindOf(err))
}

func TestFormatValues(t *testing.T) {
	require.Equal(t, []string{"true", "255", "-3", "0.5", "joystick"},
		FormatValues([]interface{}{true, uint8(255), int16(-3), float32(0.5), "joystick"}))
}
