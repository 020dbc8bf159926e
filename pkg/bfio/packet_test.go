package bfio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustPlane(t *testing.T, id FunctionID, vals ...interface{}) Plane {
	var segs []Segment
	for _, v := range vals {
		seg, err := ParameterSegment(v)
		require.NoError(t, err)
		segs = append(segs, seg)
	}
	p, err := CreateFromSegments(id, 100, segs...)
	require.NoError(t, err)
	return p
}

func TestCreateFromSegments(t *testing.T) {
	p := mustPlane(t, PingID, true)
	require.Equal(t, Plane{Start(0), Div(0), Byte(1), Check(1)}, p)
	require.NoError(t, VerifyCheckSum(p))

	p = mustPlane(t, DeviceIDID, uint16(0x0102), "ab")
	require.Equal(t, Plane{Start(5), Div(0), Byte(2), Byte(1), Div(0), Byte('a'), Byte('b'), Check(2 + 1 + 'a' + 'b')}, p)

	_, err := CreateFromSegments(PingID, 3, SegmentFromBytes([]byte{1}))
	require.Equal(t, Failed, KindOf(err))
	require.True(t, errors.Is(err, ErrFailed))
}

func TestChecksumSingleFlip(t *testing.T) {
	p := mustPlane(t, StatusID, uint32(0x11223344), "status")
	require.NoError(t, VerifyCheckSum(p))
	for n := 1; n < len(p)-1; n++ {
		bad := append(Plane(nil), p...)
		bad[n] = Chunk(uint16(bad[n].Type()) + uint16(bad[n].Byte()+1))
		require.Equal(t, Failed, KindOf(VerifyCheckSum(bad)), "chunk %d", n)
	}
}

func TestTotalSize(t *testing.T) {
	testCases := []struct {
		name string
		buf  []Chunk
		size int
		kind Execution
	}{
		{"well formed", []Chunk{Start(1), Div(0), Byte(3), Check(3)}, 4, Passed},
		{"trailing chunks", []Chunk{Start(1), Check(0), Byte(9), Byte(9)}, 2, Passed},
		{"no start", []Chunk{Div(0), Byte(3), Check(3)}, 0, Incompatibility},
		{"empty", nil, 0, Incompatibility},
		{"no check", []Chunk{Start(1), Div(0), Byte(3)}, 0, Crashed},
		{"restart", []Chunk{Start(1), Start(2), Check(0)}, 0, Incompatibility},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			size, err := TotalSize(tc.buf)
			require.Equal(t, tc.kind, KindOf(err))
			require.Equal(t, tc.size, size)
		})
	}
}

func TestParameters(t *testing.T) {
	p := mustPlane(t, UniversalInfoID, uint64(42), "pad", true)
	n, err := AmountOfParameters(p)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	params, err := ParameterBytes(p)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{42, 0, 0, 0, 0, 0, 0, 0}, []byte("pad"), {1}}, params)

	_, err = BytesFromSegment(Segment{Byte(1)})
	require.Equal(t, Failed, KindOf(err))
	_, err = Parameters(Plane{Start(1), Byte(2), Check(2)})
	require.Equal(t, Failed, KindOf(err))
}

func TestFullyAnalyze(t *testing.T) {
	ids := DefaultIDTable()
	a, err := FullyAnalyze(mustPlane(t, ButtonID, uint8(3), true), ids)
	require.NoError(t, err)
	require.Equal(t, Analysis{Size: 6, Params: 2, ID: ButtonID}, a)

	_, err = FullyAnalyze(mustPlane(t, FunctionID(15)), ids)
	require.Equal(t, Incompatibility, KindOf(err))

	_, err = FullyAnalyze(Plane{Start(1), Div(0)}, ids)
	require.Equal(t, Crashed, KindOf(err))

	_, err = FullyAnalyze(Plane{Start(1), Div(0), Byte(1), Check(9)}, ids)
	require.Equal(t, Failed, KindOf(err))
}
