package bfio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkRoundTrip(t *testing.T) {
	for _, ct := range []ChunkType{ByteChunk, DivChunk, StartChunk, CheckChunk} {
		for b := 0; b < 256; b++ {
			c, err := NewChunk(byte(b), ct)
			require.NoError(t, err)
			typ, val, err := c.Decode()
			require.NoError(t, err)
			require.Equal(t, ct, typ)
			require.Equal(t, byte(b), val)
		}
	}
}

func TestChunkWire(t *testing.T) {
	for c := Chunk(0); c <= MaxChunk; c++ {
		b0, b1 := c.ToWire()
		require.True(t, b0 <= 3)
		back, err := FromWire(b0, b1)
		require.NoError(t, err)
		require.Equal(t, c, back)
	}
	_, err := FromWire(4, 0)
	require.Equal(t, Incompatibility, KindOf(err))
}

func TestChunkInvalid(t *testing.T) {
	_, err := NewChunk(1, ChunkType(100))
	require.Equal(t, Failed, KindOf(err))
	_, _, err = Chunk(1024).Decode()
	require.Equal(t, Incompatibility, KindOf(err))
	require.Equal(t, "Start(7)", Start(7).String())
}
