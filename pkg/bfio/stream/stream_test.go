package stream

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPipe(t *testing.T) {
	a, b := Pipe()
	require.NoError(t, a.WriteByte(1))
	require.NoError(t, a.WriteByte(2))
	require.Equal(t, 0, a.Available())
	require.Equal(t, 2, b.Available())
	v, err := b.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(1), v)
	v, err = b.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(2), v)
	_, err = b.ReadByte()
	require.Equal(t, ErrEmpty, err)

	b.Inject(9)
	require.NoError(t, a.Close())
	require.Equal(t, io.ErrClosedPipe, a.WriteByte(3))
	v, err = b.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(9), v)
	_, err = b.ReadByte()
	require.Equal(t, io.EOF, err)
}

type testReadWriter struct {
	io.Reader
	bytes.Buffer
}

func (rw *testReadWriter) Read(p []byte) (int, error) {
	return rw.Reader.Read(p)
}

func TestPort(t *testing.T) {
	rw := &testReadWriter{Reader: bytes.NewReader([]byte{0, 1, 3, 4})}
	port := NewPort("test", rw)
	err := port.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, io.EOF, port.Err())
	require.Equal(t, 4, port.Available())
	for _, expected := range []byte{0, 1, 3, 4} {
		v, err := port.ReadByte()
		require.NoError(t, err)
		require.Equal(t, expected, v)
	}
	_, err = port.ReadByte()
	require.Equal(t, io.EOF, err)

	require.NoError(t, port.WriteByte(7))
	require.Equal(t, []byte{7}, rw.Buffer.Bytes())
}

func TestOpenUnknownScheme(t *testing.T) {
	_, err := Open("carrier-pigeon://home")
	require.Error(t, err)
	_, err = Open("serial://")
	require.Error(t, err)
}
