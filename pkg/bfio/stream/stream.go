// Package stream provides the byte transports a runway sends chunks over.
package stream

import (
	"errors"
	"io"
	"sync"
)

// Stream is the byte transport consumed by a runway.
// None of the methods block.
type Stream interface {
	// Available returns the number of bytes ready to read.
	Available() int
	// ReadByte reads one received byte.
	ReadByte() (byte, error)
	// WriteByte sends one byte.
	WriteByte(byte) error
}

// ErrEmpty is returned by ReadByte when nothing was received.
var ErrEmpty = errors.New("no byte available")

// DefaultBufferSize is the receive buffer size of a stream.
const DefaultBufferSize = 4096

// rxBuffer is the receive side shared by a producer goroutine and the tick.
type rxBuffer struct {
	lock    sync.Mutex
	buf     []byte
	limit   int
	dropped uint64
	err     error
}

func (b *rxBuffer) push(data ...byte) {
	b.lock.Lock()
	defer b.lock.Unlock()
	room := b.limit - len(b.buf)
	if room < len(data) {
		if room < 0 {
			room = 0
		}
		b.dropped += uint64(len(data) - room)
		data = data[:room]
	}
	b.buf = append(b.buf, data...)
}

func (b *rxBuffer) fail(err error) {
	b.lock.Lock()
	if b.err == nil {
		b.err = err
	}
	b.lock.Unlock()
}

func (b *rxBuffer) available() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.buf)
}

func (b *rxBuffer) readByte() (byte, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if len(b.buf) == 0 {
		if b.err != nil {
			return 0, b.err
		}
		return 0, ErrEmpty
	}
	v := b.buf[0]
	b.buf = b.buf[1:]
	if len(b.buf) == 0 {
		b.buf = b.buf[:0:0]
	}
	return v, nil
}

func (b *rxBuffer) status() (dropped uint64, err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.dropped, b.err
}

// PipeEnd is one side of an in-memory crossed pipe.
type PipeEnd struct {
	rx   *rxBuffer
	peer *PipeEnd

	lock   sync.Mutex
	closed bool
}

// Pipe creates two connected streams: bytes written to one are read from the other.
func Pipe() (*PipeEnd, *PipeEnd) {
	a := &PipeEnd{rx: &rxBuffer{limit: DefaultBufferSize}}
	b := &PipeEnd{rx: &rxBuffer{limit: DefaultBufferSize}}
	a.peer, b.peer = b, a
	return a, b
}

// Available implements Stream.
func (p *PipeEnd) Available() int {
	return p.rx.available()
}

// ReadByte implements Stream.
func (p *PipeEnd) ReadByte() (byte, error) {
	return p.rx.readByte()
}

// WriteByte implements Stream.
func (p *PipeEnd) WriteByte(v byte) error {
	p.lock.Lock()
	closed := p.closed
	p.lock.Unlock()
	if closed {
		return io.ErrClosedPipe
	}
	p.peer.rx.push(v)
	return nil
}

// Inject delivers raw bytes to this end as if the peer sent them.
func (p *PipeEnd) Inject(data ...byte) {
	p.rx.push(data...)
}

// Close stops writing and makes the peer see io.EOF once drained.
func (p *PipeEnd) Close() error {
	p.lock.Lock()
	p.closed = true
	p.lock.Unlock()
	p.peer.rx.fail(io.EOF)
	return nil
}
