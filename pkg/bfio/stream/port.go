package stream

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Port adapts a blocking io.ReadWriter (serial port, socket) to Stream.
// Received bytes are buffered by a background reader started with Run.
type Port struct {
	Name       string
	ReadWriter io.ReadWriter

	rx        rxBuffer
	writeLock sync.Mutex
}

// NewPort wraps rw.
func NewPort(name string, rw io.ReadWriter) *Port {
	return &Port{
		Name:       name,
		ReadWriter: rw,
		rx:         rxBuffer{limit: DefaultBufferSize},
	}
}

// Available implements Stream.
func (p *Port) Available() int {
	return p.rx.available()
}

// ReadByte implements Stream.
func (p *Port) ReadByte() (byte, error) {
	return p.rx.readByte()
}

// WriteByte implements Stream.
func (p *Port) WriteByte(v byte) error {
	p.writeLock.Lock()
	defer p.writeLock.Unlock()
	if _, err := p.ReadWriter.Write([]byte{v}); err != nil {
		return errors.Wrapf(err, "write %s", p.Name)
	}
	return nil
}

// Dropped returns the number of bytes lost to a full receive buffer.
func (p *Port) Dropped() uint64 {
	dropped, _ := p.rx.status()
	return dropped
}

// Err returns the error which stopped the reader.
func (p *Port) Err() error {
	_, err := p.rx.status()
	return err
}

// Run implements Runnable. It reads until ctx is done or the reader fails.
func (p *Port) Run(ctx context.Context) error {
	defer p.Close()
	dataCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go p.readLoop(subCtx, dataCh, errCh)
	for {
		select {
		case data := <-dataCh:
			p.rx.push(data...)
		case err := <-errCh:
			glog.Warningf("port %s: %v", p.Name, err)
			p.rx.fail(err)
			return errors.Wrapf(err, "read %s", p.Name)
		case <-ctx.Done():
			p.rx.fail(io.EOF)
			return ctx.Err()
		}
	}
}

func (p *Port) readLoop(ctx context.Context, dataCh chan []byte, errCh chan error) {
	buf := make([]byte, 256)
	for {
		n, err := p.ReadWriter.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case dataCh <- data:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

// Close implements io.Closer.
func (p *Port) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
