package stream

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
	"golang.org/x/net/websocket"
)

// DefaultBaudRate is used when a serial URL doesn't specify baud.
const DefaultBaudRate = 115200

// Open creates a Port from a URL:
//
//	serial:///dev/ttyUSB0?baud=115200
//	tcp://host:port
//	ws://host:port/path
func Open(rawURL string) (*Port, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid stream URL")
	}
	switch u.Scheme {
	case "serial":
		return openSerial(u)
	case "tcp":
		conn, err := net.DialTimeout("tcp", u.Host, 5*time.Second)
		if err != nil {
			return nil, errors.Wrapf(err, "dial %s", u.Host)
		}
		return NewPort(rawURL, conn), nil
	case "ws", "wss":
		origin := "http://localhost/"
		if o := u.Query().Get("origin"); o != "" {
			origin = o
		}
		conn, err := websocket.Dial(rawURL, "", origin)
		if err != nil {
			return nil, errors.Wrapf(err, "dial %s", rawURL)
		}
		conn.PayloadType = websocket.BinaryFrame
		return NewPort(rawURL, conn), nil
	default:
		return nil, errors.Errorf("unknown stream URL scheme: %q", u.Scheme)
	}
}

func openSerial(u *url.URL) (*Port, error) {
	name := u.Path
	if name == "" {
		name = u.Opaque
	}
	if name == "" {
		return nil, errors.New("serial device not specified")
	}
	baud := DefaultBaudRate
	if val := u.Query().Get("baud"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid baud %q", val)
		}
		baud = n
	}
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	return NewPort(name, port), nil
}
