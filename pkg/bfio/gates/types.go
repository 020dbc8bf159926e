// Package gates implements the per-function request/answer endpoints of BFIO.
//
// A gate requests through the Master terminal and answers peer requests
// through the Slave terminal. Gate status only tracks the request side:
//
//	Cleaned -> ReadyForDeparture -> JustLeft -> AwaitingArrival -> AvailableArrival -> Cleaned
//
// A request that isn't answered within the timeout fails with NoConnection
// and returns the gate to Cleaned. Nothing is retried automatically.
package gates

import (
	"fmt"
	"time"

	"github.com/robotalks/bfio.go/pkg/bfio"
)

// Status is the request side state of a gate.
type Status int

const (
	Cleaned Status = iota
	ReadyForDeparture
	AwaitingArrival
	JustLeft
	AvailableArrival
)

var statusNames = [...]string{
	Cleaned:           "cleaned",
	ReadyForDeparture: "ready for departure",
	AwaitingArrival:   "awaiting arrival",
	JustLeft:          "just left",
	AvailableArrival:  "available arrival",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// InFlight indicates a request is pending an answer.
func (s Status) InFlight() bool {
	return s == ReadyForDeparture || s == JustLeft || s == AwaitingArrival
}

// DefaultTimeout is the arrival timeout of a gate.
const DefaultTimeout = 1000 * time.Millisecond

// ErrorCode is carried by HandlingError planes.
type ErrorCode byte

// Error codes.
const (
	ErrorUnsupportedFunction ErrorCode = iota + 1
	ErrorIncorrectPlane
	ErrorDecodeFailure
	ErrorOversize
)

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	switch c {
	case ErrorUnsupportedFunction:
		return "unsupported function"
	case ErrorIncorrectPlane:
		return "incorrect plane"
	case ErrorDecodeFailure:
		return "decode failure"
	case ErrorOversize:
		return "oversize"
	}
	return fmt.Sprintf("ErrorCode(%d)", byte(c))
}

// Info is the identity exchanged by UniversalInfo.
type Info struct {
	ID            uint64
	BFIOVersion   uint64
	Type          byte
	Status        bfio.DeviceStatus
	GitRepository string
	DeviceName    string
	DeviceVersion string
}

// Host is the local device as seen by gates.
type Host interface {
	// Now returns the time of the current tick.
	Now() time.Time
	// Info describes the local device.
	Info() Info
	// ErrorMessage returns the local device-wide error message.
	ErrorMessage() string
	// ReportError sets the device-wide error status and message.
	ReportError(status bfio.DeviceStatus, msg string)
	// RequestRestart resets the protocol at the end of the current tick.
	RequestRestart()
}

// Event reports a gate transition.
type Event struct {
	ID     bfio.FunctionID
	Status Status
	Err    error
}

// Listener receives gate events. It's called inside the tick and must not block.
type Listener func(Event)
