package bfio

import (
	"errors"
	"fmt"
)

// Execution is the outcome of a protocol operation.
type Execution int

// Execution outcomes.
const (
	// Passed means the operation succeeded. It is represented by a nil error.
	Passed Execution = iota
	// Crashed is an unexpected internal or structural failure.
	Crashed
	// Failed is an expected failure: bad input, capacity exceeded, checksum mismatch.
	Failed
	// NoConnection means the peer did not answer in time.
	NoConnection
	// Incompatibility means an unsupported ID or malformed framing.
	Incompatibility
	// Bypassed means the operation was skipped because no data is available.
	Bypassed
	// Unnecessary means there was nothing to do. It is not an error condition.
	Unnecessary
)

var executionNames = [...]string{
	Passed:          "passed",
	Crashed:         "crashed",
	Failed:          "failed",
	NoConnection:    "no connection",
	Incompatibility: "incompatibility",
	Bypassed:        "bypassed",
	Unnecessary:     "unnecessary",
}

// String implements fmt.Stringer.
func (e Execution) String() string {
	if e >= 0 && int(e) < len(executionNames) {
		return executionNames[e]
	}
	return fmt.Sprintf("execution(%d)", int(e))
}

// Error carries a non-Passed Execution.
type Error struct {
	Kind Execution
	Op   string
	Msg  string
}

// Error implements error.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

// Is matches sentinel errors of the same kind, e.g. errors.Is(err, ErrFailed).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == ""
}

// Sentinels usable with errors.Is.
var (
	ErrCrashed         = &Error{Kind: Crashed}
	ErrFailed          = &Error{Kind: Failed}
	ErrNoConnection    = &Error{Kind: NoConnection}
	ErrIncompatibility = &Error{Kind: Incompatibility}
	ErrBypassed        = &Error{Kind: Bypassed}
	ErrUnnecessary     = &Error{Kind: Unnecessary}
)

// Errorf creates an Error of the given kind for an operation.
func Errorf(kind Execution, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf recovers the Execution from an error.
// nil is Passed, foreign errors are Crashed.
func KindOf(err error) Execution {
	if err == nil {
		return Passed
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Crashed
}

// Messages reported on the device-wide error channel.
const (
	MsgFatalChunkHandling   = "Fatal error occured during chunk arrival handling"
	MsgIncorrectChunk       = "Some of the chunks received were incorrect."
	MsgIncorrectPacket      = "Some received packets were incorrect"
	MsgUnsupportedFunctions = "Failed to parse incomming packets due to undefined behaviours."
	MsgStrayChunk           = "Some stray chunks were received."
	MsgDivCounting          = "Error when counting Div Chunks"
	MsgFreeBytesInPacket    = "Detected free bytes in packet"
	MsgInternalBufferSize   = "INTERNAL BUFFER SIZE ERROR"
	MsgInternalChunkConv    = "INTERNAL CHUNK CONVERTION FAIL"
	MsgInternalByteConv     = "INTERNAL BYTE CONVERTION FAIL"
	MsgInternalPacketBuild  = "INTERNAL PACKET BUILDING FAIL"
)
