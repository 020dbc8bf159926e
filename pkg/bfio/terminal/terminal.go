// Package terminal reassembles arriving planes chunk by chunk and
// queues the IDs of departing planes.
package terminal

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/bfio.go/pkg/bfio"
)

// Default capacities.
const (
	DefaultArrivalCapacity = 100
	DefaultTaxiwayCapacity = 20
)

// Role distinguishes the direction of traffic a terminal serves.
type Role int

const (
	// Master issues requests and receives answers.
	Master Role = iota
	// Slave receives requests and sends answers.
	Slave
)

// String implements fmt.Stringer.
func (r Role) String() string {
	if r == Slave {
		return "slave"
	}
	return "master"
}

// Mode controls what is stored from arriving planes.
type Mode int

const (
	// Regular stores every chunk.
	Regular Mode = iota
	// RejectIncoming tracks framing and checksum but stores no payload
	// and never completes a plane.
	RejectIncoming
)

// ArrivalState is the state of plane reassembly.
type ArrivalState int

const (
	Idle ArrivalState = iota
	Receiving
	Complete
)

// String implements fmt.Stringer.
func (s ArrivalState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Receiving:
		return "receiving"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("ArrivalState(%d)", int(s))
}

// Status is the arrival or departure status of a terminal.
type Status int

const (
	Initialised Status = iota
	NotEnoughSpace
	Overflowing
	DepartureAvailable
	ArrivalReady
)

var statusNames = [...]string{
	Initialised:        "initialised",
	NotEnoughSpace:     "not enough space",
	Overflowing:        "overflowing",
	DepartureAvailable: "departure available",
	ArrivalReady:       "arrival ready",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Config defines the capacities of a terminal.
type Config struct {
	ArrivalCapacity int
	TaxiwayCapacity int
}

// DefaultConfig returns the standard BFIO capacities.
func DefaultConfig() Config {
	return Config{
		ArrivalCapacity: DefaultArrivalCapacity,
		TaxiwayCapacity: DefaultTaxiwayCapacity,
	}
}

// ArrivalInfo describes the plane being received.
type ArrivalInfo struct {
	ID       bfio.FunctionID
	Chunks   int
	Checksum byte
}

// Stats counts arrivals.
type Stats struct {
	Accepted   uint64
	Rejected   uint64
	Stray      uint64
	Corrupted  uint64
	Overflowed uint64
	Queued     uint64
}

// Terminal owns the arrival buffer and the departure taxiway of one role.
type Terminal struct {
	Role Role

	config  Config
	mode    Mode
	state   ArrivalState
	arrival bfio.Plane
	chunks  int
	sum     byte

	receivingID bfio.FunctionID
	lastID      bfio.FunctionID
	hasLast     bool

	taxiway         *Taxiway
	arrivalStatus   Status
	departureStatus Status
	stats           Stats
}

// New creates a Terminal.
func New(role Role, config Config) *Terminal {
	if config.ArrivalCapacity < 2 {
		config.ArrivalCapacity = DefaultArrivalCapacity
	}
	if config.TaxiwayCapacity <= 0 {
		config.TaxiwayCapacity = DefaultTaxiwayCapacity
	}
	return &Terminal{
		Role:    role,
		config:  config,
		arrival: make(bfio.Plane, 0, config.ArrivalCapacity),
		taxiway: NewTaxiway(config.TaxiwayCapacity),
	}
}

// Config returns the configuration.
func (t *Terminal) Config() Config {
	return t.config
}

// HandlePlaneArrival feeds one chunk into the arrival state machine.
func (t *Terminal) HandlePlaneArrival(c bfio.Chunk) error {
	typ, b, err := c.Decode()
	if err != nil {
		return err
	}

	if typ == bfio.StartChunk {
		switch t.state {
		case Receiving:
			t.stats.Corrupted++
			glog.Warningf("%s terminal: plane %s interrupted after %d chunks", t.Role, t.receivingID, t.chunks)
		case Complete:
			glog.Warningf("%s terminal: unclaimed plane %s overwritten", t.Role, t.lastID)
		}
		t.state = Receiving
		t.arrival = append(t.arrival[:0], c)
		t.chunks, t.sum = 1, 0
		t.receivingID = bfio.FunctionID(b)
		t.arrivalStatus = Initialised
		return nil
	}

	if t.state != Receiving {
		t.stats.Stray++
		glog.V(2).Infof("%s terminal: stray %s", t.Role, c)
		return bfio.Errorf(bfio.Failed, "terminal.arrival", "%s: %s", bfio.MsgStrayChunk, c)
	}

	if t.mode == Regular && len(t.arrival) >= t.config.ArrivalCapacity {
		t.state = Idle
		t.stats.Overflowed++
		t.arrivalStatus = Overflowing
		glog.Warningf("%s terminal: plane %s exceeds %d chunks", t.Role, t.receivingID, t.config.ArrivalCapacity)
		return bfio.Errorf(bfio.Failed, "terminal.arrival", "%s: plane %s", bfio.MsgInternalBufferSize, t.receivingID)
	}

	t.chunks++
	if typ != bfio.CheckChunk {
		t.sum += b
		if t.mode == Regular {
			t.arrival = append(t.arrival, c)
		}
		return nil
	}

	if b != t.sum {
		t.state = Idle
		t.stats.Corrupted++
		glog.Warningf("%s terminal: plane %s checksum %d, expect %d", t.Role, t.receivingID, b, t.sum)
		return bfio.Errorf(bfio.Failed, "terminal.arrival", "%s: plane %s", bfio.MsgIncorrectChunk, t.receivingID)
	}
	if t.mode == RejectIncoming {
		t.state = Idle
		t.stats.Rejected++
		return nil
	}
	t.arrival = append(t.arrival, c)
	t.state = Complete
	t.lastID, t.hasLast = t.receivingID, true
	t.arrivalStatus = ArrivalReady
	t.stats.Accepted++
	glog.V(4).Infof("%s terminal: plane %s arrived (%d chunks)", t.Role, t.lastID, len(t.arrival))
	return nil
}

// PacketAvailable indicates a complete plane is waiting to be taken.
func (t *Terminal) PacketAvailable() bool {
	return t.state == Complete
}

// State returns the arrival state.
func (t *Terminal) State() ArrivalState {
	return t.state
}

// GetLastArrival takes the complete plane and returns to Idle.
// It is Bypassed when no plane is available.
func (t *Terminal) GetLastArrival() (bfio.Plane, error) {
	if t.state != Complete {
		return nil, bfio.Errorf(bfio.Bypassed, "terminal.last", "no plane available")
	}
	p := make(bfio.Plane, len(t.arrival))
	copy(p, t.arrival)
	t.arrival = t.arrival[:0]
	t.state = Idle
	t.arrivalStatus = Initialised
	return p, nil
}

// GetLastPlaneID returns the ID of the last completed plane.
func (t *Terminal) GetLastPlaneID() (bfio.FunctionID, error) {
	if !t.hasLast {
		return 0, bfio.Errorf(bfio.Bypassed, "terminal.lastid", "no plane received")
	}
	return t.lastID, nil
}

// CurrentArrivalInfo exposes the plane in progress. For diagnostics only.
func (t *Terminal) CurrentArrivalInfo() ArrivalInfo {
	return ArrivalInfo{ID: t.receivingID, Chunks: t.chunks, Checksum: t.sum}
}

// SetMode changes the arrival mode.
func (t *Terminal) SetMode(mode Mode) error {
	if mode != Regular && mode != RejectIncoming {
		return bfio.Errorf(bfio.Failed, "terminal.mode", "unknown mode %d", int(mode))
	}
	t.mode = mode
	return nil
}

// Mode returns the arrival mode.
func (t *Terminal) Mode() Mode {
	return t.mode
}

// PutPlaneOnTaxiway queues a function ID for departure.
func (t *Terminal) PutPlaneOnTaxiway(id bfio.FunctionID) error {
	if err := t.taxiway.Put(id); err != nil {
		if t.taxiway.Full() {
			t.departureStatus = NotEnoughSpace
		}
		return err
	}
	t.stats.Queued++
	t.departureStatus = DepartureAvailable
	return nil
}

// IsPlaneOnDepartureTaxiway checks if the ID is already queued.
func (t *Terminal) IsPlaneOnDepartureTaxiway(id bfio.FunctionID) bool {
	return t.taxiway.Contains(id)
}

// GetNextDepartingPlaneID pops the oldest queued ID.
// An empty taxiway is Unnecessary, i.e. nothing to send.
func (t *Terminal) GetNextDepartingPlaneID() (bfio.FunctionID, error) {
	id, err := t.taxiway.Next()
	if err != nil {
		return 0, err
	}
	if t.taxiway.Len() == 0 {
		t.departureStatus = Initialised
	} else {
		t.departureStatus = DepartureAvailable
	}
	return id, nil
}

// CanPlaneTaxi checks a plane of size chunks can be queued and received by a peer
// with the same capacities.
func (t *Terminal) CanPlaneTaxi(size int) error {
	if t.taxiway.Full() {
		return bfio.Errorf(bfio.Failed, "terminal.taxi", "taxiway full")
	}
	if size < 2 || size > t.config.ArrivalCapacity {
		return bfio.Errorf(bfio.Failed, "terminal.taxi", "plane of %d chunks, capacity %d", size, t.config.ArrivalCapacity)
	}
	return nil
}

// Taxiway returns the departure queue.
func (t *Terminal) Taxiway() *Taxiway {
	return t.taxiway
}

// ArrivalStatus returns the arrival status.
func (t *Terminal) ArrivalStatus() Status {
	return t.arrivalStatus
}

// DepartureStatus returns the departure status.
func (t *Terminal) DepartureStatus() Status {
	return t.departureStatus
}

// Stats returns the arrival counters.
func (t *Terminal) Stats() Stats {
	return t.stats
}

// Reset clears buffers, queue and counters. Configuration and mode are kept.
func (t *Terminal) Reset() {
	t.state = Idle
	t.arrival = t.arrival[:0]
	t.chunks, t.sum = 0, 0
	t.receivingID, t.lastID, t.hasLast = 0, 0, false
	t.taxiway.Reset()
	t.arrivalStatus, t.departureStatus = Initialised, Initialised
	t.stats = Stats{}
}
