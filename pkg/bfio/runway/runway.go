// Package runway moves planes chunk by chunk between terminals and a stream.
package runway

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/stream"
	"github.com/robotalks/bfio.go/pkg/bfio/terminal"
)

// HighwayStatus reflects the load of the link.
type HighwayStatus int

const (
	// Empty means nothing is departing.
	Empty HighwayStatus = iota
	// Jammed means a departure taxiway is full.
	Jammed
	// Traffic means a plane is departing.
	Traffic
	// Closed means the link is unavailable.
	Closed
	// Stopped means the link is paused.
	Stopped
	// Error means the last plane was rejected before transmission or the link failed.
	Error
)

var highwayStatusNames = [...]string{
	Empty:   "empty",
	Jammed:  "jammed",
	Traffic: "traffic",
	Closed:  "closed",
	Stopped: "stopped",
	Error:   "error",
}

// String implements fmt.Stringer.
func (s HighwayStatus) String() string {
	if s >= 0 && int(s) < len(highwayStatusNames) {
		return highwayStatusNames[s]
	}
	return fmt.Sprintf("HighwayStatus(%d)", int(s))
}

// IsOpen indicates chunks may flow.
func (s HighwayStatus) IsOpen() bool {
	return s != Closed && s != Stopped
}

// PlaneSource provides the content of departing planes.
type PlaneSource interface {
	// PlaneContent builds the plane when it reaches the runway.
	PlaneContent(id bfio.FunctionID, role terminal.Role) (bfio.Plane, error)
	// PlaneDeparted is called once the last chunk is written.
	PlaneDeparted(id bfio.FunctionID, role terminal.Role)
	// PlaneRejected is called when a plane can't depart.
	PlaneRejected(id bfio.FunctionID, role terminal.Role, err error)
}

// ArrivalHandler receives chunks rebuilt from the wire.
type ArrivalHandler interface {
	HandleChunk(bfio.Chunk) error
}

// HandleChunkFunc is func type of ArrivalHandler.
type HandleChunkFunc func(bfio.Chunk) error

// HandleChunk implements ArrivalHandler.
func (f HandleChunkFunc) HandleChunk(c bfio.Chunk) error {
	return f(c)
}

// Departure is a terminal whose taxiway feeds the runway.
type Departure struct {
	Role     terminal.Role
	Terminal *terminal.Terminal
}

// Defaults.
const (
	DefaultChunksPerTick  = 1
	DefaultReceivePerTick = 64
)

// Stats counts runway traffic.
type Stats struct {
	PlanesSent     uint64
	PlanesRejected uint64
	ChunksSent     uint64
	ChunksReceived uint64
	Resyncs        uint64
	ArrivalErrors  uint64
}

// Runway transmits and receives chunks over a Stream.
type Runway struct {
	Stream   stream.Stream
	Source   PlaneSource
	Arrivals ArrivalHandler
	// Departures are polled in order, the first with a queued ID wins.
	Departures []Departure

	ChunksPerTick  int
	ReceivePerTick int
	MaxPlaneSize   int

	status HighwayStatus

	plane             bfio.Plane
	planeRole         terminal.Role
	currentPlaneChunk int

	pending    byte
	hasPending bool

	stats Stats
}

// New creates a closed Runway.
func New(s stream.Stream, source PlaneSource, arrivals ArrivalHandler, departures ...Departure) *Runway {
	return &Runway{
		Stream:         s,
		Source:         source,
		Arrivals:       arrivals,
		Departures:     departures,
		ChunksPerTick:  DefaultChunksPerTick,
		ReceivePerTick: DefaultReceivePerTick,
		MaxPlaneSize:   terminal.DefaultArrivalCapacity,
		status:         Closed,
	}
}

// Status returns the highway status.
func (r *Runway) Status() HighwayStatus {
	return r.status
}

// Stats returns traffic counters.
func (r *Runway) Stats() Stats {
	return r.stats
}

// Sending indicates a plane is in the middle of departure.
func (r *Runway) Sending() bool {
	return r.plane != nil
}

// Open allows traffic.
func (r *Runway) Open() {
	if r.Stream == nil {
		r.status = Closed
		return
	}
	if r.plane != nil {
		r.status = Traffic
	} else {
		r.status = Empty
	}
}

// Stop pauses traffic, the departing plane resumes after Open.
func (r *Runway) Stop() {
	r.status = Stopped
}

// Close abandons the departing plane and partially received chunk.
func (r *Runway) Close() {
	if r.plane != nil {
		r.abandon(bfio.Errorf(bfio.NoConnection, "runway", "runway closed"))
	}
	r.hasPending = false
	r.status = Closed
}

// SetPlaneForTakeOff puts a plane directly on the runway, skipping the taxiway.
func (r *Runway) SetPlaneForTakeOff(id bfio.FunctionID, role terminal.Role) error {
	if r.plane != nil {
		return bfio.Errorf(bfio.Failed, "runway.takeoff", "plane %s still departing", r.plane.ID())
	}
	if err := r.load(id, role); err != nil {
		return err
	}
	if r.plane == nil {
		return bfio.ErrUnnecessary
	}
	return nil
}

// load asks the source for the plane. A source with nothing to send
// (Unnecessary) leaves the runway free.
func (r *Runway) load(id bfio.FunctionID, role terminal.Role) error {
	plane, err := r.Source.PlaneContent(id, role)
	if bfio.KindOf(err) == bfio.Unnecessary {
		glog.V(4).Infof("runway: plane %s (%s) no longer departing", id, role)
		return nil
	}
	if err == nil {
		err = r.validate(id, plane)
	}
	if err != nil {
		r.status = Error
		r.stats.PlanesRejected++
		glog.Warningf("runway: plane %s (%s) rejected: %v", id, role, err)
		r.Source.PlaneRejected(id, role, err)
		return err
	}
	r.plane, r.planeRole, r.currentPlaneChunk = plane, role, 0
	r.status = Traffic
	return nil
}

func (r *Runway) validate(id bfio.FunctionID, plane bfio.Plane) error {
	if len(plane) > r.MaxPlaneSize {
		return bfio.Errorf(bfio.Failed, "runway.validate", "plane of %d chunks exceeds %d", len(plane), r.MaxPlaneSize)
	}
	if err := bfio.VerifyCheckSum(plane); err != nil {
		return err
	}
	if plane.ID() != id {
		return bfio.Errorf(bfio.Failed, "runway.validate", "content of %s carries ID %s", id, plane.ID())
	}
	return nil
}

func (r *Runway) abandon(err error) {
	id, role := r.plane.ID(), r.planeRole
	r.plane, r.currentPlaneChunk = nil, 0
	r.Source.PlaneRejected(id, role, err)
}

// Handle drives departure for one tick.
// It pulls the next queued ID when idle and writes up to ChunksPerTick chunks.
func (r *Runway) Handle() error {
	if !r.status.IsOpen() {
		return bfio.ErrBypassed
	}
	if r.plane == nil {
		if err := r.nextPlane(); err != nil {
			return err
		}
	}
	if r.plane != nil {
		if err := r.transmit(); err != nil {
			return err
		}
	}
	r.updateStatus()
	return nil
}

func (r *Runway) nextPlane() error {
	for _, dep := range r.Departures {
		for r.plane == nil {
			id, err := dep.Terminal.GetNextDepartingPlaneID()
			if err != nil {
				break
			}
			if err = r.load(id, dep.Role); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runway) transmit() error {
	count := r.ChunksPerTick
	if count <= 0 {
		count = DefaultChunksPerTick
	}
	for ; count > 0 && r.currentPlaneChunk < len(r.plane); count-- {
		b0, b1 := r.plane[r.currentPlaneChunk].ToWire()
		if err := r.Stream.WriteByte(b0); err != nil {
			return r.linkFailed(err)
		}
		if err := r.Stream.WriteByte(b1); err != nil {
			return r.linkFailed(err)
		}
		r.currentPlaneChunk++
		r.stats.ChunksSent++
	}
	if r.currentPlaneChunk >= len(r.plane) {
		id, role := r.plane.ID(), r.planeRole
		r.plane, r.currentPlaneChunk = nil, 0
		r.stats.PlanesSent++
		glog.V(4).Infof("runway: plane %s (%s) departed", id, role)
		r.Source.PlaneDeparted(id, role)
	}
	return nil
}

func (r *Runway) linkFailed(err error) error {
	glog.Errorf("runway: write failed: %v", err)
	r.abandon(bfio.Errorf(bfio.NoConnection, "runway", "%v", err))
	r.status = Error
	return err
}

func (r *Runway) updateStatus() {
	for _, dep := range r.Departures {
		if dep.Terminal.Taxiway().Full() {
			r.status = Jammed
			return
		}
	}
	if r.plane != nil {
		r.status = Traffic
	} else {
		r.status = Empty
	}
}

// Receive rebuilds chunks from received byte pairs and hands them over.
// A first byte which is not a band index is discarded to resynchronize.
func (r *Runway) Receive() error {
	if !r.status.IsOpen() || r.Stream == nil {
		return bfio.ErrBypassed
	}
	budget := r.ReceivePerTick
	if budget <= 0 {
		budget = DefaultReceivePerTick
	}
	for budget > 0 && r.Stream.Available() > 0 {
		v, err := r.Stream.ReadByte()
		if err != nil {
			if err == stream.ErrEmpty {
				return nil
			}
			return err
		}
		if !r.hasPending {
			if v > 3 {
				r.stats.Resyncs++
				glog.V(2).Infof("runway: discarded byte %d", v)
				continue
			}
			r.pending, r.hasPending = v, true
			continue
		}
		r.hasPending = false
		budget--
		c, err := bfio.FromWire(r.pending, v)
		if err != nil {
			r.stats.ArrivalErrors++
			continue
		}
		r.stats.ChunksReceived++
		if r.Arrivals == nil {
			continue
		}
		if err = r.Arrivals.HandleChunk(c); err != nil {
			r.stats.ArrivalErrors++
			glog.V(2).Infof("runway: %v", err)
		}
	}
	return nil
}
