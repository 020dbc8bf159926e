package gates

import (
	"github.com/golang/glog"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/terminal"
)

// Report is a HandlingError received from the peer.
type Report struct {
	Code ErrorCode
	ID   bfio.FunctionID
}

// MaxQueuedReports is how many error planes wait behind the departing one.
const MaxQueuedReports = 8

// HandlingError tells the peer one of its planes couldn't be handled.
// It is sent in place of an answer and never answered itself.
type HandlingError struct {
	Foundation

	queued   []bfio.Plane
	last     Report
	received uint64
}

// NewHandlingError creates the HandlingError gate.
func NewHandlingError() *HandlingError {
	g := &HandlingError{Foundation: newFoundation(bfio.HandlingErrorID, HandlingErrorPlaneSize,
		[]bfio.DataType{bfio.UnsignedChar, bfio.UnsignedChar}, nil)}
	g.answer = g.handle
	return g
}

func (g *HandlingError) handle(req []interface{}) ([]interface{}, error) {
	r := Report{Code: ErrorCode(req[0].(uint8)), ID: bfio.FunctionID(req[1].(uint8))}
	g.last = r
	g.received++
	glog.Warningf("peer couldn't handle %s: %s", r.ID, r.Code)
	if gate := g.reg.Gate(r.ID); gate != nil && gate.Status().InFlight() {
		gate.Fail(bfio.Errorf(bfio.Failed, "gate.handlingerror", "peer reported %s", r.Code))
	}
	return nil, nil
}

// RequestValues implements Departable. HandlingError is never requested, use Send.
func (g *HandlingError) RequestValues(vals ...interface{}) error {
	return bfio.Errorf(bfio.Bypassed, "gate.request", "%s is never requested", g.id)
}

// Send queues an error plane about id for the peer. Reports sent while
// another one is waiting follow it, up to MaxQueuedReports.
func (g *HandlingError) Send(code ErrorCode, id bfio.FunctionID) error {
	plane, err := buildPlane(g.id, g.maxSizeOfPlane, []interface{}{uint8(code), uint8(id)})
	if err != nil {
		return err
	}
	if g.answerPlane != nil {
		if len(g.queued) >= MaxQueuedReports {
			glog.Warningf("%s: queue full, %s for %s dropped", g.id, code, id)
			return bfio.Errorf(bfio.Failed, "gate.handlingerror", "%d reports queued", len(g.queued))
		}
		g.queued = append(g.queued, plane)
		return nil
	}
	return g.board(plane)
}

func (g *HandlingError) board(plane bfio.Plane) error {
	slave := g.reg.Slave
	if !slave.IsPlaneOnDepartureTaxiway(g.id) {
		if err := slave.PutPlaneOnTaxiway(g.id); err != nil {
			return err
		}
	}
	g.answerPlane = plane
	return nil
}

// next boards the oldest queued report once the previous one left the gate.
func (g *HandlingError) next() {
	if g.answerPlane != nil || len(g.queued) == 0 {
		return
	}
	plane := g.queued[0]
	g.queued = g.queued[1:]
	if err := g.board(plane); err != nil {
		glog.Warningf("%s: %v", g.id, err)
	}
}

// PlaneDeparted implements Departable.
func (g *HandlingError) PlaneDeparted(role terminal.Role) {
	g.Foundation.PlaneDeparted(role)
	if role == terminal.Slave {
		g.next()
	}
}

// PlaneRejected implements Departable.
func (g *HandlingError) PlaneRejected(role terminal.Role, err error) {
	g.Foundation.PlaneRejected(role, err)
	if role == terminal.Slave {
		g.next()
	}
}

// Queued returns how many reports wait behind the departing one.
func (g *HandlingError) Queued() int {
	return len(g.queued)
}

// Last returns the last report received and how many were received.
func (g *HandlingError) Last() (Report, uint64) {
	return g.last, g.received
}

// Reset implements Departable.
func (g *HandlingError) Reset() {
	g.Foundation.Reset()
	g.queued = nil
	g.last, g.received = Report{}, 0
}
