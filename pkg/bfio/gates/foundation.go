package gates

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/terminal"
)

// Departable is the contract shared by every gate.
type Departable interface {
	ID() bfio.FunctionID
	Status() Status
	Err() error
	Signature() (request, answer []bfio.DataType)

	// RequestValues starts a request from Cleaned.
	RequestValues(vals ...interface{}) error
	// ReadValues takes the answer from AvailableArrival and cleans the gate.
	ReadValues() ([]interface{}, error)
	// Update expires a pending request.
	Update(now time.Time) error
	// Expects indicates an answer plane for this gate should go to the Master terminal.
	Expects(now time.Time) bool
	// Fail aborts a pending request.
	Fail(err error)
	Reset()

	PlaneContent(role terminal.Role) (bfio.Plane, error)
	PlaneDeparted(role terminal.Role)
	PlaneRejected(role terminal.Role, err error)
	DockMasterArrival(p bfio.Plane) error
	DockSlaveArrival(p bfio.Plane) error

	Attach(reg *Registry)
}

// Foundation implements the state machine common to all gates.
type Foundation struct {
	id             bfio.FunctionID
	requestTypes   []bfio.DataType
	answerTypes    []bfio.DataType
	maxSizeOfPlane int
	// variable gates carry strings and take the whole arrival capacity.
	variable bool
	timeout  time.Duration

	reg *Registry

	status      Status
	err         error
	requestedAt time.Time
	lateUntil   time.Time
	request     bfio.Plane
	values      []interface{}
	answerPlane bfio.Plane

	// answer builds the values answering a peer request. nil values send nothing.
	answer func(req []interface{}) ([]interface{}, error)
	// arrived checks answer values before they become available.
	arrived func(vals []interface{}) error
	// answered runs after an answer plane departed.
	answered func()
}

func newFoundation(id bfio.FunctionID, maxSizeOfPlane int, request, answer []bfio.DataType) Foundation {
	return Foundation{
		id:             id,
		requestTypes:   request,
		answerTypes:    answer,
		maxSizeOfPlane: maxSizeOfPlane,
		timeout:        DefaultTimeout,
	}
}

// ID implements Departable.
func (f *Foundation) ID() bfio.FunctionID {
	return f.id
}

// Status implements Departable.
func (f *Foundation) Status() Status {
	return f.status
}

// Err returns the error which last returned the gate to Cleaned.
func (f *Foundation) Err() error {
	return f.err
}

// Signature implements Departable.
func (f *Foundation) Signature() (request, answer []bfio.DataType) {
	return f.requestTypes, f.answerTypes
}

// MaxSizeOfPlane returns the largest plane in chunks the gate handles.
func (f *Foundation) MaxSizeOfPlane() int {
	return f.maxSizeOfPlane
}

// Timeout returns the arrival timeout.
func (f *Foundation) Timeout() time.Duration {
	return f.timeout
}

// SetTimeout changes the arrival timeout.
func (f *Foundation) SetTimeout(d time.Duration) {
	if d > 0 {
		f.timeout = d
	}
}

// Attach implements Departable. Gates carrying strings are sized to the
// smallest arrival capacity of the registry terminals.
func (f *Foundation) Attach(reg *Registry) {
	f.reg = reg
	if c := reg.PlaneCapacity(); f.variable && c > 0 {
		f.maxSizeOfPlane = c
	}
}

func (f *Foundation) setStatus(s Status, err error) {
	f.status, f.err = s, err
	if f.reg != nil {
		f.reg.emit(Event{ID: f.id, Status: s, Err: err})
	}
}

// RequestValues implements Departable.
func (f *Foundation) RequestValues(vals ...interface{}) error {
	if f.reg == nil {
		return bfio.Errorf(bfio.Crashed, "gate.request", "gate %s not registered", f.id)
	}
	if f.status != Cleaned {
		return bfio.Errorf(bfio.Failed, "gate.request", "gate %s is %s", f.id, f.status)
	}
	if err := checkTypes(f.requestTypes, vals); err != nil {
		return err
	}
	plane, err := buildPlane(f.id, f.maxSizeOfPlane, vals)
	if err != nil {
		return err
	}
	master := f.reg.Master
	if !master.IsPlaneOnDepartureTaxiway(f.id) {
		if err = master.CanPlaneTaxi(len(plane)); err != nil {
			return err
		}
		if err = master.PutPlaneOnTaxiway(f.id); err != nil {
			return err
		}
	}
	f.request, f.values = plane, nil
	f.requestedAt, f.lateUntil = f.reg.Host.Now(), time.Time{}
	f.setStatus(ReadyForDeparture, nil)
	return nil
}

// ReadValues implements Departable.
func (f *Foundation) ReadValues() ([]interface{}, error) {
	if f.status != AvailableArrival {
		return nil, bfio.Errorf(bfio.Bypassed, "gate.read", "gate %s is %s", f.id, f.status)
	}
	vals := f.values
	f.values = nil
	f.setStatus(Cleaned, nil)
	return vals, nil
}

// Update implements Departable.
func (f *Foundation) Update(now time.Time) error {
	if !f.status.InFlight() || now.Sub(f.requestedAt) <= f.timeout {
		return nil
	}
	err := bfio.Errorf(bfio.NoConnection, "gate.update", "%s: no answer within %v", f.id, f.timeout)
	f.request = nil
	f.lateUntil = now.Add(f.timeout)
	f.setStatus(Cleaned, err)
	return err
}

// Expects implements Departable.
func (f *Foundation) Expects(now time.Time) bool {
	return f.status.InFlight() || now.Before(f.lateUntil)
}

// Fail implements Departable.
func (f *Foundation) Fail(err error) {
	if f.status.InFlight() {
		f.request = nil
		f.setStatus(Cleaned, err)
	}
}

// Reset implements Departable.
func (f *Foundation) Reset() {
	f.status, f.err = Cleaned, nil
	f.requestedAt, f.lateUntil = time.Time{}, time.Time{}
	f.request, f.values, f.answerPlane = nil, nil, nil
}

// PlaneContent implements Departable.
func (f *Foundation) PlaneContent(role terminal.Role) (bfio.Plane, error) {
	if role == terminal.Slave {
		p := f.answerPlane
		if p == nil {
			return nil, bfio.ErrUnnecessary
		}
		f.answerPlane = nil
		return p, nil
	}
	if f.status != ReadyForDeparture || f.request == nil {
		return nil, bfio.ErrUnnecessary
	}
	f.setStatus(JustLeft, nil)
	return f.request, nil
}

// PlaneDeparted implements Departable.
func (f *Foundation) PlaneDeparted(role terminal.Role) {
	if role == terminal.Slave {
		if f.answered != nil {
			f.answered()
		}
		return
	}
	if f.status == JustLeft {
		f.setStatus(AwaitingArrival, nil)
	}
}

// PlaneRejected implements Departable. A rejected answer is reported to
// the peer so its request fails without waiting for the timeout. Answers
// are built locally and only fail validation by size.
func (f *Foundation) PlaneRejected(role terminal.Role, err error) {
	if role == terminal.Master {
		f.Fail(err)
		return
	}
	if bfio.KindOf(err) != bfio.NoConnection {
		f.reg.SendErrorPlane(ErrorOversize, f.id)
	}
}

// DockMasterArrival implements Departable. The plane answers our request.
func (f *Foundation) DockMasterArrival(p bfio.Plane) error {
	if !f.status.InFlight() {
		return bfio.Errorf(bfio.Bypassed, "gate.dock", "%s: unexpected answer dropped", f.id)
	}
	vals, code, err := f.unload(p, f.answerTypes)
	if err == nil && f.arrived != nil {
		err = f.arrived(vals)
	}
	if err != nil {
		if code != 0 {
			f.reg.SendErrorPlane(code, f.id)
		}
		f.Fail(err)
		return err
	}
	f.request, f.values = nil, vals
	f.setStatus(AvailableArrival, nil)
	return nil
}

// DockSlaveArrival implements Departable. The plane is a request from the peer.
func (f *Foundation) DockSlaveArrival(p bfio.Plane) error {
	vals, code, err := f.unload(p, f.requestTypes)
	if err != nil {
		f.reg.SendErrorPlane(code, f.id)
		return err
	}
	if f.answer == nil {
		f.reg.SendErrorPlane(ErrorUnsupportedFunction, f.id)
		return bfio.Errorf(bfio.Incompatibility, "gate.dock", "%s can't answer", f.id)
	}
	ans, err := f.answer(vals)
	if err != nil {
		f.reg.SendErrorPlane(ErrorDecodeFailure, f.id)
		return err
	}
	if ans == nil {
		return nil
	}
	plane, err := buildPlane(f.id, f.maxSizeOfPlane, ans)
	if err != nil {
		glog.Errorf("gate %s: %s: %v", f.id, bfio.MsgInternalPacketBuild, err)
		f.reg.SendErrorPlane(ErrorOversize, f.id)
		return err
	}
	slave := f.reg.Slave
	if !slave.IsPlaneOnDepartureTaxiway(f.id) {
		if err = slave.PutPlaneOnTaxiway(f.id); err != nil {
			return err
		}
	}
	f.answerPlane = plane
	return nil
}

func (f *Foundation) unload(p bfio.Plane, types []bfio.DataType) ([]interface{}, ErrorCode, error) {
	if p.ID() != f.id {
		return nil, ErrorIncorrectPlane, bfio.Errorf(bfio.Failed, "gate.dock", "plane %s docked at gate %s", p.ID(), f.id)
	}
	if len(p) > f.maxSizeOfPlane {
		return nil, ErrorOversize, bfio.Errorf(bfio.Failed, "gate.dock", "%s: plane of %d chunks exceeds %d", f.id, len(p), f.maxSizeOfPlane)
	}
	params, err := bfio.ParameterBytes(p)
	if err != nil {
		return nil, ErrorIncorrectPlane, err
	}
	vals, err := decodeValues(types, params)
	if err != nil {
		return nil, ErrorDecodeFailure, err
	}
	return vals, 0, nil
}

func checkTypes(types []bfio.DataType, vals []interface{}) error {
	if len(vals) != len(types) {
		return bfio.Errorf(bfio.Failed, "gate.values", "expect %d values, got %d", len(types), len(vals))
	}
	for n, v := range vals {
		t, err := bfio.ToType(v)
		if err != nil {
			return err
		}
		if t != types[n] {
			return bfio.Errorf(bfio.Failed, "gate.values", "value %d is %s, expect %s", n, t, types[n])
		}
	}
	return nil
}

func buildPlane(id bfio.FunctionID, capacity int, vals []interface{}) (bfio.Plane, error) {
	segs := make([]bfio.Segment, 0, len(vals))
	for _, v := range vals {
		seg, err := bfio.ParameterSegment(v)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return bfio.CreateFromSegments(id, capacity, segs...)
}

func decodeValues(types []bfio.DataType, params [][]byte) ([]interface{}, error) {
	if len(params) != len(types) {
		return nil, bfio.Errorf(bfio.Failed, "gate.decode", "%s: expect %d parameters, got %d", bfio.MsgDivCounting, len(types), len(params))
	}
	vals := make([]interface{}, 0, len(types))
	for n, t := range types {
		if t != bfio.String {
			size, err := bfio.GetArraySize(t)
			if err != nil {
				return nil, err
			}
			if len(params[n]) != size {
				return nil, bfio.Errorf(bfio.Failed, "gate.decode", "parameter %d has %d bytes, %s needs %d", n, len(params[n]), t, size)
			}
		}
		v, err := bfio.Decode(t, params[n])
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
