package gates

import (
	"sort"
	"time"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/terminal"
)

// RegistryStats counts dispatched planes.
type RegistryStats struct {
	Docked     uint64
	Dropped    uint64
	ErrorsSent uint64
	Timeouts   uint64
}

// Registry is the dispatch table mapping function IDs to gates.
// It implements runway.PlaneSource.
type Registry struct {
	Master *terminal.Terminal
	Slave  *terminal.Terminal
	Host   Host
	IDs    *bfio.IDTable

	gates         [256]Departable
	handlingError *HandlingError
	listeners     []Listener
	stats         RegistryStats
}

// NewRegistry creates an empty Registry.
func NewRegistry(host Host, master, slave *terminal.Terminal, ids *bfio.IDTable) *Registry {
	if ids == nil {
		ids = bfio.DefaultIDTable()
	}
	return &Registry{Master: master, Slave: slave, Host: host, IDs: ids}
}

// Register adds gates and marks their IDs supported.
func (r *Registry) Register(gates ...Departable) error {
	for _, g := range gates {
		if r.gates[g.ID()] != nil {
			return bfio.Errorf(bfio.Failed, "registry.register", "gate %s already registered", g.ID())
		}
		g.Attach(r)
		r.gates[g.ID()] = g
		r.IDs.Add(g.ID())
		if he, ok := g.(*HandlingError); ok {
			r.handlingError = he
		}
	}
	return nil
}

// Gate returns the gate of an ID, or nil.
func (r *Registry) Gate(id bfio.FunctionID) Departable {
	return r.gates[id]
}

// Gates lists registered gates ordered by ID.
func (r *Registry) Gates() []Departable {
	var list []Departable
	for _, g := range r.gates {
		if g != nil {
			list = append(list, g)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID() < list[j].ID() })
	return list
}

// PlaneCapacity returns the largest plane, in chunks, both terminals
// can receive, or 0 without terminals.
func (r *Registry) PlaneCapacity() int {
	var c int
	for _, t := range []*terminal.Terminal{r.Master, r.Slave} {
		if t == nil {
			continue
		}
		if n := t.Config().ArrivalCapacity; c == 0 || n < c {
			c = n
		}
	}
	return c
}

// Listen adds a Listener for gate events.
func (r *Registry) Listen(l Listener) {
	r.listeners = append(r.listeners, l)
}

func (r *Registry) emit(e Event) {
	for _, l := range r.listeners {
		l(e)
	}
}

// Stats returns dispatch counters.
func (r *Registry) Stats() RegistryStats {
	return r.stats
}

// PlaneContent implements runway.PlaneSource.
func (r *Registry) PlaneContent(id bfio.FunctionID, role terminal.Role) (bfio.Plane, error) {
	g := r.gates[id]
	if g == nil {
		return nil, bfio.Errorf(bfio.Failed, "registry.content", "no gate for %s", id)
	}
	return g.PlaneContent(role)
}

// PlaneDeparted implements runway.PlaneSource.
func (r *Registry) PlaneDeparted(id bfio.FunctionID, role terminal.Role) {
	if g := r.gates[id]; g != nil {
		g.PlaneDeparted(role)
	}
}

// PlaneRejected implements runway.PlaneSource.
func (r *Registry) PlaneRejected(id bfio.FunctionID, role terminal.Role, err error) {
	if g := r.gates[id]; g != nil {
		g.PlaneRejected(role, err)
	}
}

// Expects indicates an arriving plane with the ID answers one of our requests.
func (r *Registry) Expects(id bfio.FunctionID) bool {
	g := r.gates[id]
	return g != nil && g.Expects(r.Host.Now())
}

// Dock hands a complete plane to its gate. Planes taken from the Master
// terminal are answers, those from the Slave terminal are requests.
func (r *Registry) Dock(p bfio.Plane, role terminal.Role) error {
	a, err := bfio.FullyAnalyze(p, r.IDs)
	if err != nil {
		r.stats.Dropped++
		glog.Warningf("registry: %s plane dropped: %v", role, err)
		switch bfio.KindOf(err) {
		case bfio.Incompatibility:
			r.SendErrorPlane(ErrorUnsupportedFunction, p.ID())
		default:
			r.SendErrorPlane(ErrorIncorrectPlane, p.ID())
		}
		return err
	}
	g := r.gates[a.ID]
	if g == nil {
		r.stats.Dropped++
		r.SendErrorPlane(ErrorUnsupportedFunction, a.ID)
		return bfio.Errorf(bfio.Incompatibility, "registry.dock", "%s: %s", bfio.MsgUnsupportedFunctions, a.ID)
	}
	if role == terminal.Master {
		err = g.DockMasterArrival(p)
	} else {
		err = g.DockSlaveArrival(p)
	}
	if err != nil {
		r.stats.Dropped++
		return err
	}
	r.stats.Docked++
	return nil
}

// Update advances every gate's timeout clock.
func (r *Registry) Update(now time.Time) error {
	var errs *multierror.Error
	for _, g := range r.gates {
		if g == nil {
			continue
		}
		if err := g.Update(now); err != nil {
			r.stats.Timeouts++
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// SendErrorPlane queues a HandlingError plane telling the peer its plane
// for id couldn't be handled. Errors about HandlingError planes are never sent.
func (r *Registry) SendErrorPlane(code ErrorCode, id bfio.FunctionID) error {
	if id == bfio.HandlingErrorID {
		return nil
	}
	if r.handlingError == nil {
		glog.Warningf("registry: can't report %s for %s", code, id)
		return bfio.Errorf(bfio.Bypassed, "registry.error", "no HandlingError gate")
	}
	r.stats.ErrorsSent++
	return r.handlingError.Send(code, id)
}

// Reset resets every gate.
func (r *Registry) Reset() {
	for _, g := range r.gates {
		if g != nil {
			g.Reset()
		}
	}
	r.stats = RegistryStats{}
}
