// Package device wires terminals, runway and gates into one BFIO endpoint
// driven by the framework loop.
package device

import (
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/gates"
	"github.com/robotalks/bfio.go/pkg/bfio/runway"
	"github.com/robotalks/bfio.go/pkg/bfio/stream"
	"github.com/robotalks/bfio.go/pkg/bfio/terminal"
	fx "github.com/robotalks/bfio.go/pkg/framework"
)

// Identity describes the local device.
type Identity struct {
	ID            uint64
	Type          byte
	Name          string
	Version       string
	GitRepository string
}

// Config configures a Device.
type Config struct {
	Identity
	Terminal      terminal.Config
	Timeout       time.Duration
	ChunksPerTick int
	IDs           *bfio.IDTable
}

// DefaultConfig returns the standard BFIO settings.
func DefaultConfig() Config {
	return Config{
		Identity: Identity{
			Name:          "bfio.go",
			Version:       "0.1.0",
			GitRepository: bfio.GitRepository,
		},
		Terminal:      terminal.DefaultConfig(),
		Timeout:       gates.DefaultTimeout,
		ChunksPerTick: runway.DefaultChunksPerTick,
	}
}

// LinkListener is notified when the highway status changes.
type LinkListener func(runway.HighwayStatus)

// Device is one BFIO endpoint. Apart from Post and Do, its methods
// must be called from the loop.
type Device struct {
	Master   *terminal.Terminal
	Slave    *terminal.Terminal
	Runway   *runway.Runway
	Registry *gates.Registry
	Gates    *gates.Mandatory

	identity Identity
	status   bfio.DeviceStatus
	errMsg   string
	now      time.Time
	timeout  time.Duration

	arriving *terminal.Terminal
	restart  bool
	highway  runway.HighwayStatus

	linkListeners []LinkListener
	pending       map[bfio.FunctionID]*future
	ready         []bfio.FunctionID

	loop     *fx.Loop
	postLock sync.Mutex
	posted   []func(*Device)
}

// New creates a Device communicating over s.
func New(s stream.Stream, conf Config) *Device {
	if conf.Timeout <= 0 {
		conf.Timeout = gates.DefaultTimeout
	}
	if conf.IDs == nil {
		conf.IDs = bfio.DefaultIDTable()
	}
	d := &Device{
		Master:   terminal.New(terminal.Master, conf.Terminal),
		Slave:    terminal.New(terminal.Slave, conf.Terminal),
		Gates:    gates.NewMandatory(),
		identity: conf.Identity,
		status:   bfio.Booting,
		timeout:  conf.Timeout,
		pending:  make(map[bfio.FunctionID]*future),
	}
	d.Registry = gates.NewRegistry(d, d.Master, d.Slave, conf.IDs)
	if err := d.Register(d.Gates.Gates()...); err != nil {
		panic(err)
	}
	d.Registry.Listen(d.gateEvent)

	// Answers leave before new requests.
	d.Runway = runway.New(s, d.Registry, d,
		runway.Departure{Role: terminal.Slave, Terminal: d.Slave},
		runway.Departure{Role: terminal.Master, Terminal: d.Master})
	if conf.ChunksPerTick > 0 {
		d.Runway.ChunksPerTick = conf.ChunksPerTick
	}
	d.Runway.MaxPlaneSize = d.Master.Config().ArrivalCapacity
	d.Runway.Open()
	d.highway = d.Runway.Status()
	d.status = bfio.Available
	return d
}

// Register adds gates, e.g. application specific ones.
func (d *Device) Register(gs ...gates.Departable) error {
	for _, g := range gs {
		if f, ok := g.(interface{ SetTimeout(time.Duration) }); ok {
			f.SetTimeout(d.timeout)
		}
	}
	return d.Registry.Register(gs...)
}

// Now implements gates.Host.
func (d *Device) Now() time.Time {
	if d.now.IsZero() {
		return time.Now()
	}
	return d.now
}

// Info implements gates.Host.
func (d *Device) Info() gates.Info {
	return gates.Info{
		ID:            d.identity.ID,
		BFIOVersion:   bfio.Version,
		Type:          d.identity.Type,
		Status:        d.status,
		GitRepository: d.identity.GitRepository,
		DeviceName:    d.identity.Name,
		DeviceVersion: d.identity.Version,
	}
}

// ErrorMessage implements gates.Host.
func (d *Device) ErrorMessage() string {
	return d.errMsg
}

// ReportError implements gates.Host.
func (d *Device) ReportError(status bfio.DeviceStatus, msg string) {
	glog.Warningf("device %s: %s", status, msg)
	d.status, d.errMsg = status, msg
}

// RequestRestart implements gates.Host.
func (d *Device) RequestRestart() {
	d.restart = true
}

// Status returns the local device status.
func (d *Device) Status() bfio.DeviceStatus {
	return d.status
}

// SetStatus changes the local device status.
func (d *Device) SetStatus(s bfio.DeviceStatus) {
	d.status = s
}

// Identity returns the local identity.
func (d *Device) Identity() Identity {
	return d.identity
}

// Stats is a snapshot of the protocol counters.
type Stats struct {
	Status bfio.DeviceStatus
	Link   runway.HighwayStatus
	Master terminal.Stats
	Slave  terminal.Stats
	Runway runway.Stats
	Gates  gates.RegistryStats
}

// Stats collects the counters.
func (d *Device) Stats() Stats {
	return Stats{
		Status: d.status,
		Link:   d.Runway.Status(),
		Master: d.Master.Stats(),
		Slave:  d.Slave.Stats(),
		Runway: d.Runway.Stats(),
		Gates:  d.Registry.Stats(),
	}
}

// OnLinkStatus adds a LinkListener.
func (d *Device) OnLinkStatus(l LinkListener) {
	d.linkListeners = append(d.linkListeners, l)
}

// OnGateEvent adds a gate event listener.
func (d *Device) OnGateEvent(l gates.Listener) {
	d.Registry.Listen(l)
}

// HandleChunk implements runway.ArrivalHandler. A Start chunk decides the
// terminal: answers to our in-flight requests go to Master, the rest to Slave.
func (d *Device) HandleChunk(c bfio.Chunk) error {
	if c.Type() == bfio.StartChunk {
		if d.Registry.Expects(bfio.FunctionID(c.Byte())) {
			d.arriving = d.Master
		} else {
			d.arriving = d.Slave
		}
	}
	term := d.arriving
	if term == nil {
		term = d.Slave
	}
	err := term.HandlePlaneArrival(c)
	if bfio.KindOf(err) == bfio.Crashed {
		d.ReportError(bfio.CommunicationError, bfio.MsgFatalChunkHandling)
	}
	if !term.PacketAvailable() {
		return err
	}
	plane, err := term.GetLastArrival()
	if err != nil {
		return err
	}
	d.arriving = nil
	if err = d.Registry.Dock(plane, term.Role); err != nil {
		glog.V(2).Infof("dock %s: %v", term.Role, err)
	}
	return err
}

// ProtocolBFIO runs one tick: receive, expire gates, transmit.
func (d *Device) ProtocolBFIO(now time.Time) error {
	d.now = now
	d.runPosted()

	var errs fx.AggregatedError
	if err := d.Runway.Receive(); err != nil && bfio.KindOf(err) != bfio.Bypassed {
		errs.Add(err)
	}
	if err := d.Registry.Update(now); err != nil {
		glog.V(2).Infof("gates: %v", err)
	}
	if err := d.Runway.Handle(); err != nil && bfio.KindOf(err) != bfio.Bypassed {
		glog.Warningf("runway: %v", err)
	}
	d.resolveReady()
	if d.restart {
		d.restart = false
		d.Reset()
	}
	if s := d.Runway.Status(); s != d.highway {
		d.highway = s
		for _, l := range d.linkListeners {
			l(s)
		}
	}
	return errs.Aggregate()
}

// Reset restarts the protocol: buffers, queues and gates are cleared.
func (d *Device) Reset() {
	glog.Info("protocol restart")
	d.Runway.Close()
	d.Master.Reset()
	d.Slave.Reset()
	d.Registry.Reset()
	d.arriving, d.ready = nil, nil
	d.failPending(bfio.Errorf(bfio.Crashed, "device.reset", "protocol restarted"))
	d.Runway.Open()
}

// Control implements fx.Controller.
func (d *Device) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		if msg, ok := mc.CurrentMessage().(*postedMsg); ok && msg.dev == d {
			mc.MessageTaken()
			d.post(msg.fn)
		}
	}))
	return d.ProtocolBFIO(cc.Time())
}

// AddToLoop implements fx.LoopAdder.
func (d *Device) AddToLoop(l *fx.Loop) {
	d.loop = l
	if runnable, ok := d.Runway.Stream.(fx.Runnable); ok {
		l.AddRunnable(runnable)
	}
	l.AddController(fx.PrLvProtocol, d)
}
