package mqtt

import (
	"context"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"

	"github.com/robotalks/bfio.go/pkg/bfio/device"
	"github.com/robotalks/bfio.go/pkg/bfio/gates"
	"github.com/robotalks/bfio.go/pkg/bfio/runway"
	"github.com/robotalks/bfio.go/pkg/bridge/msgs"
	fx "github.com/robotalks/bfio.go/pkg/framework"
)

// DefaultBacklog is the number of messages waiting for the broker
// before new ones are dropped.
const DefaultBacklog = 64

const publishTimeout = time.Second

type publisher interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

type outgoing struct {
	topic   string
	payload []byte
	retain  bool
}

type command struct {
	cmd    *msgs.GateCommand
	future device.Future
}

// Bridge publishes link and gate events of a Device and runs gate
// commands received from the broker.
type Bridge struct {
	Queue  *Queue
	Name   string
	Device *device.Device

	pub     publisher
	out     chan outgoing
	dropped uint64
	pending []command
}

// New creates a Bridge for dev, topics are <prefix><name>/...
func New(brokerURL, name string, dev *device.Device) (*Bridge, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	will, err := msgs.Encode(msgs.NewLinkStatus(name, runway.Closed))
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+name+"/"+msgs.TopicLink, will, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("bfio:" + name)
	}
	q := NewQueue(opts, prefix)
	b := newBridge(q, name, dev)
	b.Queue = q
	q.OnConnect = func(*Queue) {
		dev.Post(func(d *device.Device) { b.linkChanged(d.Runway.Status()) })
	}
	return b, nil
}

func newBridge(pub publisher, name string, dev *device.Device) *Bridge {
	return &Bridge{
		Name:   name,
		Device: dev,
		pub:    pub,
		out:    make(chan outgoing, DefaultBacklog),
	}
}

// Dropped returns the number of messages dropped for backlog.
func (b *Bridge) Dropped() uint64 {
	return atomic.LoadUint64(&b.dropped)
}

// AddToLoop implements fx.LoopAdder.
func (b *Bridge) AddToLoop(l *fx.Loop) {
	b.Device.OnLinkStatus(b.linkChanged)
	b.Device.OnGateEvent(b.gateChanged)
	l.AddController(fx.PrLvApp, b)
	if b.Queue != nil {
		l.AddRunnable(b)
	}
}

// Control implements fx.Controller, it replies to finished commands.
func (b *Bridge) Control(fx.ControlContext) error {
	pending := b.pending[:0]
	for _, c := range b.pending {
		select {
		case r := <-c.future.ResultChan():
			b.send(msgs.TopicReply, msgs.NewGateReply(c.cmd, r.Values, r.Err), false)
		default:
			pending = append(pending, c)
		}
	}
	b.pending = pending
	return nil
}

// Run implements fx.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	token := b.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return errors.Wrap(err, "mqtt connect")
	}
	sub := b.Queue.Sub(b.Name+"/"+msgs.TopicCmd, b.handleCmd)
	defer b.Queue.Close()
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			b.flush()
			if payload, err := msgs.Encode(msgs.NewLinkStatus(b.Name, runway.Closed)); err == nil {
				b.pub.PubWith(b.Name+"/"+msgs.TopicLink, payload, 1, true).WaitTimeout(publishTimeout)
			}
			return ctx.Err()
		case m := <-b.out:
			b.publish(m)
		}
	}
}

func (b *Bridge) flush() {
	for {
		select {
		case m := <-b.out:
			b.publish(m)
		default:
			return
		}
	}
}

func (b *Bridge) publish(m outgoing) {
	var qos byte
	if m.retain {
		qos = 1
	}
	b.pub.PubWith(b.Name+"/"+m.topic, m.payload, qos, m.retain)
}

func (b *Bridge) send(topic string, m proto.Message, retain bool) {
	payload, err := msgs.Encode(m)
	if err != nil {
		glog.Errorf("bridge: encode %s: %v", topic, err)
		return
	}
	select {
	case b.out <- outgoing{topic: topic, payload: payload, retain: retain}:
	default:
		atomic.AddUint64(&b.dropped, 1)
		glog.V(2).Infof("bridge: backlog full, %s dropped", topic)
	}
}

func (b *Bridge) linkChanged(s runway.HighwayStatus) {
	b.send(msgs.TopicLink, msgs.NewLinkStatus(b.Name, s), true)
}

func (b *Bridge) gateChanged(e gates.Event) {
	b.send(msgs.TopicGate, msgs.NewGateEvent(b.Name, e), false)
}

func (b *Bridge) handleCmd(_ string, payload []byte) {
	cmd := &msgs.GateCommand{}
	if err := msgs.Decode(payload, cmd); err != nil {
		glog.Warningf("bridge: bad command: %v", err)
		return
	}
	glog.V(2).Infof("bridge: command %s", cmd)
	b.Device.Post(func(d *device.Device) {
		b.pending = append(b.pending, command{cmd: cmd, future: d.DoArgs(cmd.ID(), cmd.Values...)})
	})
}
