package device

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/gates"
	"github.com/robotalks/bfio.go/pkg/bfio/runway"
	"github.com/robotalks/bfio.go/pkg/bfio/stream"
	fx "github.com/robotalks/bfio.go/pkg/framework"
)

type testBench struct {
	a, b  *Device
	loopA *fx.Loop
	now   time.Time
}

func newTestBench() *testBench {
	return newTestBenchWith(nil)
}

func newTestBenchWith(configure func(a, b *Config)) *testBench {
	sa, sb := stream.Pipe()
	confA, confB := DefaultConfig(), DefaultConfig()
	confA.Name, confA.ID = "host", 1
	confB.Name, confB.ID = "gamepad", 2
	if configure != nil {
		configure(&confA, &confB)
	}
	t := &testBench{
		a:     New(sa, confA),
		b:     New(sb, confB),
		loopA: fx.NewLoop(),
		now:   time.Unix(0, 0),
	}
	t.loopA.Add(t.a)
	return t
}

// tick advances both devices by one millisecond.
func (t *testBench) tick() {
	t.now = t.now.Add(time.Millisecond)
	t.loopA.Step(context.Background(), t.now)
	t.b.ProtocolBFIO(t.now)
}

func (t *testBench) tickUntil(max int, cond func() bool) int {
	for n := 1; n <= max; n++ {
		t.tick()
		if cond() {
			return n
		}
	}
	return -1
}

func TestPingEndToEnd(t *testing.T) {
	tb := newTestBench()
	ping := tb.a.Gates.Ping
	require.NoError(t, ping.Request(true))
	n := tb.tickUntil(50, func() bool { return ping.Status() == gates.AvailableArrival })
	require.True(t, n > 0)
	v, err := ping.Read()
	require.NoError(t, err)
	require.True(t, v)
	require.Equal(t, gates.Cleaned, ping.Status())
	require.Equal(t, uint64(1), tb.b.Slave.Stats().Accepted)
	require.Equal(t, uint64(1), tb.a.Master.Stats().Accepted)
}

func TestTransaction(t *testing.T) {
	tb := newTestBench()
	f := tb.a.Do(Transaction{ID: bfio.UniversalInfoID})
	var result Result
	n := tb.tickUntil(500, func() bool {
		select {
		case result = <-f.ResultChan():
			return true
		default:
			return false
		}
	})
	require.True(t, n > 0)
	require.NoError(t, result.Err)
	require.Equal(t, bfio.UniversalInfoID, result.ID)
	require.Len(t, result.Values, 7)
	require.Equal(t, uint64(2), result.Values[0])
	require.Equal(t, "gamepad", result.Values[5])
	require.Equal(t, gates.Cleaned, tb.a.Gates.UniversalInfo.Status())
}

func TestUniversalInfoSmallCapacity(t *testing.T) {
	tb := newTestBenchWith(func(a, b *Config) {
		a.Terminal.ArrivalCapacity = 50
		b.Terminal.ArrivalCapacity = 50
		b.Name = strings.Repeat("gamepad-", 8)
	})
	f := tb.a.Do(Transaction{ID: bfio.UniversalInfoID})
	var result Result
	n := tb.tickUntil(500, func() bool {
		select {
		case result = <-f.ResultChan():
			return true
		default:
			return false
		}
	})
	require.True(t, n > 0)
	require.NoError(t, result.Err)
	require.Len(t, result.Values, 7)
	require.Equal(t, uint64(2), result.Values[0])
	strs := len(result.Values[4].(string)) + len(result.Values[5].(string)) + len(result.Values[6].(string))
	require.True(t, strs <= 50-2-9-9-2-2-3)
	require.Zero(t, tb.b.Runway.Stats().PlanesRejected)
}

func TestTransactionErrors(t *testing.T) {
	tb := newTestBench()
	unknown := tb.a.Do(Transaction{ID: bfio.FunctionID(99)})
	badValues := tb.a.Do(Transaction{ID: bfio.PingID, Values: []interface{}{"yes"}})
	tb.tick()
	r := <-unknown.ResultChan()
	require.Equal(t, bfio.Incompatibility, bfio.KindOf(r.Err))
	r = <-badValues.ResultChan()
	require.Equal(t, bfio.Failed, bfio.KindOf(r.Err))
}

func TestTransactionTimeout(t *testing.T) {
	sa, _ := stream.Pipe()
	d := New(sa, DefaultConfig())
	f := d.Do(Transaction{ID: bfio.PingID, Values: []interface{}{true}})
	now := time.Unix(0, 0)
	for n := 0; n < 1100; n++ {
		now = now.Add(time.Millisecond)
		require.NoError(t, d.ProtocolBFIO(now))
	}
	select {
	case r := <-f.ResultChan():
		require.Equal(t, bfio.NoConnection, bfio.KindOf(r.Err))
	default:
		t.Fatal("transaction not expired")
	}
	require.Equal(t, gates.Cleaned, d.Gates.Ping.Status())
}

func TestRestartProtocol(t *testing.T) {
	tb := newTestBench()
	f := tb.a.Do(Transaction{ID: bfio.RestartProtocolID})
	var result Result
	n := tb.tickUntil(100, func() bool {
		select {
		case result = <-f.ResultChan():
			return true
		default:
			return false
		}
	})
	require.True(t, n > 0)
	require.NoError(t, result.Err)
	require.Empty(t, result.Values)
	require.Zero(t, tb.b.Registry.Stats().Docked)
	require.Equal(t, runway.Empty, tb.b.Runway.Status())
}

func TestHandshakeAndStatus(t *testing.T) {
	tb := newTestBench()
	tb.b.ReportError(bfio.HardwareError, "joystick unplugged")
	m := tb.a.Gates
	require.NoError(t, m.Handshake.Request())
	require.NoError(t, m.Status.Request())
	require.NoError(t, m.ErrorMessage.Request())
	n := tb.tickUntil(200, func() bool {
		return m.Handshake.Status() == gates.AvailableArrival &&
			m.Status.Status() == gates.AvailableArrival &&
			m.ErrorMessage.Status() == gates.AvailableArrival
	})
	require.True(t, n > 0)
	version, err := m.Handshake.Read()
	require.NoError(t, err)
	require.Equal(t, bfio.Version, version)
	status, err := m.Status.Read()
	require.NoError(t, err)
	require.Equal(t, bfio.HardwareError, status)
	msg, err := m.ErrorMessage.Read()
	require.NoError(t, err)
	require.Equal(t, "joystick unplugged", msg)
	require.Equal(t, bfio.Available, tb.a.Status())
}

func TestArrivalRouting(t *testing.T) {
	sa, _ := stream.Pipe()
	d := New(sa, DefaultConfig())
	require.NoError(t, d.Gates.DeviceType.Request())

	// an answer to the in-flight request lands on Master.
	for _, c := range []bfio.Chunk{bfio.Start(4), bfio.Div(0), bfio.Byte(9), bfio.Check(9)} {
		require.NoError(t, d.HandleChunk(c))
	}
	require.Equal(t, uint64(1), d.Master.Stats().Accepted)
	typ, err := d.Gates.DeviceType.Read()
	require.NoError(t, err)
	require.Equal(t, byte(9), typ)

	// a request from the peer lands on Slave and gets answered.
	for _, c := range []bfio.Chunk{bfio.Start(4), bfio.Check(0)} {
		require.NoError(t, d.HandleChunk(c))
	}
	require.Equal(t, uint64(1), d.Slave.Stats().Accepted)
	require.True(t, d.Slave.IsPlaneOnDepartureTaxiway(bfio.DeviceTypeID))
}

func TestLinkListener(t *testing.T) {
	tb := newTestBench()
	var statuses []runway.HighwayStatus
	tb.a.OnLinkStatus(func(s runway.HighwayStatus) { statuses = append(statuses, s) })
	require.NoError(t, tb.a.Gates.Ping.Request(true))
	tb.tickUntil(20, func() bool { return tb.a.Gates.Ping.Status() == gates.AvailableArrival })
	require.Equal(t, []runway.HighwayStatus{runway.Traffic, runway.Empty}, statuses)
}

func TestDoArgs(t *testing.T) {
	tb := newTestBench()
	f := tb.a.DoArgs(bfio.PingID, "true")
	bad := tb.a.DoArgs(bfio.PingID, "true", "false")
	var result Result
	n := tb.tickUntil(50, func() bool {
		select {
		case result = <-f.ResultChan():
			return true
		default:
			return false
		}
	})
	require.True(t, n > 0)
	require.NoError(t, result.Err)
	require.Equal(t, []interface{}{true}, result.Values)
	r := <-bad.ResultChan()
	require.Equal(t, bfio.Failed, bfio.KindOf(r.Err))
}

func TestSharedLoop(t *testing.T) {
	sa, sb := stream.Pipe()
	a, b := New(sa, DefaultConfig()), New(sb, DefaultConfig())
	loop := fx.NewLoop().Add(a, b)
	var ranOn []*Device
	a.Post(func(d *Device) { ranOn = append(ranOn, d) })
	b.Post(func(d *Device) { ranOn = append(ranOn, d) })
	loop.Step(context.Background(), time.Unix(0, int64(time.Millisecond)))
	require.Len(t, ranOn, 2)
	require.True(t, ranOn[0] == a)
	require.True(t, ranOn[1] == b)
}
