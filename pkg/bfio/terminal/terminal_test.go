package terminal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bfio.go/pkg/bfio"
)

func testPlane(t *testing.T, id bfio.FunctionID, vals ...interface{}) bfio.Plane {
	var segs []bfio.Segment
	for _, v := range vals {
		seg, err := bfio.ParameterSegment(v)
		require.NoError(t, err)
		segs = append(segs, seg)
	}
	p, err := bfio.CreateFromSegments(id, DefaultArrivalCapacity, segs...)
	require.NoError(t, err)
	return p
}

func feed(t *testing.T, term *Terminal, chunks ...bfio.Chunk) []error {
	var errs []error
	for _, c := range chunks {
		errs = append(errs, term.HandlePlaneArrival(c))
	}
	return errs
}

func TestArrivalWellFormed(t *testing.T) {
	term := New(Slave, DefaultConfig())
	p := testPlane(t, bfio.DeviceIDID, uint64(0x1234), "pad")
	for n, c := range p {
		require.False(t, term.PacketAvailable(), "chunk %d", n)
		require.NoError(t, term.HandlePlaneArrival(c))
	}
	require.True(t, term.PacketAvailable())
	require.Equal(t, ArrivalReady, term.ArrivalStatus())
	id, err := term.GetLastPlaneID()
	require.NoError(t, err)
	require.Equal(t, bfio.DeviceIDID, id)

	got, err := term.GetLastArrival()
	require.NoError(t, err)
	require.Equal(t, p, got)
	require.False(t, term.PacketAvailable())
	_, err = term.GetLastArrival()
	require.Equal(t, bfio.Bypassed, bfio.KindOf(err))
	require.Equal(t, uint64(1), term.Stats().Accepted)
}

func TestArrivalErrors(t *testing.T) {
	testCases := []struct {
		name   string
		chunks []bfio.Chunk
		state  ArrivalState
		stats  Stats
	}{
		{
			name:   "stray chunks",
			chunks: []bfio.Chunk{bfio.Div(0), bfio.Byte(1), bfio.Check(1)},
			state:  Idle,
			stats:  Stats{Stray: 3},
		},
		{
			name:   "checksum mismatch",
			chunks: []bfio.Chunk{bfio.Start(0), bfio.Div(0), bfio.Byte(1), bfio.Check(2)},
			state:  Idle,
			stats:  Stats{Corrupted: 1},
		},
		{
			name:   "restart mid plane",
			chunks: []bfio.Chunk{bfio.Start(0), bfio.Div(0), bfio.Start(1), bfio.Div(0), bfio.Byte(5), bfio.Check(5)},
			state:  Complete,
			stats:  Stats{Corrupted: 1, Accepted: 1},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			term := New(Master, DefaultConfig())
			feed(t, term, tc.chunks...)
			require.Equal(t, tc.state, term.State())
			require.Equal(t, tc.stats, term.Stats())
		})
	}
}

func TestArrivalOverflow(t *testing.T) {
	term := New(Slave, Config{ArrivalCapacity: 4, TaxiwayCapacity: 2})
	errs := feed(t, term, bfio.Start(1), bfio.Div(0), bfio.Byte(1), bfio.Byte(1))
	for _, err := range errs {
		require.NoError(t, err)
	}
	err := term.HandlePlaneArrival(bfio.Check(2))
	require.Equal(t, bfio.Failed, bfio.KindOf(err))
	require.Equal(t, Idle, term.State())
	require.Equal(t, Overflowing, term.ArrivalStatus())

	// a plane that fits exactly is accepted afterwards.
	feed(t, term, bfio.Start(1), bfio.Div(0), bfio.Byte(1), bfio.Check(1))
	require.True(t, term.PacketAvailable())
}

func TestArrivalRejectIncoming(t *testing.T) {
	term := New(Slave, DefaultConfig())
	require.NoError(t, term.SetMode(RejectIncoming))
	feed(t, term, bfio.Start(3), bfio.Div(0), bfio.Byte(7))
	info := term.CurrentArrivalInfo()
	require.Equal(t, ArrivalInfo{ID: 3, Chunks: 3, Checksum: 7}, info)
	require.NoError(t, term.HandlePlaneArrival(bfio.Check(7)))
	require.False(t, term.PacketAvailable())
	require.Equal(t, uint64(1), term.Stats().Rejected)
	require.Error(t, term.SetMode(Mode(5)))
}

func TestTaxiway(t *testing.T) {
	term := New(Master, DefaultConfig())
	for n := 0; n < DefaultTaxiwayCapacity; n++ {
		require.NoError(t, term.PutPlaneOnTaxiway(bfio.FunctionID(n)))
	}
	err := term.PutPlaneOnTaxiway(bfio.FunctionID(DefaultTaxiwayCapacity))
	require.Equal(t, bfio.Failed, bfio.KindOf(err))
	require.Equal(t, NotEnoughSpace, term.DepartureStatus())
	require.Error(t, term.CanPlaneTaxi(4))

	id, err := term.GetNextDepartingPlaneID()
	require.NoError(t, err)
	require.Equal(t, bfio.FunctionID(0), id)
	require.NoError(t, term.CanPlaneTaxi(4))
	require.Error(t, term.CanPlaneTaxi(DefaultArrivalCapacity+1))
}

func TestTaxiwayDuplicate(t *testing.T) {
	tw := NewTaxiway(3)
	require.NoError(t, tw.Put(5))
	require.NoError(t, tw.Put(2))
	require.Equal(t, bfio.Failed, bfio.KindOf(tw.Put(5)))
	require.Equal(t, []bfio.FunctionID{5, 2}, tw.IDs())

	id, err := tw.Next()
	require.NoError(t, err)
	require.Equal(t, bfio.FunctionID(5), id)
	require.False(t, tw.Contains(5))
	require.NoError(t, tw.Put(5))
	require.NoError(t, tw.Put(9))
	require.True(t, tw.Full())
	require.Equal(t, []bfio.FunctionID{2, 5, 9}, tw.IDs())

	tw.Reset()
	_, err = tw.Next()
	require.Equal(t, bfio.Unnecessary, bfio.KindOf(err))
}

func TestReset(t *testing.T) {
	term := New(Slave, DefaultConfig())
	require.NoError(t, term.SetMode(RejectIncoming))
	require.NoError(t, term.PutPlaneOnTaxiway(1))
	feed(t, term, bfio.Start(1), bfio.Check(0))
	term.Reset()
	require.Equal(t, Stats{}, term.Stats())
	require.Zero(t, term.Taxiway().Len())
	require.Equal(t, RejectIncoming, term.Mode())
}
