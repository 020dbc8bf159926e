package sh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/device"
	"github.com/robotalks/bfio.go/pkg/config"
)

func TestLoopback(t *testing.T) {
	conf := *config.Default()
	conf.Name, conf.ID = "host", 1
	conf.Interval = time.Millisecond
	s := New(&conf)
	require.Error(t, s.Query(func(*device.Device) {}))

	require.NoError(t, s.OpenLoopback())
	defer s.Close()
	require.Equal(t, loopbackName, s.Link.Name)

	r := s.Wait(s.Link.Device.DoArgs(bfio.PingID, "true"))
	require.NoError(t, r.Err)
	require.Equal(t, []interface{}{true}, r.Values)

	r = s.Wait(s.Link.Device.DoArgs(bfio.UniversalInfoID))
	require.NoError(t, r.Err)
	require.Equal(t, uint64(2), r.Values[0])
	require.Equal(t, loopbackName, r.Values[5])

	r = s.Wait(s.Link.Device.DoArgs(bfio.PingID, "maybe"))
	require.Equal(t, bfio.Failed, bfio.KindOf(r.Err))

	var stats device.Stats
	require.NoError(t, s.Query(func(d *device.Device) { stats = d.Stats() }))
	require.True(t, stats.Gates.Docked >= 2)

	s.Close()
	require.Nil(t, s.Link)
	require.Error(t, s.Query(func(*device.Device) {}))
}
