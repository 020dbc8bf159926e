package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/gates"
)

func TestGateEvent(t *testing.T) {
	m := NewGateEvent("pad", gates.Event{
		ID:     bfio.PingID,
		Status: gates.Cleaned,
		Err:    bfio.Errorf(bfio.NoConnection, "gate.update", "no answer"),
	})
	require.Equal(t, uint32(0), m.GateID)
	require.Equal(t, bfio.PingID.String(), m.Gate)
	require.Equal(t, bfio.NoConnection.String(), m.Kind)
	require.Contains(t, m.Error, "no answer")

	data, err := Encode(m)
	require.NoError(t, err)
	var decoded GateEvent
	require.NoError(t, Decode(data, &decoded))
	require.Equal(t, *m, decoded)
}

func TestGateCommandReply(t *testing.T) {
	cmd := &GateCommand{RequestID: 7, GateID: uint32(bfio.ButtonID), Values: []string{"3", "true"}}
	data, err := Encode(cmd)
	require.NoError(t, err)
	var decoded GateCommand
	require.NoError(t, Decode(data, &decoded))
	require.Equal(t, bfio.ButtonID, decoded.ID())
	require.Equal(t, []string{"3", "true"}, decoded.Values)

	reply := NewGateReply(&decoded, []interface{}{uint8(3), true}, nil)
	require.Equal(t, uint64(7), reply.RequestID)
	require.Equal(t, []string{"3", "true"}, reply.Values)
	require.Equal(t, bfio.Passed.String(), reply.Kind)

	reply = NewGateReply(&decoded, nil, bfio.ErrIncompatibility)
	require.Empty(t, reply.Values)
	require.Equal(t, bfio.Incompatibility.String(), reply.Kind)
}
