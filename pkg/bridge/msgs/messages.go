// Package msgs defines the messages exchanged over the bridge.
//
// Producer: bfiod (link and gate events, replies)
// Consumer: bfiomon and remote tools (commands)
package msgs

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/gates"
	"github.com/robotalks/bfio.go/pkg/bfio/runway"
)

// Topic suffixes under <prefix><device name>/.
const (
	TopicLink  = "link"
	TopicGate  = "gate"
	TopicCmd   = "cmd"
	TopicReply = "reply"
)

// LinkStatus reports the highway status of a device.
type LinkStatus struct {
	Device string `protobuf:"bytes,1,opt,name=device,proto3" json:"device,omitempty"`
	Status string `protobuf:"bytes,2,opt,name=status,proto3" json:"status,omitempty"`
}

// NewLinkStatus creates a LinkStatus.
func NewLinkStatus(device string, s runway.HighwayStatus) *LinkStatus {
	return &LinkStatus{Device: device, Status: s.String()}
}

// ProtoMessage implements proto.Message.
func (m *LinkStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LinkStatus) Reset() { *m = LinkStatus{} }

// String implements proto.Message.
func (m *LinkStatus) String() string { return proto.CompactTextString(m) }

// GateEvent reports a gate transition.
type GateEvent struct {
	Device string `protobuf:"bytes,1,opt,name=device,proto3" json:"device,omitempty"`
	GateID uint32 `protobuf:"varint,2,opt,name=gate_id,json=gateId,proto3" json:"gate_id,omitempty"`
	Gate   string `protobuf:"bytes,3,opt,name=gate,proto3" json:"gate,omitempty"`
	Status string `protobuf:"bytes,4,opt,name=status,proto3" json:"status,omitempty"`
	Error  string `protobuf:"bytes,5,opt,name=error,proto3" json:"error,omitempty"`
	Kind   string `protobuf:"bytes,6,opt,name=kind,proto3" json:"kind,omitempty"`
}

// NewGateEvent creates a GateEvent.
func NewGateEvent(device string, e gates.Event) *GateEvent {
	m := &GateEvent{
		Device: device,
		GateID: uint32(e.ID),
		Gate:   e.ID.String(),
		Status: e.Status.String(),
	}
	if e.Err != nil {
		m.Error, m.Kind = e.Err.Error(), bfio.KindOf(e.Err).String()
	}
	return m
}

// ProtoMessage implements proto.Message.
func (m *GateEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *GateEvent) Reset() { *m = GateEvent{} }

// String implements proto.Message.
func (m *GateEvent) String() string { return proto.CompactTextString(m) }

// GateCommand requests a gate, values are text parsed against the
// request signature of the gate.
type GateCommand struct {
	RequestID uint64   `protobuf:"varint,1,opt,name=request_id,json=requestId,proto3" json:"request_id,omitempty"`
	GateID    uint32   `protobuf:"varint,2,opt,name=gate_id,json=gateId,proto3" json:"gate_id,omitempty"`
	Values    []string `protobuf:"bytes,3,rep,name=values,proto3" json:"values,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *GateCommand) ProtoMessage() {}

// Reset implements proto.Message.
func (m *GateCommand) Reset() { *m = GateCommand{} }

// String implements proto.Message.
func (m *GateCommand) String() string { return proto.CompactTextString(m) }

// ID returns the requested function ID.
func (m *GateCommand) ID() bfio.FunctionID { return bfio.FunctionID(m.GateID) }

// GateReply is the response for GateCommand.
type GateReply struct {
	RequestID uint64   `protobuf:"varint,1,opt,name=request_id,json=requestId,proto3" json:"request_id,omitempty"`
	GateID    uint32   `protobuf:"varint,2,opt,name=gate_id,json=gateId,proto3" json:"gate_id,omitempty"`
	Values    []string `protobuf:"bytes,3,rep,name=values,proto3" json:"values,omitempty"`
	Error     string   `protobuf:"bytes,4,opt,name=error,proto3" json:"error,omitempty"`
	Kind      string   `protobuf:"bytes,5,opt,name=kind,proto3" json:"kind,omitempty"`
}

// NewGateReply creates the reply of cmd from a transaction outcome.
func NewGateReply(cmd *GateCommand, vals []interface{}, err error) *GateReply {
	m := &GateReply{RequestID: cmd.RequestID, GateID: cmd.GateID}
	if err != nil {
		m.Error, m.Kind = err.Error(), bfio.KindOf(err).String()
		return m
	}
	m.Kind = bfio.Passed.String()
	m.Values = bfio.FormatValues(vals)
	return m
}

// ProtoMessage implements proto.Message.
func (m *GateReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *GateReply) Reset() { *m = GateReply{} }

// String implements proto.Message.
func (m *GateReply) String() string { return proto.CompactTextString(m) }

// Encode serializes a message.
func Encode(m proto.Message) ([]byte, error) {
	return proto.Marshal(m)
}

// Decode parses data into m.
func Decode(data []byte, m proto.Message) error {
	return proto.Unmarshal(data, m)
}
