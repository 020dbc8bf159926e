package gates

import (
	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/terminal"
)

// Largest plane, in chunks, of each mandatory gate.
const (
	PingPlaneSize          = 4
	StatusPlaneSize        = 4
	HandshakePlaneSize     = 11
	ErrorMessagePlaneSize  = 22
	DeviceTypePlaneSize    = 4
	DeviceIDPlaneSize      = 11
	RestartPlaneSize       = 2
	UniversalInfoPlaneSize = terminal.DefaultArrivalCapacity // until attached
	HandlingErrorPlaneSize = 6
)

var noValues = []interface{}{}

// Ping echoes a boolean.
type Ping struct {
	Foundation
}

// NewPing creates the Ping gate.
func NewPing() *Ping {
	g := &Ping{Foundation: newFoundation(bfio.PingID, PingPlaneSize,
		[]bfio.DataType{bfio.Bool}, []bfio.DataType{bfio.Bool})}
	g.answer = func(req []interface{}) ([]interface{}, error) {
		return req, nil
	}
	return g
}

// Request pings the peer.
func (g *Ping) Request(value bool) error {
	return g.RequestValues(value)
}

// Read returns the echoed value.
func (g *Ping) Read() (bool, error) {
	vals, err := g.ReadValues()
	if err != nil {
		return false, err
	}
	return vals[0].(bool), nil
}

// StatusUpdate asks the peer for its DeviceStatus.
type StatusUpdate struct {
	Foundation
}

// NewStatusUpdate creates the Status gate.
func NewStatusUpdate() *StatusUpdate {
	g := &StatusUpdate{Foundation: newFoundation(bfio.StatusID, StatusPlaneSize,
		nil, []bfio.DataType{bfio.UnsignedChar})}
	g.answer = func([]interface{}) ([]interface{}, error) {
		return []interface{}{byte(g.reg.Host.Info().Status)}, nil
	}
	return g
}

// Request asks for the peer status.
func (g *StatusUpdate) Request() error {
	return g.RequestValues()
}

// Read returns the peer status.
func (g *StatusUpdate) Read() (bfio.DeviceStatus, error) {
	vals, err := g.ReadValues()
	if err != nil {
		return 0, err
	}
	return bfio.DeviceStatus(vals[0].(uint8)), nil
}

// Handshake exchanges protocol versions.
// A mismatch is Incompatibility and sets CompatibilityError on the device.
type Handshake struct {
	Foundation
}

// NewHandshake creates the Handshake gate.
func NewHandshake() *Handshake {
	g := &Handshake{Foundation: newFoundation(bfio.HandshakeID, HandshakePlaneSize,
		[]bfio.DataType{bfio.UnsignedLongLong}, []bfio.DataType{bfio.UnsignedLongLong})}
	g.answer = func(req []interface{}) ([]interface{}, error) {
		if v := req[0].(uint64); v != bfio.Version {
			g.reg.Host.ReportError(bfio.CompatibilityError, "peer BFIO version mismatch")
		}
		return []interface{}{bfio.Version}, nil
	}
	g.arrived = func(vals []interface{}) error {
		if v := vals[0].(uint64); v != bfio.Version {
			g.reg.Host.ReportError(bfio.CompatibilityError, "peer BFIO version mismatch")
			return bfio.Errorf(bfio.Incompatibility, "handshake", "peer version %d, local %d", v, bfio.Version)
		}
		return nil
	}
	return g
}

// Request sends the local version.
func (g *Handshake) Request() error {
	return g.RequestValues(bfio.Version)
}

// Read returns the peer version.
func (g *Handshake) Read() (uint64, error) {
	vals, err := g.ReadValues()
	if err != nil {
		return 0, err
	}
	return vals[0].(uint64), nil
}

// ErrorMessage asks the peer for its device-wide error message.
type ErrorMessage struct {
	Foundation
}

// NewErrorMessage creates the ErrorMessage gate.
func NewErrorMessage() *ErrorMessage {
	g := &ErrorMessage{Foundation: newFoundation(bfio.ErrorMessageID, ErrorMessagePlaneSize,
		nil, []bfio.DataType{bfio.String})}
	g.answer = func([]interface{}) ([]interface{}, error) {
		return []interface{}{truncate(g.reg.Host.ErrorMessage(), g.maxSizeOfPlane-3)}, nil
	}
	return g
}

// Request asks for the peer error message.
func (g *ErrorMessage) Request() error {
	return g.RequestValues()
}

// Read returns the peer error message.
func (g *ErrorMessage) Read() (string, error) {
	vals, err := g.ReadValues()
	if err != nil {
		return "", err
	}
	return vals[0].(string), nil
}

// DeviceType asks the peer for its type.
type DeviceType struct {
	Foundation
}

// NewDeviceType creates the DeviceType gate.
func NewDeviceType() *DeviceType {
	g := &DeviceType{Foundation: newFoundation(bfio.DeviceTypeID, DeviceTypePlaneSize,
		nil, []bfio.DataType{bfio.UnsignedChar})}
	g.answer = func([]interface{}) ([]interface{}, error) {
		return []interface{}{g.reg.Host.Info().Type}, nil
	}
	return g
}

// Request asks for the peer type.
func (g *DeviceType) Request() error {
	return g.RequestValues()
}

// Read returns the peer type.
func (g *DeviceType) Read() (byte, error) {
	vals, err := g.ReadValues()
	if err != nil {
		return 0, err
	}
	return vals[0].(uint8), nil
}

// DeviceID asks the peer for its 64-bit ID.
type DeviceID struct {
	Foundation
}

// NewDeviceID creates the ID gate.
func NewDeviceID() *DeviceID {
	g := &DeviceID{Foundation: newFoundation(bfio.DeviceIDID, DeviceIDPlaneSize,
		nil, []bfio.DataType{bfio.UnsignedLongLong})}
	g.answer = func([]interface{}) ([]interface{}, error) {
		return []interface{}{g.reg.Host.Info().ID}, nil
	}
	return g
}

// Request asks for the peer ID.
func (g *DeviceID) Request() error {
	return g.RequestValues()
}

// Read returns the peer ID.
func (g *DeviceID) Read() (uint64, error) {
	vals, err := g.ReadValues()
	if err != nil {
		return 0, err
	}
	return vals[0].(uint64), nil
}

// RestartProtocol asks the peer to reset its protocol state.
// The peer acknowledges first and restarts once the acknowledgment departed.
type RestartProtocol struct {
	Foundation
}

// NewRestartProtocol creates the RestartProtocol gate.
func NewRestartProtocol() *RestartProtocol {
	g := &RestartProtocol{Foundation: newFoundation(bfio.RestartProtocolID, RestartPlaneSize, nil, nil)}
	g.answer = func([]interface{}) ([]interface{}, error) {
		return noValues, nil
	}
	g.answered = func() {
		g.reg.Host.RequestRestart()
	}
	return g
}

// Request asks the peer to restart.
func (g *RestartProtocol) Request() error {
	return g.RequestValues()
}

// Read returns true once the peer acknowledged.
func (g *RestartProtocol) Read() (bool, error) {
	if _, err := g.ReadValues(); err != nil {
		return false, err
	}
	return true, nil
}

// UniversalInfo asks the peer for its complete identity.
type UniversalInfo struct {
	Foundation
}

var universalInfoTypes = []bfio.DataType{
	bfio.UnsignedLongLong, bfio.UnsignedLongLong, bfio.UnsignedChar, bfio.UnsignedChar,
	bfio.String, bfio.String, bfio.String,
}

// NewUniversalInfo creates the UniversalInfo gate.
func NewUniversalInfo() *UniversalInfo {
	g := &UniversalInfo{Foundation: newFoundation(bfio.UniversalInfoID, UniversalInfoPlaneSize,
		nil, universalInfoTypes)}
	g.variable = true
	g.answer = func([]interface{}) ([]interface{}, error) {
		info := g.reg.Host.Info()
		// Start, Check, four fixed width segments and three Div chunks.
		budget := g.maxSizeOfPlane - 2 - (1 + 8) - (1 + 8) - (1 + 1) - (1 + 1) - 3
		strs := fitStrings(budget, info.GitRepository, info.DeviceName, info.DeviceVersion)
		return []interface{}{
			info.ID, bfio.Version, info.Type, byte(info.Status),
			strs[0], strs[1], strs[2],
		}, nil
	}
	return g
}

// Request asks for the peer identity.
func (g *UniversalInfo) Request() error {
	return g.RequestValues()
}

// Read returns the peer identity.
func (g *UniversalInfo) Read() (Info, error) {
	vals, err := g.ReadValues()
	if err != nil {
		return Info{}, err
	}
	return Info{
		ID:            vals[0].(uint64),
		BFIOVersion:   vals[1].(uint64),
		Type:          vals[2].(uint8),
		Status:        bfio.DeviceStatus(vals[3].(uint8)),
		GitRepository: vals[4].(string),
		DeviceName:    vals[5].(string),
		DeviceVersion: vals[6].(string),
	}, nil
}

// Mandatory bundles the gates every BFIO device implements.
type Mandatory struct {
	Ping            *Ping
	Status          *StatusUpdate
	Handshake       *Handshake
	ErrorMessage    *ErrorMessage
	DeviceType      *DeviceType
	DeviceID        *DeviceID
	RestartProtocol *RestartProtocol
	UniversalInfo   *UniversalInfo
	HandlingError   *HandlingError
}

// NewMandatory creates the mandatory gates.
func NewMandatory() *Mandatory {
	return &Mandatory{
		Ping:            NewPing(),
		Status:          NewStatusUpdate(),
		Handshake:       NewHandshake(),
		ErrorMessage:    NewErrorMessage(),
		DeviceType:      NewDeviceType(),
		DeviceID:        NewDeviceID(),
		RestartProtocol: NewRestartProtocol(),
		UniversalInfo:   NewUniversalInfo(),
		HandlingError:   NewHandlingError(),
	}
}

// Gates lists the mandatory gates.
func (m *Mandatory) Gates() []Departable {
	return []Departable{
		m.Ping, m.Status, m.Handshake, m.ErrorMessage, m.DeviceType,
		m.DeviceID, m.RestartProtocol, m.UniversalInfo, m.HandlingError,
	}
}

func truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(s) > max {
		return s[:max]
	}
	return s
}

// fitStrings truncates strings, in order, so their total length fits budget.
func fitStrings(budget int, strs ...string) []string {
	out := make([]string, len(strs))
	for n, s := range strs {
		out[n] = truncate(s, budget)
		budget -= len(out[n])
	}
	return out
}
