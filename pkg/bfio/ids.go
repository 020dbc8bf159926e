package bfio

import "fmt"

// FunctionID identifies a BFIO function, i.e. the callsign of a plane.
type FunctionID byte

// Mandatory function IDs.
const (
	PingID            FunctionID = 0
	StatusID          FunctionID = 1
	HandshakeID       FunctionID = 2
	ErrorMessageID    FunctionID = 3
	DeviceTypeID      FunctionID = 4
	DeviceIDID        FunctionID = 5
	RestartProtocolID FunctionID = 6
	UniversalInfoID   FunctionID = 7
	HandlingErrorID   FunctionID = 8
	Reserved9ID       FunctionID = 9
	Reserved10ID      FunctionID = 10
)

// Application specific function IDs start here.
const FirstApplicationID FunctionID = 20

// Application function IDs used by BFIO gamepads.
const (
	ResetInputsID  FunctionID = 20
	JoystickID     FunctionID = 21
	JoystickAxisID FunctionID = 22
	JoysticksID    FunctionID = 23
	TrimID         FunctionID = 24
	DeadzoneID     FunctionID = 25
	ButtonID       FunctionID = 26
	ButtonsID      FunctionID = 27
	RGBID          FunctionID = 28
)

var functionNames = map[FunctionID]string{
	PingID:            "Ping",
	StatusID:          "Status",
	HandshakeID:       "Handshake",
	ErrorMessageID:    "ErrorMessage",
	DeviceTypeID:      "DeviceType",
	DeviceIDID:        "ID",
	RestartProtocolID: "RestartProtocol",
	UniversalInfoID:   "UniversalInfo",
	HandlingErrorID:   "HandlingError",
	Reserved9ID:       "Reserved9",
	Reserved10ID:      "Reserved10",
	ResetInputsID:     "ResetInputs",
	JoystickID:        "Joystick",
	JoystickAxisID:    "JoystickAxis",
	JoysticksID:       "Joysticks",
	TrimID:            "Trim",
	DeadzoneID:        "Deadzone",
	ButtonID:          "Button",
	ButtonsID:         "Buttons",
	RGBID:             "RGB",
}

// String implements fmt.Stringer.
func (id FunctionID) String() string {
	if name, ok := functionNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Function(%d)", byte(id))
}

// IsMandatory indicates the ID belongs to the reserved/mandatory range.
func (id FunctionID) IsMandatory() bool {
	return id <= Reserved10ID
}

// IDTable is the set of function IDs a device supports.
type IDTable [256]bool

// DefaultIDTable lists the mandatory IDs and the gamepad application IDs.
func DefaultIDTable() *IDTable {
	t := &IDTable{}
	for id := PingID; id <= Reserved10ID; id++ {
		t.Add(id)
	}
	for id := ResetInputsID; id <= RGBID; id++ {
		t.Add(id)
	}
	return t
}

// Add marks IDs as supported.
func (t *IDTable) Add(ids ...FunctionID) *IDTable {
	for _, id := range ids {
		t[id] = true
	}
	return t
}

// Remove marks IDs as unsupported.
func (t *IDTable) Remove(ids ...FunctionID) *IDTable {
	for _, id := range ids {
		t[id] = false
	}
	return t
}

// Supports checks if the ID is supported.
func (t *IDTable) Supports(id FunctionID) bool {
	return t != nil && t[id]
}

// IDs lists supported IDs in ascending order.
func (t *IDTable) IDs() []FunctionID {
	var ids []FunctionID
	for n, ok := range t {
		if ok {
			ids = append(ids, FunctionID(n))
		}
	}
	return ids
}
