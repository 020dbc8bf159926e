package bfio

import "fmt"

// DeviceStatus is the state a BFIO device reports about itself.
type DeviceStatus byte

// Device status values.
const (
	Booting DeviceStatus = iota
	Busy
	Available
	Crashing
	Handshaking
	Shutdown
	Clueless
	Debugging
	SoftwareError
	HardwareError
	CompatibilityError
	CommunicationError
	NoBattery
)

var deviceStatusNames = [...]string{
	Booting:            "Booting",
	Busy:               "Busy",
	Available:          "Available",
	Crashing:           "Crashing",
	Handshaking:        "Handshake",
	Shutdown:           "Shutdown",
	Clueless:           "Clueless",
	Debugging:          "Debugging",
	SoftwareError:      "SoftwareError",
	HardwareError:      "HardwareError",
	CompatibilityError: "CompatibilityError",
	CommunicationError: "CommunicationError",
	NoBattery:          "NoBattery",
}

// String implements fmt.Stringer.
func (s DeviceStatus) String() string {
	if int(s) < len(deviceStatusNames) {
		return deviceStatusNames[s]
	}
	return fmt.Sprintf("DeviceStatus(%d)", byte(s))
}

// IsError indicates the status reports a fault.
func (s DeviceStatus) IsError() bool {
	switch s {
	case Crashing, SoftwareError, HardwareError, CompatibilityError, CommunicationError, NoBattery:
		return true
	}
	return false
}

// Version is the BFIO protocol version exchanged during handshake.
const Version uint64 = 202305091044

// GitRepository is the default repository advertised in UniversalInfo.
const GitRepository = "https://github.com/robotalks/bfio.go.git"
