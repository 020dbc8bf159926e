package config

import (
	"hash/fnv"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const machineIDApp = "bfio"

// MachineID derives a 64-bit device ID from the machine ID,
// 0 if the machine ID is unavailable.
func MachineID() uint64 {
	id, err := machineid.ProtectedID(machineIDApp)
	if err != nil {
		glog.V(2).Infof("machine id unavailable: %v", err)
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}
