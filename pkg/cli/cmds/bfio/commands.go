// Package bfio registers the shell commands issuing gate requests.
package bfio

import (
	"encoding/json"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/pkg/errors"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/device"
	"github.com/robotalks/bfio.go/pkg/cli/sh"
)

// gateCmd requests gate id with the command arguments, or defaults if none given.
func gateCmd(name string, aliases []string, help string, id bfio.FunctionID, defaults ...string) ishell.Cmd {
	return ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    help,
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			sh.DoGate(c, id, gateArgs(c.Args, defaults)...)
		}),
	}
}

func gateArgs(args, defaults []string) []string {
	if len(args) == 0 {
		return defaults
	}
	return args
}

// customArgs splits "ID [VALUE...]".
func customArgs(args []string) (bfio.FunctionID, []string, error) {
	if len(args) < 1 {
		return 0, nil, errors.New("ID required")
	}
	id, err := strconv.ParseUint(args[0], 0, 8)
	if err != nil {
		return 0, nil, errors.Wrap(err, "invalid ID")
	}
	return bfio.FunctionID(id), args[1:], nil
}

var (
	// PingCmd exposes the Ping gate.
	PingCmd = gateCmd("ping", []string{"p"}, "[true|false]", bfio.PingID, "true")
	// StatusCmd exposes the Status gate.
	StatusCmd = gateCmd("status", nil, "", bfio.StatusID)
	// HandshakeCmd exposes the Handshake gate.
	HandshakeCmd = gateCmd("handshake", []string{"hs"}, "", bfio.HandshakeID)
	// ErrorMessageCmd exposes the ErrorMessage gate.
	ErrorMessageCmd = gateCmd("errmsg", nil, "", bfio.ErrorMessageID)
	// DeviceTypeCmd exposes the DeviceType gate.
	DeviceTypeCmd = gateCmd("type", nil, "", bfio.DeviceTypeID)
	// DeviceIDCmd exposes the DeviceID gate.
	DeviceIDCmd = gateCmd("id", nil, "", bfio.DeviceIDID)
	// RestartCmd exposes the RestartProtocol gate.
	RestartCmd = gateCmd("restart", nil, "", bfio.RestartProtocolID)
	// InfoCmd exposes the UniversalInfo gate.
	InfoCmd = gateCmd("info", []string{"i"}, "", bfio.UniversalInfoID)

	// CustomCmd requests any registered gate.
	CustomCmd = ishell.Cmd{
		Name:    "custom",
		Aliases: []string{"gate", "g"},
		Help:    "ID [VALUE...]",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			id, args, err := customArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoGate(c, id, args...)
		}),
	}

	// StatsCmd prints protocol counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			var stats device.Stats
			if err := s.Query(func(d *device.Device) { stats = d.Stats() }); err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				out, err := json.Marshal(&stats)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			c.Printf("status: %s, link: %s\n", stats.Status, stats.Link)
			c.Printf("master: %+v\n", stats.Master)
			c.Printf("slave:  %+v\n", stats.Slave)
			c.Printf("runway: %+v\n", stats.Runway)
			c.Printf("gates:  %+v\n", stats.Gates)
		}),
	}

	// ResetCmd restarts the local protocol state.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.ShellFrom(c).Query(func(d *device.Device) { d.Reset() }); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	}
)

func init() {
	sh.AddCmds(
		&PingCmd,
		&StatusCmd,
		&HandshakeCmd,
		&ErrorMessageCmd,
		&DeviceTypeCmd,
		&DeviceIDCmd,
		&RestartCmd,
		&InfoCmd,
		&CustomCmd,
		&StatsCmd,
		&ResetCmd,
	)
}
