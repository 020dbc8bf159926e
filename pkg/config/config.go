// Package config holds the options shared by the bfio commands.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/device"
	"github.com/robotalks/bfio.go/pkg/bfio/gates"
	"github.com/robotalks/bfio.go/pkg/bfio/runway"
	"github.com/robotalks/bfio.go/pkg/bfio/stream"
	"github.com/robotalks/bfio.go/pkg/bfio/terminal"
	fx "github.com/robotalks/bfio.go/pkg/framework"
)

// Config provides the options to run a BFIO device.
type Config struct {
	// Port is the URL of the link, e.g. serial:///dev/ttyUSB0?baud=115200,
	// tcp://host:port or ws://host/path.
	Port string
	// MQTTBrokerURL enables the bridge, e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string
	// File is an optional TOML file loaded by Load.
	File string

	Name    string
	ID      uint64
	Type    uint
	Version string

	Interval        time.Duration
	Timeout         time.Duration
	ArrivalCapacity int
	TaxiwayCapacity int
	ChunksPerTick   int

	Gates []GateConfig
}

var defaultConfig = Config{
	MQTTBrokerURL:   "",
	Name:            "bfio",
	Version:         "0.1.0",
	Interval:        fx.DefaultInterval,
	Timeout:         gates.DefaultTimeout,
	ArrivalCapacity: terminal.DefaultArrivalCapacity,
	TaxiwayCapacity: terminal.DefaultTaxiwayCapacity,
	ChunksPerTick:   runway.DefaultChunksPerTick,
}

func init() {
	if val := os.Getenv("BFIO_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("BFIO_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("BFIO_CONFIG"); val != "" {
		defaultConfig.File = val
	}
	defaultConfig.ID = MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Link URL: serial://, tcp:// or ws://.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable the bridge.")
	flag.StringVar(&defaultConfig.File, "config", defaultConfig.File, "TOML config file.")
	flag.StringVar(&defaultConfig.Name, "name", defaultConfig.Name, "Device name.")
	flag.Uint64Var(&defaultConfig.ID, "id", defaultConfig.ID, "Device ID, defaults to a hash of the machine ID.")
	flag.UintVar(&defaultConfig.Type, "type", defaultConfig.Type, "Device type.")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Protocol tick interval.")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Gate answer timeout.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Gates = append([]GateConfig(nil), defaultConfig.Gates...)
	return &conf
}

// Load applies File if specified and validates the result.
func (c *Config) Load() error {
	if c.File != "" {
		if err := c.LoadFile(c.File); err != nil {
			return err
		}
	}
	return c.Validate()
}

// Validate reports every invalid option.
func (c *Config) Validate() error {
	var errs *multierror.Error
	if c.Name == "" {
		errs = multierror.Append(errs, errors.New("name is required"))
	}
	if c.Type > 255 {
		errs = multierror.Append(errs, errors.Errorf("type %d exceeds 255", c.Type))
	}
	if c.Interval <= 0 {
		errs = multierror.Append(errs, errors.Errorf("invalid interval %v", c.Interval))
	}
	if c.Timeout <= 0 {
		errs = multierror.Append(errs, errors.Errorf("invalid timeout %v", c.Timeout))
	}
	if c.ArrivalCapacity < 2 {
		errs = multierror.Append(errs, errors.Errorf("arrival capacity %d too small", c.ArrivalCapacity))
	}
	if c.TaxiwayCapacity < 1 {
		errs = multierror.Append(errs, errors.Errorf("taxiway capacity %d too small", c.TaxiwayCapacity))
	}
	if c.ChunksPerTick < 1 {
		errs = multierror.Append(errs, errors.Errorf("chunks per tick %d too small", c.ChunksPerTick))
	}
	seen := make(map[uint8]bool)
	for _, g := range c.Gates {
		if seen[g.ID] {
			errs = multierror.Append(errs, errors.Errorf("gate %d declared twice", g.ID))
		}
		seen[g.ID] = true
		if err := g.Validate(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// DeviceConfig converts the options into a device.Config.
func (c *Config) DeviceConfig() device.Config {
	conf := device.DefaultConfig()
	conf.Identity = device.Identity{
		ID:            c.ID,
		Type:          byte(c.Type),
		Name:          c.Name,
		Version:       c.Version,
		GitRepository: bfio.GitRepository,
	}
	conf.Terminal = terminal.Config{
		ArrivalCapacity: c.ArrivalCapacity,
		TaxiwayCapacity: c.TaxiwayCapacity,
	}
	conf.Timeout = c.Timeout
	conf.ChunksPerTick = c.ChunksPerTick
	return conf
}

// NewDevice creates a Device on s with the declared gates registered.
func (c *Config) NewDevice(s stream.Stream) (*device.Device, error) {
	d := device.New(s, c.DeviceConfig())
	for _, gc := range c.Gates {
		g, err := gc.NewGate()
		if err == nil {
			err = d.Register(g)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "gate %d (%s)", gc.ID, gc.Name)
		}
	}
	return d, nil
}
