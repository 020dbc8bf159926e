package config

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

type fileConfig struct {
	Port            string       `toml:"port"`
	MQTT            string       `toml:"mqtt"`
	Name            string       `toml:"name"`
	ID              uint64       `toml:"id"`
	Type            uint         `toml:"type"`
	Version         string       `toml:"version"`
	Interval        string       `toml:"interval"`
	Timeout         string       `toml:"timeout"`
	ArrivalCapacity int          `toml:"arrival_capacity"`
	TaxiwayCapacity int          `toml:"taxiway_capacity"`
	ChunksPerTick   int          `toml:"chunks_per_tick"`
	Gates           []GateConfig `toml:"gate"`
}

// LoadFile overrides the options defined in a TOML file.
func (c *Config) LoadFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return errors.Errorf("load config: unknown key %q", undecoded[0].String())
	}
	if meta.IsDefined("port") {
		c.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("mqtt") {
		c.MQTTBrokerURL = strings.TrimSpace(raw.MQTT)
	}
	if meta.IsDefined("name") {
		c.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("id") {
		c.ID = raw.ID
	}
	if meta.IsDefined("type") {
		c.Type = raw.Type
	}
	if meta.IsDefined("version") {
		c.Version = raw.Version
	}
	if meta.IsDefined("interval") {
		if c.Interval, err = parseDuration("interval", raw.Interval); err != nil {
			return err
		}
	}
	if meta.IsDefined("timeout") {
		if c.Timeout, err = parseDuration("timeout", raw.Timeout); err != nil {
			return err
		}
	}
	if meta.IsDefined("arrival_capacity") {
		c.ArrivalCapacity = raw.ArrivalCapacity
	}
	if meta.IsDefined("taxiway_capacity") {
		c.TaxiwayCapacity = raw.TaxiwayCapacity
	}
	if meta.IsDefined("chunks_per_tick") {
		c.ChunksPerTick = raw.ChunksPerTick
	}
	if meta.IsDefined("gate") {
		c.Gates = raw.Gates
	}
	return nil
}

func parseDuration(key, val string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	return d, nil
}
