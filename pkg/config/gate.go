package config

import (
	"github.com/pkg/errors"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/gates"
)

// GateConfig declares an application gate. The peer's requests are
// answered with Reply, or echoed back when Reply is empty and both
// signatures match.
type GateConfig struct {
	ID      uint8    `toml:"id"`
	Name    string   `toml:"name"`
	Request []string `toml:"request"`
	Answer  []string `toml:"answer"`
	Reply   []string `toml:"reply"`
}

// Validate checks the declaration.
func (g *GateConfig) Validate() error {
	if bfio.FunctionID(g.ID) < bfio.FirstApplicationID {
		return errors.Errorf("gate %d: IDs below %d are reserved", g.ID, bfio.FirstApplicationID)
	}
	req, err := parseTypes(g.Request)
	if err != nil {
		return errors.Wrapf(err, "gate %d request", g.ID)
	}
	ans, err := parseTypes(g.Answer)
	if err != nil {
		return errors.Wrapf(err, "gate %d answer", g.ID)
	}
	if len(g.Reply) > 0 {
		if _, err = parseValues(ans, g.Reply); err != nil {
			return errors.Wrapf(err, "gate %d reply", g.ID)
		}
	} else if !sameTypes(req, ans) {
		return errors.Errorf("gate %d: reply is required unless request and answer match", g.ID)
	}
	return nil
}

// NewGate builds the gate.
func (g *GateConfig) NewGate() (*gates.Custom, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	req, _ := parseTypes(g.Request)
	ans, _ := parseTypes(g.Answer)
	handler := func(vals []interface{}) ([]interface{}, error) { return vals, nil }
	if len(g.Reply) > 0 {
		reply, _ := parseValues(ans, g.Reply)
		handler = func([]interface{}) ([]interface{}, error) { return reply, nil }
	}
	name := g.Name
	if name == "" {
		name = bfio.FunctionID(g.ID).String()
	}
	return gates.NewCustom(bfio.FunctionID(g.ID), name, req, ans, handler)
}

func parseTypes(names []string) ([]bfio.DataType, error) {
	types := make([]bfio.DataType, len(names))
	for n, name := range names {
		t, err := bfio.ParseDataType(name)
		if err != nil {
			return nil, err
		}
		types[n] = t
	}
	return types, nil
}

func parseValues(types []bfio.DataType, text []string) ([]interface{}, error) {
	if len(text) != len(types) {
		return nil, errors.Errorf("expect %d values, got %d", len(types), len(text))
	}
	vals := make([]interface{}, len(types))
	for n, t := range types {
		v, err := bfio.ParseValue(t, text[n])
		if err != nil {
			return nil, err
		}
		vals[n] = v
	}
	return vals, nil
}

func sameTypes(a, b []bfio.DataType) bool {
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if a[n] != b[n] {
			return false
		}
	}
	return true
}
